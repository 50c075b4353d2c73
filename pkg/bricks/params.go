// Package bricks chains independently-written steps into a single nested call.
package bricks

import (
	"github.com/anchore/go-logger"
)

// LoggerKey is the well-known params key holding an optional Sink.
const LoggerKey = "gdc_logger"

// Params is the bag shared by every brick of a chain.
// It is passed by reference: a brick delegating to the next one hands over
// the very same map, so mutations made upstream are visible downstream.
type Params map[string]any

// Sink is the minimal logging capability a brick needs.
type Sink interface {
	Info(args ...any)
}

var _ Sink = (logger.Logger)(nil)

// Sink returns the logging sink stored under LoggerKey, or nil.
func (p Params) Sink() Sink {
	if p == nil {
		return nil
	}
	s, ok := p[LoggerKey].(Sink)
	if !ok || s == nil {
		return nil
	}
	return s
}

// WithSink stores s under LoggerKey and returns the same bag.
func (p Params) WithSink(s Sink) Params {
	p[LoggerKey] = s
	return p
}

// String returns the value for key if it is a string.
func (p Params) String(key string) (string, bool) {
	s, ok := p[key].(string)
	return s, ok
}

// Keys returns the keys of the bag, LoggerKey excluded.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		if k == LoggerKey {
			continue
		}
		keys = append(keys, k)
	}
	return keys
}
