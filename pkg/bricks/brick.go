package bricks

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrMissingVersion is returned by CheckVersions for a brick reporting an empty version.
var ErrMissingVersion = errors.New("brick version should be implemented")

// Brick is a single pipeline step.
//
// Call is the only entry point. A brick holding a delegate is expected to
// call it with the same Params, and whatever the outermost brick returns is
// the result of the whole pipeline. Params may be nil when a chain is called
// directly instead of through Run: a brick writing to it starts from an empty bag.
type Brick interface {
	Call(params Params) (any, error)
	Version() string
}

// Named is implemented by bricks that want a custom diagnostic name.
type Named interface {
	Name() string
}

// Delegator exposes the next-inner brick. Base implements it.
type Delegator interface {
	Delegate() Brick
}

// Base is meant to be embedded by concrete bricks.
// It does not implement Version: every brick has to declare its own.
type Base struct {
	// Next is the wrapped brick, nil for the innermost one.
	Next Brick
	// Logger takes precedence over the sink found in the params.
	Logger Sink

	params Params
}

// Call stores params and returns an empty result.
func (b *Base) Call(params Params) (any, error) {
	b.params = params
	return nil, nil
}

// CallNext stores params and delegates to Next with the same bag.
func (b *Base) CallNext(params Params) (any, error) {
	b.params = params
	if b.Next == nil {
		return nil, nil
	}
	return b.Next.Call(params)
}

// Params returns the bag received by the last call.
func (b *Base) Params() Params {
	return b.params
}

func (b *Base) Delegate() Brick {
	return b.Next
}

// Log emits message at info level. Without any logger, it does nothing.
func (b *Base) Log(message string) {
	sink := b.sink()
	if sink == nil {
		return
	}
	sink.Info(message)
}

func (b *Base) Logf(format string, args ...any) {
	if b.sink() == nil {
		return
	}
	b.Log(fmt.Sprintf(format, args...))
}

func (b *Base) sink() Sink {
	if b == nil {
		return nil
	}
	if b.Logger != nil && !isNil(b.Logger) {
		return b.Logger
	}
	s := b.params.Sink()
	if s == nil || isNil(s) {
		return nil
	}
	return s
}

// isNil catches typed nil pointers stored in an interface.
func isNil(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// Name returns a stable identifier for the brick's type.
func Name(b Brick) string {
	if b == nil {
		return ""
	}
	if n, ok := b.(Named); ok {
		if name := n.Name(); name != "" {
			return name
		}
	}
	t := reflect.TypeOf(b)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}
