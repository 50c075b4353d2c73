package middleware

import (
	"github.com/anchore/go-logger"
	"github.com/anchore/go-logger/adapter/discard"

	"github.com/vbehar/bricks/pkg/bricks"
)

// LoggerBrick makes a logger available to every inner brick.
type LoggerBrick struct {
	bricks.Base

	log logger.Logger
}

// Logger returns a factory for a LoggerBrick. A nil logger discards everything.
func Logger(l logger.Logger) bricks.Factory {
	if l == nil {
		l = discard.New()
	}
	return func(next bricks.Brick) bricks.Brick {
		return &LoggerBrick{
			Base: bricks.Base{Next: next},
			log:  l,
		}
	}
}

func (b *LoggerBrick) Name() string    { return "logger" }
func (b *LoggerBrick) Version() string { return "1.0.0" }

// Call stores the logger in params, unless the caller already provided one.
func (b *LoggerBrick) Call(params bricks.Params) (any, error) {
	if params == nil {
		params = bricks.Params{}
	}
	if params.Sink() == nil {
		params.WithSink(b.log)
	}
	b.Base.Call(params) //nolint:errcheck // never fails

	b.Log("Pipeline starting")
	result, err := b.CallNext(params)
	if err != nil {
		b.Logf("Pipeline failed: %v", err)
		return result, err
	}
	b.Log("Pipeline ending")
	return result, nil
}
