package middleware

import (
	"maps"

	"github.com/vbehar/bricks/pkg/bricks"
)

// SetBrick writes static values into the params before delegating.
type SetBrick struct {
	bricks.Base

	values map[string]any
}

func Set(values map[string]any) bricks.Factory {
	values = maps.Clone(values)
	return func(next bricks.Brick) bricks.Brick {
		return &SetBrick{
			Base:   bricks.Base{Next: next},
			values: values,
		}
	}
}

func (b *SetBrick) Name() string    { return "set" }
func (b *SetBrick) Version() string { return "1.0.0" }

func (b *SetBrick) Call(params bricks.Params) (any, error) {
	if params == nil {
		params = bricks.Params{}
	}
	for k, v := range b.values {
		params[k] = v
	}
	return b.CallNext(params)
}
