package bricks

import (
	"errors"
	"fmt"
	"slices"
)

// Factory builds a brick wrapping next. The innermost brick gets a nil next.
type Factory func(next Brick) Brick

// Prepare nests the bricks built by factories so that the first factory
// produces the outermost brick. It never runs any brick logic.
// An empty list yields a nil chain, which Run treats as a no-op.
func Prepare(factories ...Factory) Brick {
	var current Brick
	for i := len(factories) - 1; i >= 0; i-- {
		current = factories[i](current)
	}
	return current
}

// Run invokes chain with params. Errors raised by bricks are returned as is.
func Run(chain Brick, params Params) (any, error) {
	if chain == nil {
		return nil, nil
	}
	if params == nil {
		params = Params{}
	}
	return chain.Call(params)
}

// Walk visits the chain from the outermost brick to the innermost one.
// It stops at the first brick that does not implement Delegator, or when fn returns false.
func Walk(chain Brick, fn func(depth int, b Brick) bool) {
	for depth, current := 0, chain; current != nil; depth++ {
		if !fn(depth, current) {
			return
		}
		d, ok := current.(Delegator)
		if !ok {
			return
		}
		current = d.Delegate()
	}
}

// Len returns the number of nested bricks reachable through Walk.
func Len(chain Brick) int {
	n := 0
	Walk(chain, func(int, Brick) bool {
		n++
		return true
	})
	return n
}

// CheckVersions fails for every brick of the chain reporting an empty version.
func CheckVersions(chain Brick) error {
	var errs error
	Walk(chain, func(depth int, b Brick) bool {
		if b.Version() == "" {
			errs = errors.Join(errs, fmt.Errorf("brick %d (%s): %w", depth, Name(b), ErrMissingVersion))
		}
		return true
	})
	return errs
}

// Pipeline is an immutable, named list of brick factories.
type Pipeline struct {
	Name string

	factories []Factory
}

func New(name string, factories ...Factory) *Pipeline {
	return &Pipeline{
		Name:      name,
		factories: slices.Clone(factories),
	}
}

func (p *Pipeline) Len() int {
	return len(p.factories)
}

// Prepare builds a fresh chain.
func (p *Pipeline) Prepare() Brick {
	return Prepare(p.factories...)
}

// Run builds a fresh chain and invokes it with params.
// Concurrent runs are fine as long as they don't share the same params.
func (p *Pipeline) Run(params Params) (any, error) {
	return Run(p.Prepare(), params)
}
