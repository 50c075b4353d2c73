package middleware

import (
	"fmt"
	"io"
	"os"

	"github.com/gookit/color"
	"github.com/pborman/indent"

	"github.com/vbehar/bricks/pkg/bricks"
)

// StdoutBrick prints the result of the inner chain.
type StdoutBrick struct {
	bricks.Base

	out io.Writer
}

// Stdout returns a factory for a StdoutBrick writing to w, or to os.Stdout when w is nil.
func Stdout(w io.Writer) bricks.Factory {
	if w == nil {
		w = os.Stdout
	}
	return func(next bricks.Brick) bricks.Brick {
		return &StdoutBrick{
			Base: bricks.Base{Next: next},
			out:  w,
		}
	}
}

func (b *StdoutBrick) Name() string    { return "stdout" }
func (b *StdoutBrick) Version() string { return "1.0.0" }

func (b *StdoutBrick) Call(params bricks.Params) (any, error) {
	result, err := b.CallNext(params)
	if err != nil {
		return result, err
	}
	if result == nil {
		return nil, nil
	}
	fmt.Fprintln(b.out, color.Success.Sprint(indent.String("  ", fmt.Sprint(result)))) //nolint:errcheck // don't care
	return result, nil
}
