package middleware

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/anchore/go-logger"
	"github.com/wagoodman/go-partybus"

	"github.com/vbehar/bricks/pkg/bricks"
	"github.com/vbehar/bricks/pkg/shell"
)

// ExecOutputKey is the default params key receiving the output of an ExecBrick.
const ExecOutputKey = "exec_output"

type ExecOptions struct {
	Binary string
	// Args may reference params as $name or ${name}.
	Args      []shell.Template
	Env       []string
	Dir       string
	OutputKey string

	Logger logger.Logger
	Bus    *partybus.Bus
	Stderr io.Writer
}

// ExecBrick runs an external command, usually as the innermost brick.
type ExecBrick struct {
	bricks.Base

	opts ExecOptions
}

func Exec(opts ExecOptions) bricks.Factory {
	if opts.OutputKey == "" {
		opts.OutputKey = ExecOutputKey
	}
	return func(next bricks.Brick) bricks.Brick {
		return &ExecBrick{
			Base: bricks.Base{Next: next},
			opts: opts,
		}
	}
}

func (b *ExecBrick) Name() string    { return "exec" }
func (b *ExecBrick) Version() string { return "1.0.0" }

func (b *ExecBrick) Call(params bricks.Params) (any, error) {
	if params == nil {
		params = bricks.Params{}
	}
	b.Base.Call(params) //nolint:errcheck // never fails

	lookup := func(name string) (string, bool) {
		if s, ok := params.String(name); ok {
			return s, true
		}
		v, ok := params[name]
		if !ok || v == nil {
			return "", false
		}
		return fmt.Sprint(v), true
	}
	args := make([]string, 0, len(b.opts.Args))
	for i, arg := range b.opts.Args {
		expanded, err := arg.Expand(lookup)
		if err != nil {
			return nil, fmt.Errorf("failed to expand argument %d: %w", i, err)
		}
		args = append(args, expanded)
	}

	b.Logf("Running %s %s", b.opts.Binary, strings.Join(args, " "))
	var stdout bytes.Buffer
	err := shell.Exec(shell.ExecOpts{
		BinaryPath: b.opts.Binary,
		Logger:     b.opts.Logger,
		Args:       args,
		Env:        b.opts.Env,
		Dir:        b.opts.Dir,
		Stdout:     &stdout,
		Stderr:     b.opts.Stderr,
	})
	if err != nil {
		return nil, err
	}

	output := strings.TrimSpace(stdout.String())
	params[b.opts.OutputKey] = output
	publish(b.opts.Bus, partybus.Event{
		Type:   EventTypeExecOutput,
		Source: b.Name(),
		Value:  output,
	})

	if b.Next != nil {
		return b.CallNext(params)
	}
	return output, nil
}

// ExecRequires returns the params keys referenced by args, without duplicates.
func ExecRequires(args []shell.Template) []string {
	var names []string
	seen := make(map[string]struct{})
	for _, arg := range args {
		for _, name := range arg.SortedVariables() {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}
