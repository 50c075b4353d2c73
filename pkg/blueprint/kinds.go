package blueprint

import (
	"github.com/vbehar/bricks/pkg/bricks"
	"github.com/vbehar/bricks/pkg/middleware"
	"github.com/vbehar/bricks/pkg/shell"
)

// Default returns a registry holding the built-in kinds.
func Default() *Registry {
	return NewRegistry().MustRegister(
		Kind{
			Name:        "logger",
			Version:     "1.0.0",
			Description: "Make the logger available to every inner brick",
			New: func(spec map[string]any, deps Deps) (bricks.Factory, error) {
				if err := DecodeSpec(spec, &struct{}{}); err != nil {
					return nil, err
				}
				return middleware.Logger(deps.Logger), nil
			},
		},
		Kind{
			Name:        "bench",
			Version:     "1.0.0",
			Description: "Measure the duration of the inner bricks",
			New: func(spec map[string]any, deps Deps) (bricks.Factory, error) {
				if err := DecodeSpec(spec, &struct{}{}); err != nil {
					return nil, err
				}
				return middleware.Bench(deps.Bus), nil
			},
		},
		Kind{
			Name:        "stdout",
			Version:     "1.0.0",
			Description: "Print the result of the inner bricks",
			New: func(spec map[string]any, deps Deps) (bricks.Factory, error) {
				if err := DecodeSpec(spec, &struct{}{}); err != nil {
					return nil, err
				}
				return middleware.Stdout(deps.Stdout), nil
			},
		},
		Kind{
			Name:        "set",
			Version:     "1.0.0",
			Description: "Write static values into the params",
			New: func(spec map[string]any, _ Deps) (bricks.Factory, error) {
				var cfg struct {
					Values map[string]any `mapstructure:"values"`
				}
				if err := DecodeSpec(spec, &cfg); err != nil {
					return nil, err
				}
				return middleware.Set(cfg.Values), nil
			},
		},
		Kind{
			Name:        "exec",
			Version:     "1.0.0",
			Description: "Run an external command, its arguments may reference params",
			New: func(spec map[string]any, deps Deps) (bricks.Factory, error) {
				cfg, err := decodeExecSpec(spec)
				if err != nil {
					return nil, err
				}
				return middleware.Exec(middleware.ExecOptions{
					Binary:    cfg.Binary,
					Args:      cfg.templates(),
					Env:       cfg.Env,
					Dir:       cfg.Dir,
					OutputKey: cfg.OutputKey,
					Logger:    deps.Logger,
					Bus:       deps.Bus,
					Stderr:    deps.Stderr,
				}), nil
			},
			Requires: func(spec map[string]any) []string {
				cfg, err := decodeExecSpec(spec)
				if err != nil {
					// reported when the pipeline is built
					return nil
				}
				return middleware.ExecRequires(cfg.templates())
			},
		},
	)
}

type execSpec struct {
	Binary    string   `mapstructure:"binary"`
	Args      []string `mapstructure:"args"`
	Env       []string `mapstructure:"env"`
	Dir       string   `mapstructure:"dir"`
	OutputKey string   `mapstructure:"output-key"`
}

func decodeExecSpec(spec map[string]any) (*execSpec, error) {
	var cfg execSpec
	if err := DecodeSpec(spec, &cfg); err != nil {
		return nil, err
	}
	if cfg.Binary == "" {
		cfg.Binary = "sh"
	}
	return &cfg, nil
}

func (s execSpec) templates() []shell.Template {
	args := make([]shell.Template, 0, len(s.Args))
	for _, arg := range s.Args {
		args = append(args, shell.Template(arg))
	}
	return args
}
