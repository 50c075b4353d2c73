package cli

import (
	"fmt"
	"maps"
	"strings"

	"github.com/anchore/clio"
	"github.com/coding-hui/common/labels"

	"github.com/vbehar/bricks/pkg/bricks"
)

// RunIDKey is the params key holding the unique id of a pipeline run.
const RunIDKey = "run_id"

var bricksConfig = &BricksConfig{
	Blueprints: []string{".bricks"},
}

var _ interface {
	clio.FlagAdder
	clio.PostLoader
	clio.FieldDescriber
} = (*BricksConfig)(nil)

type BricksConfig struct {
	Blueprints     []string `mapstructure:"blueprints"`
	SkipValidation bool     `mapstructure:"skip-validation"`

	BrickLabelSelector string `mapstructure:"label-selector"`
	labelSelector      labels.Selector

	Params map[string]string `mapstructure:"params"`
	Set    []string          `mapstructure:"set"`
	params map[string]string

	state *clio.State `mapstructure:"-"`
	runID string
}

func (c *BricksConfig) AddFlags(flags clio.FlagSet) {
	flags.StringArrayVarP(&c.Blueprints, "blueprint", "b", "Blueprint files or directories, used when no argument is given")
	flags.BoolVarP(&c.SkipValidation, "skip-validation", "", "Don't check that the keys required by the bricks are provided")
	flags.StringVarP(&c.BrickLabelSelector, "selector", "l", "Label selector for bricks, similar to Kubernetes Label selector syntax. "+
		"Note that the brick kind and name can be used as labels.")
	flags.StringArrayVarP(&c.Set, "set", "s", "Initial params, as key=value. Overrides the params from the configuration.")
}

func (c *BricksConfig) DescribeFields(d clio.FieldDescriptionSet) {
	d.Add(&c.Params, "Initial params handed to the first brick.")
	d.Add(&c.Blueprints, "Blueprint files or directories, loaded in order.")
}

func (c *BricksConfig) PostLoad() error {
	var err error
	c.labelSelector, err = labels.Parse(c.BrickLabelSelector)
	if err != nil {
		return fmt.Errorf("failed to parse label selector %q: %w", c.BrickLabelSelector, err)
	}

	c.params, err = mergeParams(c.Params, c.Set)
	if err != nil {
		return err
	}
	return nil
}

func mergeParams(base map[string]string, overrides []string) (map[string]string, error) {
	params := maps.Clone(base)
	if params == nil {
		params = make(map[string]string)
	}
	for _, kv := range overrides {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid param %q: expected key=value", kv)
		}
		params[key] = value
	}
	return params, nil
}

// initialParams returns a new bag for a pipeline run.
func (c *BricksConfig) initialParams(runID string) bricks.Params {
	params := bricks.Params{
		RunIDKey: runID,
	}
	for k, v := range c.params {
		params[k] = v
	}
	return params
}
