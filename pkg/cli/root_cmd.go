package cli

import (
	"fmt"
	"slices"

	"github.com/anchore/clio"
	"github.com/anchore/fangs"
	"github.com/rs/xid"
	"github.com/spf13/cobra"
	"github.com/wagoodman/go-partybus"

	"github.com/vbehar/bricks/pkg/blueprint"
	"github.com/vbehar/bricks/pkg/bricks"
)

func rootCommand(appID clio.Identification) *cobra.Command {
	return &cobra.Command{
		Use:   appID.Name + " [blueprints]",
		Short: "Bricks runs pipelines of bricks declared in blueprints.",
		Long: `Bricks runs pipelines made of "bricks": small, independent steps
chained into a single nested call.

Each brick receives a shared bag of params, may read and change it,
then delegates to the next brick. The first declared brick is the outermost:
it runs first and sees the result of all the others.

Bricks are declared in blueprint files (YAML or JSON, one brick per document).
A directory contributes all its blueprint files, in name order.

Built-in brick kinds:
  logger   Make the logger available to every inner brick
  bench    Measure the duration of the inner bricks
  stdout   Print the result of the inner bricks
  set      Write static values into the params
  exec     Run an external command`,
		Example: `  # Run the blueprint from the .bricks directory
  bricks

  # Run a specific blueprint, with initial params
  bricks upload.yaml --set project_id=la84vcyhrq8jwbu4wpipw66q2sqeb923

  # Only keep some bricks, using a label selector
  bricks upload.yaml -l stage!=debug`,
		Args:              cobra.ArbitraryArgs,
		ValidArgsFunction: blueprintsValidArgsFunction,
		RunE:              run,
	}
}

func loadBlueprint(args []string) (*blueprint.Blueprint, error) {
	paths := args
	if len(paths) == 0 {
		paths = bricksConfig.Blueprints
	}

	bp, err := loader.Load(paths...)
	if err != nil {
		return nil, err
	}
	filtered := bp.Filter(bricksConfig.labelSelector).WithKinds(registry)
	return &filtered, nil
}

func run(_ *cobra.Command, args []string) error {
	bp, err := loadBlueprint(args)
	if err != nil {
		return err
	}
	if len(bp.Bricks) == 0 {
		deps.Logger.WithFields("blueprint", bp.Name).Warn("No bricks found, nothing to run")
		return nil
	}

	bricksConfig.runID = xid.New().String()
	params := bricksConfig.initialParams(bricksConfig.runID)
	if !bricksConfig.SkipValidation {
		err = bp.Validate(params.Keys())
		if err != nil {
			return err
		}
	}

	pipeline, err := bp.Pipeline(registry, deps)
	if err != nil {
		return err
	}
	chain := pipeline.Prepare()
	err = bricks.CheckVersions(chain)
	if err != nil {
		return fmt.Errorf("invalid pipeline %q: %w", pipeline.Name, err)
	}

	deps.Bus.Publish(partybus.Event{
		Type:   EventTypePipelineStarted,
		Source: pipelineInfo(pipeline, params),
	})
	params.WithSink(deps.Logger)
	result, err := bricks.Run(chain, params)
	deps.Bus.Publish(partybus.Event{
		Type:   EventTypePipelineFinished,
		Source: pipelineInfo(pipeline, params),
		Value: PipelineResult{
			Result: result,
			Err:    err,
		},
	})
	if err != nil {
		return fmt.Errorf("pipeline %q failed: %w", pipeline.Name, err)
	}

	deps.Logger.WithFields("pipeline", pipeline.Name, "run_id", params[RunIDKey], "result", result).Info("Pipeline done")
	return nil
}

func pipelineInfo(p *bricks.Pipeline, params bricks.Params) map[string]string {
	return map[string]string{
		"pipeline": p.Name,
		"run_id":   fmt.Sprint(params[RunIDKey]),
		"bricks":   fmt.Sprint(p.Len()),
	}
}

func blueprintsValidArgsFunction(cmd *cobra.Command, args []string, _ string) ([]cobra.Completion, cobra.ShellCompDirective) {
	// hack to load the config, to get the configured blueprints...
	_ = fangs.Load(clioSetupConfig(clio.Identification{
		Name: "bricks",
	}).FangsConfig, cmd, bricksConfig)

	var completions []cobra.Completion
	for _, path := range bricksConfig.Blueprints {
		if slices.Contains(args, path) {
			continue
		}
		completions = append(completions, cobra.CompletionWithDesc(path, "Configured blueprint"))
	}

	return completions, cobra.ShellCompDirectiveDefault
}
