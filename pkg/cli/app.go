package cli

import (
	"io"
	"os"

	"github.com/anchore/clio"
	"github.com/anchore/go-logger/adapter/discard"
	"github.com/wagoodman/go-partybus"

	"github.com/vbehar/bricks/pkg/blueprint"
)

var (
	loader   = blueprint.NewLoader()
	registry = blueprint.Default()
	deps     = blueprint.Deps{
		Logger: discard.New(),
		Bus:    partybus.NewBus(),
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
)

func Application(id clio.Identification) clio.Application {
	app := clio.New(*clioSetupConfig(id))

	rootCmd := app.SetupRootCommand(rootCommand(id), bricksConfig)
	rootCmd.AddCommand(
		app.SetupCommand(describeCommand(), bricksConfig),
		app.SetupCommand(kindsCommand()),
		clio.VersionCommand(id, brickKinds),
		clio.ConfigCommand(app, &clio.ConfigCommandConfig{
			IncludeLocationsSubcommand: true,
			LoadConfig:                 true,
			ReplaceHomeDirWithTilde:    true,
		}),
	)

	return app
}

func clioSetupConfig(id clio.Identification) *clio.SetupConfig {
	return clio.NewSetupConfig(id).
		WithGlobalConfigFlag().
		WithGlobalLoggingFlags().
		WithConfigInRootHelp().
		WithUIConstructor(
			func(cfg clio.Config) (*clio.UICollection, error) {
				var output io.Writer
				if cfg.Log.Verbosity > 0 || cfg.Log.Quiet {
					// in case of verbose output, we'll use the logs instead of the UI
					output = io.Discard
				} else {
					output = os.Stderr
				}
				return clio.NewUICollection(&UI{
					Output: output,
				}), nil
			},
		).
		WithInitializers(func(state *clio.State) error {
			// at this point, the state is ready, but our bricksConfig is not yet loaded
			bricksConfig.state = state
			loader.Logger = state.Logger
			deps.Logger = state.Logger
			deps.Bus = state.Bus
			return nil
		}).
		WithPostRuns(func(state *clio.State, err error) {
			if err != nil && bricksConfig.runID != "" {
				state.Logger.
					WithFields("run_id", bricksConfig.runID).
					Info("Pipeline run failed")
			}
		})
}

func brickKinds() (string, any) {
	return "Brick kinds", len(registry.Kinds())
}
