package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/Convex-Labs/aineko-core/internal/common/logging"
	"github.com/Convex-Labs/aineko-core/internal/runner"

	// Register the built-in dataset backends.
	_ "github.com/Convex-Labs/aineko-core/internal/datasets/kafka"
	_ "github.com/Convex-Labs/aineko-core/internal/datasets/memory"
	_ "github.com/Convex-Labs/aineko-core/internal/datasets/redisstream"
)

func main() {
	_ = godotenv.Load()

	logging.InitGlobalLogger()
	defer logging.MustSync()

	app := &cli.App{
		Name:  "aineko",
		Usage: "run and validate streaming pipelines",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run a pipeline from a configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "conf",
						Aliases:  []string{"c"},
						Usage:    "path to the pipeline configuration file",
						Required: true,
					},
				},
				Action: runPipeline,
			},
			{
				Name:  "validate",
				Usage: "validate a pipeline configuration without running it",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "conf",
						Aliases:  []string{"c"},
						Usage:    "path to the pipeline configuration file",
						Required: true,
					},
				},
				Action: validatePipeline,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logging.Error("Command failed", err)
		os.Exit(1)
	}
}

func runPipeline(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := runner.New(runner.Config{ConfigPath: c.String("conf")})
	return r.Run(ctx)
}

func validatePipeline(c *cli.Context) error {
	r := runner.New(runner.Config{ConfigPath: c.String("conf")})
	def, err := r.Validate()
	if err != nil {
		return err
	}
	logging.Info("Pipeline configuration is valid",
		logging.String("pipeline", def.Pipeline.Name),
		logging.Int("nodes", len(def.Pipeline.Nodes)),
		logging.Int("datasets", len(def.Pipeline.Datasets)),
	)
	return nil
}
