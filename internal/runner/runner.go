// Package runner orchestrates one pipeline run: it loads and validates
// the pipeline definition, provisions every dataset, builds each node
// from the handler registry, and runs the nodes concurrently against a
// shared poison pill. Shutdown is cooperative: activating the pill does
// not interrupt an in-flight step, it tells every handler to wind down.
package runner

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/Convex-Labs/aineko-core/internal/common/errors"
	"github.com/Convex-Labs/aineko-core/internal/common/logging"
	"github.com/Convex-Labs/aineko-core/internal/config"
	"github.com/Convex-Labs/aineko-core/internal/datasets"
	"github.com/Convex-Labs/aineko-core/internal/datasets/memory"
	"github.com/Convex-Labs/aineko-core/internal/node"
)

const creationPollInterval = 100 * time.Millisecond

// Config describes one runner.
type Config struct {
	// ConfigPath locates the pipeline definition file.
	ConfigPath string

	// Registry resolves dataset types. Defaults to the process registry.
	Registry *datasets.Registry

	// Clock is swapped for a mock in tests. Defaults to the wall clock.
	Clock clock.Clock
}

// Runner drives one pipeline run to completion.
type Runner struct {
	configPath string
	registry   *datasets.Registry
	clk        clock.Clock
	logger     logging.Logger
}

// New builds a runner.
func New(cfg Config) *Runner {
	registry := cfg.Registry
	if registry == nil {
		registry = datasets.DefaultRegistry
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	return &Runner{
		configPath: cfg.ConfigPath,
		registry:   registry,
		clk:        clk,
		logger:     logging.GetGlobalLogger(),
	}
}

// Validate loads and validates the pipeline definition without running it.
func (r *Runner) Validate() (*config.Definition, error) {
	return config.NewLoader(r.configPath).Load()
}

// Run executes the pipeline: provision datasets, start every node in its
// own goroutine, and wait until all nodes complete. Cancelling the
// context activates the poison pill; the first node failure is returned
// after the remaining nodes wind down.
func (r *Runner) Run(ctx context.Context) error {
	def, err := r.Validate()
	if err != nil {
		return err
	}
	pipeline := def.Pipeline

	runID := uuid.NewString()
	logger := r.logger.WithFields(
		logging.String("pipeline", pipeline.Name),
		logging.String("run_id", runID),
	)
	logger.Info("Starting pipeline run", logging.Int("nodes", len(pipeline.Nodes)))

	datasetConfigs := make(map[string]datasets.Config, len(pipeline.Datasets)+1)
	for name, cfg := range pipeline.Datasets {
		datasetConfigs[name] = cfg
	}
	// The reserved logging dataset is provisioned in-process; remote log
	// shipping is a separate concern.
	datasetConfigs[config.LoggingDataset] = datasets.Config{Type: memory.TypeKey}

	if err := r.prepareDatasets(pipeline, datasetConfigs, logger); err != nil {
		return err
	}

	pill := node.NewPoisonPill()
	nodes := make([]*node.Node, 0, len(pipeline.Nodes))
	params := make(map[string]node.Params, len(pipeline.Nodes))

	for name, nodeDef := range pipeline.Nodes {
		handler, err := node.NewHandler(nodeDef.Handler)
		if err != nil {
			return err
		}

		n, err := node.New(node.Config{
			Pipeline:   pipeline.Name,
			Name:       name,
			Handler:    handler,
			PoisonPill: pill,
			Registry:   r.registry,
			Clock:      r.clk,
		})
		if err != nil {
			return err
		}

		if err := n.SetupDatasets(datasetConfigs, nodeDef.Inputs, nodeDef.Outputs, pipeline.Prefix, false); err != nil {
			return err
		}

		nodes = append(nodes, n)
		params[name] = node.Params(nodeDef.NodeParams)
	}

	errCh := make(chan error, len(nodes))
	var wg sync.WaitGroup
	for _, n := range nodes {
		wg.Add(1)
		go func(n *node.Node) {
			defer wg.Done()
			if err := n.Execute(params[n.Name()]); err != nil {
				errCh <- err
				// One failed node brings the pipeline down.
				pill.Activate()
			}
		}(n)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		logger.Warn("Run cancelled, activating poison pill")
		pill.Activate()
		<-done
	case <-pill.Done():
		logger.Info("Poison pill activated, waiting for nodes to wind down")
		<-done
	case <-done:
	}

	close(errCh)
	if err := <-errCh; err != nil {
		logger.Error("Pipeline run failed", err)
		return err
	}
	logger.Info("Pipeline run complete")
	return nil
}

// prepareDatasets provisions the backing storage for every dataset and
// waits for the pooled creation status, bounded by the creation timeout.
func (r *Runner) prepareDatasets(pipeline config.Pipeline, configs map[string]datasets.Config, logger logging.Logger) error {
	status := datasets.NewCreateStatus(pipeline.Name)

	for name, cfg := range configs {
		handle, err := r.registry.Create(name, cfg)
		if err != nil {
			return err
		}
		created, err := handle.Create(datasets.CreateOptions{
			Pipeline: pipeline.Name,
			Prefix:   pipeline.Prefix,
		})
		if err != nil {
			return err
		}
		status.Merge(created)
		logger.Debug("Dataset creation requested",
			logging.String("dataset", name),
			logging.String("type", cfg.Type),
		)
	}

	deadline := r.clk.Now().Add(config.DatasetCreationTimeout)
	for !status.Done() {
		if r.clk.Now().After(deadline) {
			return errors.TimeoutError("dataset creation")
		}
		r.clk.Sleep(creationPollInterval)
	}
	logger.Info("Datasets provisioned", logging.Int("count", len(configs)))
	return nil
}
