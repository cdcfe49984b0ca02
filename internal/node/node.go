// Package node drives one unit of pipeline work: it owns the node's input
// and output dataset handles, runs the user-supplied step function in a
// loop with pre and post hooks, and can trigger the shared poison pill
// that shuts the whole pipeline down. Nodes exchange data only through
// datasets, never directly.
package node

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/Convex-Labs/aineko-core/internal/common/errors"
	"github.com/Convex-Labs/aineko-core/internal/common/logging"
	"github.com/Convex-Labs/aineko-core/internal/config"
	"github.com/Convex-Labs/aineko-core/internal/datasets"
)

// Params is the parameter tree handed to a node's step function.
type Params map[string]interface{}

// Handler is the capability interface user logic implements. Step is
// invoked once per loop iteration with the current parameters and returns
// false to stop the loop. An error terminates the node; the loop is not
// resilient to user-code failures.
type Handler interface {
	Step(n *Node, params Params) (bool, error)
}

// PreLoopHook is implemented by handlers that need setup before the loop.
type PreLoopHook interface {
	PreLoopHook(n *Node, params Params) error
}

// PostLoopHook is implemented by handlers that need teardown after the loop.
type PostLoopHook interface {
	PostLoopHook(n *Node, params Params) error
}

// Config describes one node to construct.
type Config struct {
	Pipeline string
	Name     string
	Handler  Handler

	// PoisonPill is the shared shutdown flag, borrowed from the pipeline
	// run. Optional: single-node contexts may omit it.
	PoisonPill *PoisonPill

	// Registry resolves dataset types during setup. Defaults to the
	// process-wide registry.
	Registry *datasets.Registry

	// Clock is swapped for a mock in tests. Defaults to the wall clock.
	Clock clock.Clock
}

// Node is the execution unit of a pipeline.
type Node struct {
	name     string
	pipeline string
	handler  Handler
	params   Params

	inputs  map[string]datasets.Dataset
	outputs map[string]datasets.Dataset

	test          bool
	lastHeartbeat time.Time

	pill     *PoisonPill
	registry *datasets.Registry
	clk      clock.Clock
	logger   logging.Logger
}

// New constructs a node from its configuration.
func New(cfg Config) (*Node, error) {
	if cfg.Pipeline == "" {
		return nil, errors.ConfigError("pipeline name is required")
	}
	if cfg.Name == "" {
		return nil, errors.ConfigError("node name is required")
	}
	if cfg.Handler == nil {
		return nil, errors.ConfigError("node handler is required")
	}

	registry := cfg.Registry
	if registry == nil {
		registry = datasets.DefaultRegistry
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}

	logger := logging.GetGlobalLogger().WithFields(
		logging.String("pipeline", cfg.Pipeline),
		logging.String("node", cfg.Name),
	)

	return &Node{
		name:          cfg.Name,
		pipeline:      cfg.Pipeline,
		handler:       cfg.Handler,
		params:        Params{},
		inputs:        make(map[string]datasets.Dataset),
		outputs:       make(map[string]datasets.Dataset),
		lastHeartbeat: clk.Now(),
		pill:          cfg.PoisonPill,
		registry:      registry,
		clk:           clk,
		logger:        logger,
	}, nil
}

// Name returns the node name.
func (n *Node) Name() string { return n.name }

// Pipeline returns the owning pipeline name.
func (n *Node) Pipeline() string { return n.pipeline }

// LastHeartbeat returns the time of the most recent loop iteration.
func (n *Node) LastHeartbeat() time.Time { return n.lastHeartbeat }

// TestMode reports whether the node runs against dataset doubles.
func (n *Node) TestMode() bool { return n.test }

// Input returns the named input handle, or nil when not wired.
func (n *Node) Input(name string) datasets.Dataset { return n.inputs[name] }

// Output returns the named output handle, or nil when not wired.
func (n *Node) Output(name string) datasets.Dataset { return n.outputs[name] }

// Inputs returns the wired input handles by dataset name.
func (n *Node) Inputs() map[string]datasets.Dataset { return n.inputs }

// Outputs returns the wired output handles by dataset name.
func (n *Node) Outputs() map[string]datasets.Dataset { return n.outputs }

// SetupDatasets resolves the node's input and output names against the
// dataset configuration registry, constructs a handle per name, and
// initializes each with role-specific connection parameters: the consumer
// role for inputs, the producer role for outputs. The reserved logging
// output is wired whenever its configuration is present. Calling setup
// again overwrites prior handles per name; the last call wins.
func (n *Node) SetupDatasets(configs map[string]datasets.Config, inputs, outputs []string, prefix string, hasPipelinePrefix bool) error {
	if n.test {
		return errors.ModeError("node is in test mode, use SetupTest to wire dataset doubles")
	}

	if _, ok := configs[config.LoggingDataset]; ok && !contains(outputs, config.LoggingDataset) {
		outputs = append(append([]string(nil), outputs...), config.LoggingDataset)
	}

	for _, name := range inputs {
		handle, err := n.buildDataset(configs, name)
		if err != nil {
			return err
		}
		if err := handle.Initialize(datasets.ConnectionParams{
			Role:              datasets.RoleConsumer,
			Dataset:           name,
			Node:              n.name,
			Pipeline:          n.pipeline,
			Prefix:            prefix,
			HasPipelinePrefix: hasPipelinePrefix,
			Config:            config.DefaultConsumerConfig(),
		}); err != nil {
			return err
		}
		n.inputs[name] = handle
	}

	for _, name := range outputs {
		handle, err := n.buildDataset(configs, name)
		if err != nil {
			return err
		}
		if err := handle.Initialize(datasets.ConnectionParams{
			Role:              datasets.RoleProducer,
			Dataset:           name,
			Node:              n.name,
			Pipeline:          n.pipeline,
			Prefix:            prefix,
			HasPipelinePrefix: hasPipelinePrefix,
			Config:            config.DefaultProducerConfig(),
		}); err != nil {
			return err
		}
		n.outputs[name] = handle
	}

	return nil
}

func (n *Node) buildDataset(configs map[string]datasets.Config, name string) (datasets.Dataset, error) {
	cfg, ok := configs[name]
	if !ok {
		return nil, errors.ConfigError(fmt.Sprintf("dataset %s is not declared in the pipeline configuration", name))
	}
	return n.registry.Create(name, cfg)
}

// Execute runs the full node lifecycle: pre-hook, the step loop until the
// handler stops, then the post-hook. Any failure in the pre-hook or a
// loop iteration is logged with full diagnostic detail and re-raised;
// failure isolation belongs to the supervisor process boundary.
func (n *Node) Execute(params Params) error {
	if params == nil {
		params = Params{}
	}
	n.params = params

	if hook, ok := n.handler.(PreLoopHook); ok {
		if err := hook.PreLoopHook(n, params); err != nil {
			n.logFailure("pre-loop hook", err)
			return err
		}
	}

	for {
		n.lastHeartbeat = n.clk.Now()

		cont, err := n.handler.Step(n, params)
		if err != nil {
			n.logFailure("execution step", err)
			return err
		}
		if !cont {
			break
		}
	}

	if err := n.Log(fmt.Sprintf("Execution loop complete for node: %s", n.name), "info"); err != nil {
		n.logger.Warn("Failed to write completion record", logging.Err(err))
	}

	if hook, ok := n.handler.(PostLoopHook); ok {
		return hook.PostLoopHook(n, params)
	}
	return nil
}

// Log emits a structured record {log, level} to the reserved logging
// output. The level must be one of info, debug, warning, error, critical.
func (n *Node) Log(message, level string) error {
	if !contains(config.LogLevels, level) {
		return errors.InvalidLogLevelError(level, config.LogLevels)
	}

	out, ok := n.outputs[config.LoggingDataset]
	if !ok {
		return errors.ModeError("logging output is not wired, call SetupDatasets or SetupTest first")
	}

	record := map[string]interface{}{"log": message, "level": level}
	return out.Write(record, datasets.WriteOptions{})
}

// ActivatePoisonPill requests shutdown of the whole pipeline. It is
// idempotent, and a no-op when the node was constructed without a pill.
func (n *Node) ActivatePoisonPill() {
	if n.pill != nil {
		n.pill.Activate()
	}
}

// ShuttingDown reports whether the shared poison pill has been activated.
// Handlers poll this to stop cooperatively; nodes without a pill never
// report shutdown.
func (n *Node) ShuttingDown() bool {
	return n.pill != nil && n.pill.Activated()
}

// logFailure writes full diagnostic detail to the logging output at the
// debug level, mirroring it to the process logger.
func (n *Node) logFailure(stage string, err error) {
	detail := fmt.Sprintf("%s failed for node %s: %+v", stage, n.name, err)
	if logErr := n.Log(detail, "debug"); logErr != nil {
		n.logger.Warn("Failed to write diagnostic record", logging.Err(logErr))
	}
	n.logger.Error(stage+" failed", err)
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
