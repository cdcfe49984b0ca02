package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/Convex-Labs/aineko-core/internal/common/errors"
	"github.com/Convex-Labs/aineko-core/internal/common/logging"
)

// Loader reads, validates and resolves one pipeline definition file.
type Loader struct {
	path     string
	validate *validator.Validate
}

// NewLoader builds a loader for the given pipeline configuration file.
func NewLoader(path string) *Loader {
	return &Loader{
		path:     path,
		validate: validator.New(),
	}
}

// Load parses the YAML definition, validates it against the schema,
// rejects reserved dataset names, and injects environment variables into
// every node's parameters.
func (l *Loader) Load() (*Definition, error) {
	raw, err := os.ReadFile(l.path)
	if err != nil {
		return nil, errors.ConfigError(fmt.Sprintf("failed to read pipeline config %s: %v", l.path, err))
	}

	var def Definition
	if err := yaml.Unmarshal(raw, &def); err != nil {
		return nil, errors.ConfigError(fmt.Sprintf("failed to parse pipeline config %s: %v", l.path, err))
	}

	if err := l.validate.Struct(&def); err != nil {
		logging.Error("Schema validation failed for pipeline config", err,
			logging.String("path", l.path),
			logging.String("pipeline", def.Pipeline.Name),
		)
		return nil, errors.ConfigError(fmt.Sprintf("schema validation failed for %s: %v", l.path, err))
	}

	for _, reserved := range ReservedDatasets {
		if _, ok := def.Pipeline.Datasets[reserved]; ok {
			return nil, errors.ConfigError(
				fmt.Sprintf("dataset %s is reserved for pipeline logging and monitoring", reserved))
		}
	}

	for name, nodeDef := range def.Pipeline.Nodes {
		if nodeDef.NodeParams == nil {
			continue
		}
		injected, err := InjectEnvVars(nodeDef.NodeParams)
		if err != nil {
			return nil, err
		}
		nodeDef.NodeParams = injected.(map[string]interface{})
		def.Pipeline.Nodes[name] = nodeDef
	}

	return &def, nil
}
