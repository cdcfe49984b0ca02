package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Convex-Labs/aineko-core/internal/common/errors"
	"github.com/Convex-Labs/aineko-core/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validConfig = `
pipeline:
  name: test_pipeline
  nodes:
    sequencer:
      handler: sequencer
      outputs:
        - numbers
      node_params:
        count: 5
    doubler:
      handler: doubler
      inputs:
        - numbers
      outputs:
        - doubled
  datasets:
    numbers:
      type: memory
    doubled:
      type: memory
`

func TestLoader_Load(t *testing.T) {
	path := writeConfig(t, validConfig)

	def, err := config.NewLoader(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "test_pipeline", def.Pipeline.Name)
	assert.Len(t, def.Pipeline.Nodes, 2)
	assert.Len(t, def.Pipeline.Datasets, 2)

	seq := def.Pipeline.Nodes["sequencer"]
	assert.Equal(t, "sequencer", seq.Handler)
	assert.Equal(t, []string{"numbers"}, seq.Outputs)
	assert.Equal(t, 5, seq.NodeParams["count"])

	assert.Equal(t, "memory", def.Pipeline.Datasets["numbers"].Type)
}

func TestLoader_MissingFile(t *testing.T) {
	_, err := config.NewLoader("/nonexistent/pipeline.yml").Load()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
}

func TestLoader_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "pipeline: [not: valid")

	_, err := config.NewLoader(path).Load()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestLoader_SchemaValidation(t *testing.T) {
	// Node without a handler fails validation
	path := writeConfig(t, `
pipeline:
  name: test_pipeline
  nodes:
    broken:
      inputs:
        - numbers
`)

	_, err := config.NewLoader(path).Load()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
	assert.Contains(t, err.Error(), "validation")
}

func TestLoader_MissingPipelineName(t *testing.T) {
	path := writeConfig(t, `
pipeline:
  nodes:
    n:
      handler: h
`)

	_, err := config.NewLoader(path).Load()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
}

func TestLoader_ReservedDatasetName(t *testing.T) {
	path := writeConfig(t, `
pipeline:
  name: test_pipeline
  nodes:
    n:
      handler: h
  datasets:
    logging:
      type: memory
`)

	_, err := config.NewLoader(path).Load()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
	assert.Contains(t, err.Error(), "reserved")
}

func TestLoader_InjectsEnvVarsIntoNodeParams(t *testing.T) {
	t.Setenv("TEST_API_KEY", "abc123")

	path := writeConfig(t, `
pipeline:
  name: test_pipeline
  nodes:
    n:
      handler: h
      node_params:
        api_key: "{$TEST_API_KEY}"
`)

	def, err := config.NewLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "abc123", def.Pipeline.Nodes["n"].NodeParams["api_key"])
}

func TestLoader_MissingEnvVarFails(t *testing.T) {
	path := writeConfig(t, `
pipeline:
  name: test_pipeline
  nodes:
    n:
      handler: h
      node_params:
        api_key: "{$NOT_SET_FOR_THIS_TEST}"
`)

	_, err := config.NewLoader(path).Load()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeMissingEnv))
	assert.Contains(t, err.Error(), "NOT_SET_FOR_THIS_TEST")
}
