package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Convex-Labs/aineko-core/internal/common/errors"
	"github.com/Convex-Labs/aineko-core/internal/config"
)

func TestInjectEnvVars_String(t *testing.T) {
	t.Setenv("TEST_SECRET", "s3cret")

	result, err := config.InjectEnvVars("token={$TEST_SECRET}")
	require.NoError(t, err)
	assert.Equal(t, "token=s3cret", result)
}

func TestInjectEnvVars_MultiplePlaceholdersPerString(t *testing.T) {
	t.Setenv("TEST_USER", "alice")
	t.Setenv("TEST_HOST", "db.internal")

	result, err := config.InjectEnvVars("{$TEST_USER}@{$TEST_HOST}:5432")
	require.NoError(t, err)
	assert.Equal(t, "alice@db.internal:5432", result)
}

func TestInjectEnvVars_NestedStructures(t *testing.T) {
	t.Setenv("TEST_KEY", "injected")

	params := map[string]interface{}{
		"plain": "untouched",
		"nested": map[string]interface{}{
			"secret": "{$TEST_KEY}",
		},
		"list":   []interface{}{"{$TEST_KEY}", 42},
		"number": 7,
	}

	result, err := config.InjectEnvVars(params)
	require.NoError(t, err)

	tree := result.(map[string]interface{})
	assert.Equal(t, "untouched", tree["plain"])
	assert.Equal(t, "injected", tree["nested"].(map[string]interface{})["secret"])
	assert.Equal(t, "injected", tree["list"].([]interface{})[0])
	assert.Equal(t, 42, tree["list"].([]interface{})[1])
	assert.Equal(t, 7, tree["number"])
}

func TestInjectEnvVars_MissingVariable(t *testing.T) {
	_, err := config.InjectEnvVars("{$DEFINITELY_NOT_SET_ANYWHERE}")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeMissingEnv))
	assert.Contains(t, err.Error(), "DEFINITELY_NOT_SET_ANYWHERE")
}

func TestInjectEnvVars_Idempotent(t *testing.T) {
	t.Setenv("TEST_VALUE", "resolved")

	once, err := config.InjectEnvVars("prefix-{$TEST_VALUE}")
	require.NoError(t, err)

	twice, err := config.InjectEnvVars(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestSubstituteParams_String(t *testing.T) {
	result, err := config.SubstituteParams("topic-$env", map[string]string{"env": "staging"})
	require.NoError(t, err)
	assert.Equal(t, "topic-staging", result)
}

func TestSubstituteParams_Nested(t *testing.T) {
	params := map[string]string{"region": "eu-west-1"}
	tree := map[string]interface{}{
		"bucket": "data-$region",
		"list":   []interface{}{"$region", true, 1.5},
	}

	result, err := config.SubstituteParams(tree, params)
	require.NoError(t, err)

	got := result.(map[string]interface{})
	assert.Equal(t, "data-eu-west-1", got["bucket"])
	assert.Equal(t, "eu-west-1", got["list"].([]interface{})[0])
	assert.Equal(t, true, got["list"].([]interface{})[1])
}

func TestSubstituteParams_UnsupportedType(t *testing.T) {
	_, err := config.SubstituteParams(struct{}{}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeValidation))
	assert.Contains(t, err.Error(), "invalid value type")
}
