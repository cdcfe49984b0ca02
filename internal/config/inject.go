package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/Convex-Labs/aineko-core/internal/common/errors"
)

// Placeholders look like {$NAME}; the pattern is non-greedy and matches
// across embedded newlines.
var envVarPattern = regexp.MustCompile(`(?s)\{\$(.*?)\}`)

// InjectEnvVars recursively resolves {$NAME} placeholders in a parameter
// tree against the process environment. Mappings and sequences recurse
// into every value; non-string scalars pass through unchanged. Each
// substitution re-scans the string from the start, so one string may hold
// any number of placeholders. A reference to an unset variable fails with
// a missing-variable error naming it. Injection is idempotent on already
// resolved input.
func InjectEnvVars(value interface{}) (interface{}, error) {
	switch v := value.(type) {
	case map[string]interface{}:
		for key, item := range v {
			injected, err := InjectEnvVars(item)
			if err != nil {
				return nil, err
			}
			v[key] = injected
		}
		return v, nil
	case []interface{}:
		for i, item := range v {
			injected, err := InjectEnvVars(item)
			if err != nil {
				return nil, err
			}
			v[i] = injected
		}
		return v, nil
	case string:
		for {
			match := envVarPattern.FindStringSubmatchIndex(v)
			if match == nil {
				return v, nil
			}
			name := v[match[2]:match[3]]
			envValue, ok := os.LookupEnv(name)
			if !ok {
				return nil, errors.MissingEnvError(name)
			}
			v = v[:match[0]] + envValue + v[match[1]:]
		}
	default:
		return value, nil
	}
}

// SubstituteParams performs flat $NAME token replacement against a
// supplied key to value mapping. It is used on raw config trees before
// schema validation. Mappings, sequences, strings, numbers and booleans
// are supported; any other value is a type error.
func SubstituteParams(value interface{}, params map[string]string) (interface{}, error) {
	switch v := value.(type) {
	case map[string]interface{}:
		substituted := make(map[string]interface{}, len(v))
		for key, item := range v {
			result, err := SubstituteParams(item, params)
			if err != nil {
				return nil, err
			}
			substituted[key] = result
		}
		return substituted, nil
	case []interface{}:
		substituted := make([]interface{}, len(v))
		for i, item := range v {
			result, err := SubstituteParams(item, params)
			if err != nil {
				return nil, err
			}
			substituted[i] = result
		}
		return substituted, nil
	case string:
		for key, replacement := range params {
			v = strings.ReplaceAll(v, "$"+key, replacement)
		}
		return v, nil
	case int, int64, float64, bool:
		return v, nil
	default:
		return nil, errors.ValidationError(
			fmt.Sprintf("invalid value type %T, expected map, list, string, or number", value))
	}
}
