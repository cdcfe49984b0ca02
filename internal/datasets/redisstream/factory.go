package redisstream

import (
	"github.com/Convex-Labs/aineko-core/internal/common/errors"
	"github.com/Convex-Labs/aineko-core/internal/datasets"
	"github.com/Convex-Labs/aineko-core/internal/datasets/base"
)

// Factory builds Redis stream datasets.
type Factory struct{}

func (f *Factory) Create(name string, config datasets.Config) (datasets.Dataset, error) {
	if name == "" {
		return nil, errors.ConfigError("dataset name is required")
	}
	return base.Wrap(name, TypeKey, newBackend(name, config)), nil
}

func (f *Factory) TypeKey() string {
	return TypeKey
}

func init() {
	datasets.Register(&Factory{})
}
