package config

import "github.com/Convex-Labs/aineko-core/internal/datasets"

// NodeDefinition describes one node of a pipeline: the registered handler
// to run and the dataset wiring around it.
type NodeDefinition struct {
	Handler    string                 `yaml:"handler" validate:"required"`
	Inputs     []string               `yaml:"inputs"`
	Outputs    []string               `yaml:"outputs"`
	NodeParams map[string]interface{} `yaml:"node_params"`
}

// Pipeline is the validated shape of one pipeline definition.
type Pipeline struct {
	Name     string                     `yaml:"name" validate:"required"`
	Prefix   string                     `yaml:"prefix"`
	Nodes    map[string]NodeDefinition  `yaml:"nodes" validate:"required,dive"`
	Datasets map[string]datasets.Config `yaml:"datasets" validate:"dive"`
}

// Definition is the root of a pipeline configuration file.
type Definition struct {
	Pipeline Pipeline `yaml:"pipeline" validate:"required"`
}
