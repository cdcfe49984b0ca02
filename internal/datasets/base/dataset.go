// Package base provides the shared wrapper every dataset implementation is
// served through. The wrapper is the single point of error translation:
// any failure escaping a backend operation that is not already a dataset
// error is surfaced as one, tagged with the dataset name and wrapping the
// original cause. Dataset errors raised by the backend itself propagate
// unchanged.
package base

import (
	"github.com/Convex-Labs/aineko-core/internal/common/errors"
	"github.com/Convex-Labs/aineko-core/internal/common/logging"
	"github.com/Convex-Labs/aineko-core/internal/datasets"
)

// Backend is the concrete, untranslated operation set a dataset
// implementation provides. Implementations return their storage client
// errors as-is; translation happens in the wrapper.
type Backend interface {
	Read(opts datasets.ReadOptions) (interface{}, error)
	Write(value interface{}, opts datasets.WriteOptions) error
	Create(opts datasets.CreateOptions) (*datasets.CreateStatus, error)
	Delete() error
	Initialize(params datasets.ConnectionParams) error
	Exists() (bool, error)
	Describe() (string, error)
}

// Dataset wraps a Backend into the public synchronous contract.
type Dataset struct {
	name    string
	typeKey string
	backend Backend
	logger  logging.Logger
}

// Wrap builds the public handle for a backend.
func Wrap(name, typeKey string, backend Backend) *Dataset {
	logger := logging.GetGlobalLogger().WithFields(
		logging.Field{Key: "dataset", Value: name},
		logging.Field{Key: "type", Value: typeKey},
	)

	return &Dataset{
		name:    name,
		typeKey: typeKey,
		backend: backend,
		logger:  logger,
	}
}

// Name returns the dataset name.
func (d *Dataset) Name() string {
	return d.name
}

// Type returns the registered type key of the backend.
func (d *Dataset) Type() string {
	return d.typeKey
}

// Logger returns the handle's structured logger.
func (d *Dataset) Logger() logging.Logger {
	return d.logger
}

func (d *Dataset) Read(opts datasets.ReadOptions) (interface{}, error) {
	value, err := d.backend.Read(opts)
	return value, translate(d.name, "read", err)
}

func (d *Dataset) Write(value interface{}, opts datasets.WriteOptions) error {
	return translate(d.name, "write", d.backend.Write(value, opts))
}

func (d *Dataset) Create(opts datasets.CreateOptions) (*datasets.CreateStatus, error) {
	status, err := d.backend.Create(opts)
	return status, translate(d.name, "create", err)
}

func (d *Dataset) Delete() error {
	return translate(d.name, "delete", d.backend.Delete())
}

func (d *Dataset) Initialize(params datasets.ConnectionParams) error {
	return translate(d.name, "initialize", d.backend.Initialize(params))
}

func (d *Dataset) Exists() (bool, error) {
	exists, err := d.backend.Exists()
	return exists, translate(d.name, "check existence of", err)
}

func (d *Dataset) Describe() (string, error) {
	description, err := d.backend.Describe()
	return description, translate(d.name, "describe", err)
}

// translate turns a backend failure into a dataset error naming the
// dataset. Dataset errors pass through unchanged so backends that already
// raised one are never double-wrapped.
func translate(dataset, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.IsType(err, errors.ErrTypeDataset) {
		return err
	}
	return errors.DatasetError(dataset, op, err)
}
