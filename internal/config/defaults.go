// Package config provides pipeline definition loading, parameter
// injection, and the process-wide defaults the dataset backends and node
// runtime consume. Defaults are read from environment variables with
// sensible fallbacks.
package config

import (
	"os"
	"time"
)

// LoggingDataset is the reserved output every node writes log records to.
const LoggingDataset = "logging"

// ReportingDataset is the reserved output used for pipeline monitoring.
const ReportingDataset = "reporting"

// ReservedDatasets are wired into every node and may not be declared in a
// pipeline definition.
var ReservedDatasets = []string{LoggingDataset, ReportingDataset}

// LogLevels are the allowed levels for node log records.
var LogLevels = []string{"info", "debug", "warning", "error", "critical"}

// DatasetCreationTimeout bounds how long the runner waits for dataset
// provisioning to complete.
const DatasetCreationTimeout = 300 * time.Second

// BrokerAddress returns the default broker bootstrap address.
func BrokerAddress() string {
	return getEnv("KAFKA_CONFIG_BROKER", "localhost:9092")
}

// DefaultConsumerConfig returns the default settings for broker consumers.
func DefaultConsumerConfig() map[string]string {
	return map[string]string{
		"bootstrap.servers": BrokerAddress(),
		"auto.offset.reset": "earliest",
	}
}

// DefaultProducerConfig returns the default settings for broker producers.
func DefaultProducerConfig() map[string]string {
	return map[string]string{
		"bootstrap.servers": BrokerAddress(),
	}
}

// ConsumerOverridables lists the consumer settings a connection may
// override per dataset.
var ConsumerOverridables = []string{"auto.offset.reset"}

// ProducerOverridables lists the producer settings a connection may
// override per dataset. Empty means none.
var ProducerOverridables = []string{}

// Default topic provisioning parameters: a single partition, no
// replication, messages kept for 7 days.
const (
	DefaultNumPartitions     = 1
	DefaultReplicationFactor = 1
	DefaultRetention         = 7 * 24 * time.Hour
)

// getEnv retrieves an environment variable value or returns a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
