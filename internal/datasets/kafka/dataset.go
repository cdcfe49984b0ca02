// Package kafka implements the dataset contract on a Kafka topic. Each
// dataset maps to one topic; node inputs consume it through a per-node
// consumer group and node outputs publish to it through a producer.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"

	"github.com/Convex-Labs/aineko-core/internal/common/errors"
	"github.com/Convex-Labs/aineko-core/internal/common/logging"
	"github.com/Convex-Labs/aineko-core/internal/config"
	"github.com/Convex-Labs/aineko-core/internal/datasets"
)

// TypeKey is the registry key for the Kafka backend.
const TypeKey = "kafka"

const (
	adminTimeout       = 30 * time.Second
	metadataTimeoutMs  = 10000
	defaultPollTimeout = 100 * time.Millisecond
)

type backend struct {
	name   string
	target string
	params map[string]interface{}
	logger logging.Logger

	// topic is resolved from naming context on Create or Initialize;
	// until then it falls back to the raw dataset name.
	topic string

	producer *kafka.Producer
	consumer *kafka.Consumer
	admin    *kafka.AdminClient
}

func newBackend(name string, cfg datasets.Config) *backend {
	target := cfg.Target
	if target == "" {
		target = config.BrokerAddress()
	}

	return &backend{
		name:   name,
		target: target,
		params: cfg.Params,
		topic:  name,
		logger: logging.GetGlobalLogger().WithFields(
			logging.String("dataset", name),
			logging.String("type", TypeKey),
		),
	}
}

// resolveTopic builds the physical topic name from the naming context.
// Names that already carry a pipeline prefix are used as-is; otherwise the
// pipeline name is prepended, and an explicit prefix goes in front of both.
func resolveTopic(name, pipeline, prefix string, hasPipelinePrefix bool) string {
	topic := name
	if !hasPipelinePrefix && pipeline != "" {
		topic = fmt.Sprintf("%s.%s", pipeline, name)
	}
	if prefix != "" {
		topic = fmt.Sprintf("%s.%s", prefix, topic)
	}
	return topic
}

func (b *backend) ensureAdmin() (*kafka.AdminClient, error) {
	if b.admin != nil {
		return b.admin, nil
	}

	admin, err := kafka.NewAdminClient(&kafka.ConfigMap{
		"bootstrap.servers": b.target,
	})
	if err != nil {
		return nil, err
	}
	b.admin = admin
	return admin, nil
}

func (b *backend) Read(opts datasets.ReadOptions) (interface{}, error) {
	if b.consumer == nil {
		return nil, errors.ConnectionError(
			"no consumer session, initialize with the consumer role before reading", nil)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultPollTimeout
	}
	if opts.Block {
		timeout = -1
	}

	msg, err := b.consumer.ReadMessage(timeout)
	if err != nil {
		if kafkaErr, ok := err.(kafka.Error); ok && kafkaErr.Code() == kafka.ErrTimedOut {
			// Empty topic is not a failure; callers poll.
			return nil, nil
		}
		return nil, err
	}

	var value interface{}
	if err := json.Unmarshal(msg.Value, &value); err != nil {
		return nil, fmt.Errorf("decoding message at offset %v: %w", msg.TopicPartition.Offset, err)
	}
	return value, nil
}

func (b *backend) Write(value interface{}, opts datasets.WriteOptions) error {
	if b.producer == nil {
		return errors.ConnectionError(
			"no producer session, initialize with the producer role before writing", nil)
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding value: %w", err)
	}

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &b.topic,
			Partition: kafka.PartitionAny,
		},
		Value:     payload,
		Timestamp: time.Now(),
	}
	if opts.Key != "" {
		msg.Key = []byte(opts.Key)
	}

	deliveryChan := make(chan kafka.Event, 1)
	if err := b.producer.Produce(msg, deliveryChan); err != nil {
		return err
	}

	e := <-deliveryChan
	m := e.(*kafka.Message)
	if m.TopicPartition.Error != nil {
		return m.TopicPartition.Error
	}
	return nil
}

func (b *backend) Create(opts datasets.CreateOptions) (*datasets.CreateStatus, error) {
	b.topic = resolveTopic(b.name, opts.Pipeline, opts.Prefix, opts.HasPipelinePrefix)

	admin, err := b.ensureAdmin()
	if err != nil {
		return nil, err
	}

	spec := kafka.TopicSpecification{
		Topic:             b.topic,
		NumPartitions:     intParam(b.params, "num_partitions", config.DefaultNumPartitions),
		ReplicationFactor: intParam(b.params, "replication_factor", config.DefaultReplicationFactor),
		Config: map[string]string{
			"retention.ms": fmt.Sprintf("%d", retentionParam(b.params).Milliseconds()),
		},
	}

	done := make(chan struct{})
	go func() {
		defer close(done)

		ctx, cancel := context.WithTimeout(context.Background(), adminTimeout)
		defer cancel()

		results, err := admin.CreateTopics(ctx, []kafka.TopicSpecification{spec})
		if err != nil {
			b.logger.Error("Topic creation failed", err, logging.String("topic", spec.Topic))
			return
		}
		for _, result := range results {
			code := result.Error.Code()
			if code != kafka.ErrNoError && code != kafka.ErrTopicAlreadyExists {
				b.logger.Error("Topic creation failed", result.Error,
					logging.String("topic", result.Topic))
			}
		}
	}()

	return datasets.NewCreateStatus(b.name, done), nil
}

func (b *backend) Delete() error {
	admin, err := b.ensureAdmin()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), adminTimeout)
	defer cancel()

	results, err := admin.DeleteTopics(ctx, []string{b.topic})
	if err != nil {
		return err
	}
	for _, result := range results {
		code := result.Error.Code()
		if code != kafka.ErrNoError && code != kafka.ErrUnknownTopicOrPart {
			return result.Error
		}
	}
	return nil
}

func (b *backend) Initialize(params datasets.ConnectionParams) error {
	b.topic = resolveTopic(b.name, params.Pipeline, params.Prefix, params.HasPipelinePrefix)

	switch params.Role {
	case datasets.RoleConsumer:
		return b.initConsumer(params)
	case datasets.RoleProducer:
		return b.initProducer(params)
	default:
		return errors.ConfigError(fmt.Sprintf("unknown connection role %q", params.Role))
	}
}

func (b *backend) initConsumer(params datasets.ConnectionParams) error {
	if b.consumer != nil {
		// Idempotent per handle: the consumer session already exists.
		return nil
	}

	settings := config.DefaultConsumerConfig()
	for _, key := range config.ConsumerOverridables {
		if value, ok := params.Config[key]; ok {
			settings[key] = value
		}
	}

	configMap := kafka.ConfigMap{
		"bootstrap.servers": b.target,
		"group.id":          fmt.Sprintf("%s.%s", params.Pipeline, params.Node),
	}
	for key, value := range settings {
		if key == "bootstrap.servers" {
			continue
		}
		configMap[key] = value
	}

	consumer, err := kafka.NewConsumer(&configMap)
	if err != nil {
		return err
	}
	if err := consumer.SubscribeTopics([]string{b.topic}, nil); err != nil {
		_ = consumer.Close()
		return err
	}

	b.consumer = consumer
	b.logger.Debug("Consumer session established",
		logging.String("topic", b.topic),
		logging.String("node", params.Node),
	)
	return nil
}

func (b *backend) initProducer(params datasets.ConnectionParams) error {
	if b.producer != nil {
		return nil
	}

	settings := config.DefaultProducerConfig()
	for _, key := range config.ProducerOverridables {
		if value, ok := params.Config[key]; ok {
			settings[key] = value
		}
	}

	configMap := kafka.ConfigMap{
		"bootstrap.servers": b.target,
	}
	for key, value := range settings {
		if key == "bootstrap.servers" {
			continue
		}
		configMap[key] = value
	}

	producer, err := kafka.NewProducer(&configMap)
	if err != nil {
		return err
	}

	b.producer = producer
	b.logger.Debug("Producer session established",
		logging.String("topic", b.topic),
		logging.String("node", params.Node),
	)
	return nil
}

func (b *backend) Exists() (bool, error) {
	admin, err := b.ensureAdmin()
	if err != nil {
		return false, err
	}

	metadata, err := admin.GetMetadata(&b.topic, false, metadataTimeoutMs)
	if err != nil {
		return false, err
	}

	topicMeta, ok := metadata.Topics[b.topic]
	if !ok {
		return false, nil
	}
	return topicMeta.Error.Code() == kafka.ErrNoError, nil
}

func (b *backend) Describe() (string, error) {
	return fmt.Sprintf(
		"kafka dataset %s: topic=%s brokers=%s consumer=%t producer=%t",
		b.name, b.topic, b.target, b.consumer != nil, b.producer != nil,
	), nil
}

func intParam(params map[string]interface{}, key string, fallback int) int {
	if raw, ok := params[key]; ok {
		switch n := raw.(type) {
		case int:
			return n
		case float64:
			return int(n)
		}
	}
	return fallback
}

func retentionParam(params map[string]interface{}) time.Duration {
	if raw, ok := params["retention.ms"]; ok {
		switch n := raw.(type) {
		case int:
			return time.Duration(n) * time.Millisecond
		case float64:
			return time.Duration(n) * time.Millisecond
		}
	}
	return config.DefaultRetention
}
