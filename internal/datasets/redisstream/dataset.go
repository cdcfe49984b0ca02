// Package redisstream implements the dataset contract on a Redis stream.
// Each dataset maps to one stream key; values travel as JSON in a single
// payload field.
package redisstream

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Convex-Labs/aineko-core/internal/common/errors"
	"github.com/Convex-Labs/aineko-core/internal/common/logging"
	"github.com/Convex-Labs/aineko-core/internal/datasets"
)

// TypeKey is the registry key for the Redis stream backend.
const TypeKey = "redis_stream"

const payloadField = "payload"

type backend struct {
	name   string
	target string
	params map[string]interface{}
	logger logging.Logger

	stream string
	lastID string
	client *redis.Client
}

func newBackend(name string, cfg datasets.Config) *backend {
	target := cfg.Target
	if target == "" {
		target = "localhost:6379"
	}

	return &backend{
		name:   name,
		target: target,
		params: cfg.Params,
		stream: name,
		lastID: "0",
		logger: logging.GetGlobalLogger().WithFields(
			logging.String("dataset", name),
			logging.String("type", TypeKey),
		),
	}
}

func resolveStream(name, pipeline, prefix string, hasPipelinePrefix bool) string {
	stream := name
	if !hasPipelinePrefix && pipeline != "" {
		stream = fmt.Sprintf("%s.%s", pipeline, name)
	}
	if prefix != "" {
		stream = fmt.Sprintf("%s.%s", prefix, stream)
	}
	return stream
}

func (b *backend) ensureClient() *redis.Client {
	if b.client == nil {
		b.client = redis.NewClient(&redis.Options{Addr: b.target})
	}
	return b.client
}

func (b *backend) Read(opts datasets.ReadOptions) (interface{}, error) {
	if b.client == nil {
		return nil, errors.ConnectionError(
			"no client session, initialize before reading", nil)
	}

	// go-redis sends BLOCK for any non-negative value; -1 polls.
	block := time.Duration(-1)
	if opts.Block {
		block = opts.Timeout
	}

	ctx := context.Background()
	streams, err := b.client.XRead(ctx, &redis.XReadArgs{
		Streams: []string{b.stream, b.lastID},
		Count:   1,
		Block:   block,
	}).Result()
	if err != nil {
		if err == redis.Nil {
			// Empty stream is not a failure; callers poll.
			return nil, nil
		}
		return nil, err
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return nil, nil
	}
	msg := streams[0].Messages[0]
	b.lastID = msg.ID

	raw, ok := msg.Values[payloadField].(string)
	if !ok {
		return nil, fmt.Errorf("message %s has no %s field", msg.ID, payloadField)
	}

	var value interface{}
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, fmt.Errorf("decoding message %s: %w", msg.ID, err)
	}
	return value, nil
}

func (b *backend) Write(value interface{}, opts datasets.WriteOptions) error {
	if b.client == nil {
		return errors.ConnectionError(
			"no client session, initialize before writing", nil)
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding value: %w", err)
	}

	values := map[string]interface{}{payloadField: string(payload)}
	if opts.Key != "" {
		values["key"] = opts.Key
	}

	return b.client.XAdd(context.Background(), &redis.XAddArgs{
		Stream: b.stream,
		Values: values,
	}).Err()
}

func (b *backend) Create(opts datasets.CreateOptions) (*datasets.CreateStatus, error) {
	b.stream = resolveStream(b.name, opts.Pipeline, opts.Prefix, opts.HasPipelinePrefix)

	client := b.ensureClient()
	err := client.XGroupCreateMkStream(context.Background(), b.stream, "aineko", "$").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return nil, err
	}

	// Stream creation is synchronous; the status is already complete.
	return datasets.NewCreateStatus(b.name), nil
}

func (b *backend) Delete() error {
	client := b.ensureClient()
	return client.Del(context.Background(), b.stream).Err()
}

func (b *backend) Initialize(params datasets.ConnectionParams) error {
	b.stream = resolveStream(b.name, params.Pipeline, params.Prefix, params.HasPipelinePrefix)

	client := b.ensureClient()
	if err := client.Ping(context.Background()).Err(); err != nil {
		return err
	}

	if params.Role == datasets.RoleConsumer {
		// Consumers start from the beginning of the stream.
		b.lastID = "0"
	}

	b.logger.Debug("Client session established",
		logging.String("stream", b.stream),
		logging.String("role", string(params.Role)),
	)
	return nil
}

func (b *backend) Exists() (bool, error) {
	client := b.ensureClient()
	n, err := client.Exists(context.Background(), b.stream).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (b *backend) Describe() (string, error) {
	client := b.ensureClient()
	length, err := client.XLen(context.Background(), b.stream).Result()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"redis stream dataset %s: stream=%s addr=%s length=%d",
		b.name, b.stream, b.target, length,
	), nil
}
