package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fortuna/bbref/internal/events"
)

// Message types written to the stream.
const (
	TypeJobStart    = "job_start"
	TypeItem        = "item"
	TypeJobComplete = "job_complete"
	TypeJobError    = "job_error"
)

// publishTimeout bounds each XADD so a slow redis never stalls a pipeline.
const publishTimeout = 2 * time.Second

// Message is the JSON payload stored under the "data" field of a stream entry
type Message struct {
	Type    string          `json:"type"`
	Job     string          `json:"job"`
	Total   int             `json:"total,omitempty"`
	Event   *events.Event   `json:"event,omitempty"`
	Summary *events.Summary `json:"summary,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// RedisStreamPublisher publishes ingest progress to a Redis stream.
// It implements events.Reporter; publish failures are logged and dropped.
type RedisStreamPublisher struct {
	client *redis.Client
	stream string
	logger *zap.Logger
}

// NewRedisStreamPublisher creates a new Redis stream publisher from existing client
func NewRedisStreamPublisher(client *redis.Client, stream string, logger *zap.Logger) *RedisStreamPublisher {
	return &RedisStreamPublisher{
		client: client,
		stream: stream,
		logger: logger,
	}
}

// Publish appends one message to the stream
func (p *RedisStreamPublisher) Publish(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: 10000,
		Approx: true,
		Values: map[string]interface{}{
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}

func (p *RedisStreamPublisher) send(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := p.Publish(ctx, msg); err != nil {
		p.logger.Warn("failed to publish ingest event",
			zap.String("stream", p.stream),
			zap.String("type", msg.Type),
			zap.Error(err),
		)
	}
}

func (p *RedisStreamPublisher) OnJobStart(job string, total int) {
	p.send(Message{Type: TypeJobStart, Job: job, Total: total})
}

func (p *RedisStreamPublisher) OnItem(e events.Event) {
	p.send(Message{Type: TypeItem, Job: e.Job, Total: e.Total, Event: &e})
}

func (p *RedisStreamPublisher) OnJobComplete(s events.Summary) {
	p.send(Message{Type: TypeJobComplete, Job: s.Job, Summary: &s})
}

func (p *RedisStreamPublisher) OnJobError(job string, err error) {
	p.send(Message{Type: TypeJobError, Job: job, Error: err.Error()})
}
