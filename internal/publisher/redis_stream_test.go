package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fortuna/bbref/internal/events"
)

const testStream = "bbref.test.events"

func readAll(t *testing.T, client *redis.Client) []Message {
	t.Helper()
	entries, err := client.XRange(context.Background(), testStream, "-", "+").Result()
	require.NoError(t, err)

	out := make([]Message, 0, len(entries))
	for _, e := range entries {
		var msg Message
		require.NoError(t, json.Unmarshal([]byte(e.Values["data"].(string)), &msg))
		out = append(out, msg)
	}
	return out
}

func TestRedisStreamPublisher_Reporter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	p := NewRedisStreamPublisher(client, testStream, zap.NewNop())
	var r events.Reporter = p

	r.OnJobStart("roster", 2)
	r.OnItem(events.Event{Job: "roster", Item: "BOS", Index: 1, Total: 2, Outcome: events.OutcomeIngested, Inserted: 4})
	r.OnJobComplete(events.Summary{Job: "roster", Items: 2, Ingested: 1})
	r.OnJobError("schedule", errors.New("boom"))

	msgs := readAll(t, client)
	require.Len(t, msgs, 4)

	assert.Equal(t, TypeJobStart, msgs[0].Type)
	assert.Equal(t, 2, msgs[0].Total)

	assert.Equal(t, TypeItem, msgs[1].Type)
	require.NotNil(t, msgs[1].Event)
	assert.Equal(t, "BOS", msgs[1].Event.Item)
	assert.Equal(t, 4, msgs[1].Event.Inserted)

	assert.Equal(t, TypeJobComplete, msgs[2].Type)
	require.NotNil(t, msgs[2].Summary)
	assert.Equal(t, 1, msgs[2].Summary.Ingested)

	assert.Equal(t, TypeJobError, msgs[3].Type)
	assert.Equal(t, "schedule", msgs[3].Job)
	assert.Equal(t, "boom", msgs[3].Error)
}

func TestRedisStreamPublisher_DropsOnFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	mr.Close()

	core, logs := observer.New(zap.WarnLevel)
	p := NewRedisStreamPublisher(client, testStream, zap.New(core))

	assert.NotPanics(t, func() { p.OnJobStart("roster", 30) })
	assert.Equal(t, 1, logs.FilterMessage("failed to publish ingest event").Len())
}
