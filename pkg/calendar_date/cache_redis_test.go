package calendar_date

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestRedisResultStore_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisResultStore(client, time.Minute)

	store.Save(context.Background(), `["pets"]`, []Entry{{Date: "2025-06-07", Title: "Dia X"}})
	entries, ok := store.Load(context.Background(), `["pets"]`)

	assert.False(t, ok)
	assert.Nil(t, entries)
}
