// Package cache provides a Redis-backed cache for query embeddings and
// relevance-gate decisions, the two repeated-work hotspots in the pipeline.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	embeddingTTL = 6 * time.Hour
	gateTTL      = 10 * time.Minute
)

// Cache wraps a Redis client. A nil *Cache is safe to call — every method
// degrades to a cache miss, matching the teacher's nil-receiver pattern so
// callers don't need to special-case "caching disabled".
type Cache struct {
	client redis.UniversalClient
}

// New dials Redis and verifies connectivity. addr == "" disables caching.
func New(addr, password string, db int) (*Cache, error) {
	if addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("cache: redis ping: %w", err)
	}
	return &Cache{client: client}, nil
}

func embeddingKey(model, text string) string {
	h := sha256.Sum256([]byte(text))
	return "embed:" + model + ":" + hex.EncodeToString(h[:])
}

func gateKey(conversationContext, question string) string {
	h := sha256.Sum256([]byte(conversationContext + "\x00" + question))
	return "gate:" + hex.EncodeToString(h[:])
}

// GetEmbedding returns a cached embedding vector, or ok=false on a miss.
func (c *Cache) GetEmbedding(ctx context.Context, model, text string) ([]float32, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	key := embeddingKey(model, text)
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Debug().Err(err).Str("key", key).Msg("cache_get_embedding_error")
		}
		return nil, false
	}
	return decodeFloat32s(raw), true
}

// SetEmbedding caches an embedding vector.
func (c *Cache) SetEmbedding(ctx context.Context, model, text string, vec []float32) {
	if c == nil || c.client == nil {
		return
	}
	key := embeddingKey(model, text)
	if err := c.client.Set(ctx, key, encodeFloat32s(vec), embeddingTTL).Err(); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("cache_set_embedding_error")
	}
}

// GetGateDecision returns a cached followup/new-topic decision.
func (c *Cache) GetGateDecision(ctx context.Context, conversationContext, question string) (isFollowup bool, ok bool) {
	if c == nil || c.client == nil {
		return false, false
	}
	key := gateKey(conversationContext, question)
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Debug().Err(err).Str("key", key).Msg("cache_get_gate_error")
		}
		return false, false
	}
	return val == "1", true
}

// SetGateDecision caches a followup/new-topic decision.
func (c *Cache) SetGateDecision(ctx context.Context, conversationContext, question string, isFollowup bool) {
	if c == nil || c.client == nil {
		return
	}
	key := gateKey(conversationContext, question)
	val := "0"
	if isFollowup {
		val = "1"
	}
	if err := c.client.Set(ctx, key, val, gateTTL).Err(); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("cache_set_gate_error")
	}
}

func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func encodeFloat32s(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeFloat32s(buf []byte) []float32 {
	n := len(buf) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return out
}
