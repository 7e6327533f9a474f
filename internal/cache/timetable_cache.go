package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"learning-yogi/internal/model"
)

// TimetableCache keeps the denormalized timetable record keyed by the
// owning document id, since the dominant read is "the timetable
// belonging to this uploaded document". The cache is never the source
// of truth; every caller falls back to persistence on any failure here.
type TimetableCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewTimetableCache(client *redisv9.Client, ttl time.Duration) *TimetableCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &TimetableCache{client: client, ttl: ttl}
}

// Get returns the cached record and whether the key was present.
func (c *TimetableCache) Get(ctx context.Context, documentID string) (*model.Timetable, bool, error) {
	raw, err := c.client.Get(ctx, c.key(documentID)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get timetable failed: %w", err)
	}

	var tt model.Timetable
	if err := json.Unmarshal([]byte(raw), &tt); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached timetable failed: %w", err)
	}
	return &tt, true, nil
}

// Set stores the full record including the block sequence.
func (c *TimetableCache) Set(ctx context.Context, documentID string, tt *model.Timetable) error {
	payload, err := json.Marshal(tt)
	if err != nil {
		return fmt.Errorf("marshal timetable cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.key(documentID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set timetable failed: %w", err)
	}
	return nil
}

func (c *TimetableCache) Delete(ctx context.Context, documentID string) error {
	if err := c.client.Del(ctx, c.key(documentID)).Err(); err != nil {
		return fmt.Errorf("redis delete timetable failed: %w", err)
	}
	return nil
}

func (c *TimetableCache) key(documentID string) string {
	return fmt.Sprintf("timetable:%s", documentID)
}
