package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MatthijsVer/company-manager/internal/domain/entities"
	"github.com/MatthijsVer/company-manager/pkg/config"
)

// NewRedisClient creates and pings a Redis client
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Println("redis connected")
	return client, nil
}

// PreviewCache stores preview extractions in Redis, keyed by meeting id.
// Previews are advisory; a cache miss just means the extraction reruns.
type PreviewCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPreviewCache creates a preview cache with the given TTL
func NewPreviewCache(client *redis.Client, ttl time.Duration) *PreviewCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &PreviewCache{client: client, ttl: ttl}
}

type cachedPreview struct {
	Extraction *entities.AggregatedExtraction `json:"extraction"`
	Note       string                         `json:"note,omitempty"`
}

func previewKey(meetingID uuid.UUID) string {
	return "meeting:preview:" + meetingID.String()
}

// SetPreview stores a preview extraction and its degradation note
func (c *PreviewCache) SetPreview(ctx context.Context, meetingID uuid.UUID, preview *entities.AggregatedExtraction, note string) error {
	raw, err := json.Marshal(cachedPreview{Extraction: preview, Note: note})
	if err != nil {
		return fmt.Errorf("failed to serialize preview: %w", err)
	}
	return c.client.Set(ctx, previewKey(meetingID), raw, c.ttl).Err()
}

// GetPreview retrieves a cached preview. A miss returns (nil, "", nil).
func (c *PreviewCache) GetPreview(ctx context.Context, meetingID uuid.UUID) (*entities.AggregatedExtraction, string, error) {
	raw, err := c.client.Get(ctx, previewKey(meetingID)).Bytes()
	if err == redis.Nil {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}

	var cached cachedPreview
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, "", fmt.Errorf("failed to decode cached preview: %w", err)
	}
	return cached.Extraction, cached.Note, nil
}

// InvalidatePreview drops the cached preview, used after a commit replaces
// the preview with the final extraction
func (c *PreviewCache) InvalidatePreview(ctx context.Context, meetingID uuid.UUID) error {
	return c.client.Del(ctx, previewKey(meetingID)).Err()
}
