package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/healthconsult/telehealth-platform/pkg/logging"
)

// QuestionSource loads a condition's ordered question list.
type QuestionSource interface {
	ListQuestions(ctx context.Context, conditionID string) ([]Question, error)
}

// QuestionCache is a redis read-through cache over the question catalog.
// The catalog changes only via migrations, so a short TTL keeps session
// starts cheap without risking a stale list surviving a redeploy.
type QuestionCache struct {
	redis  *redis.Client
	source QuestionSource
	ttl    time.Duration
	logger *logging.Logger
}

// NewQuestionCache creates a cache. A nil redis client degrades to
// pass-through reads from the source.
func NewQuestionCache(redisClient *redis.Client, source QuestionSource, ttl time.Duration, logger *logging.Logger) *QuestionCache {
	if source == nil {
		panic("catalog: question source required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &QuestionCache{
		redis:  redisClient,
		source: source,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *QuestionCache) key(conditionID string) string {
	return fmt.Sprintf("catalog:questions:%s", conditionID)
}

// ListQuestions returns the condition's question list, preferring the cache.
func (c *QuestionCache) ListQuestions(ctx context.Context, conditionID string) ([]Question, error) {
	if c.redis != nil {
		data, err := c.redis.Get(ctx, c.key(conditionID)).Bytes()
		if err == nil {
			var questions []Question
			if err := json.Unmarshal(data, &questions); err == nil && len(questions) > 0 {
				return questions, nil
			}
			// Corrupt entry: fall through to the source and overwrite.
		} else if !errors.Is(err, redis.Nil) {
			c.logger.Warn("catalog: question cache read failed", "error", err, "condition_id", conditionID)
		}
	}

	questions, err := c.source.ListQuestions(ctx, conditionID)
	if err != nil {
		return nil, err
	}

	if c.redis != nil {
		if data, err := json.Marshal(questions); err == nil {
			if err := c.redis.Set(ctx, c.key(conditionID), data, c.ttl).Err(); err != nil {
				c.logger.Warn("catalog: question cache write failed", "error", err, "condition_id", conditionID)
			}
		}
	}
	return questions, nil
}
