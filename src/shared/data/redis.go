package data

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const streamTransitions = "agora.transitions"

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

// PublishTransition emits a proposal state-change record to the transitions
// stream for external consumers. Best effort; callers ignore the error at
// their discretion.
func PublishTransition(ctx context.Context, rdb *redis.Client, messageID, from, to string) error {
	_, err := rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamTransitions,
		Values: map[string]interface{}{
			"id":         uuid.NewString(),
			"message_id": messageID,
			"from":       from,
			"to":         to,
			"time":       time.Now().Unix(),
		},
	}).Result()
	return err
}
