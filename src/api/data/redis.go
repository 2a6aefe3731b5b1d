package data

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	loginCodePrefix = "logincode:"
	streamEvents    = "panel.events"
)

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

func SetLoginCode(ctx context.Context, rdb *redis.Client, email, code string) error {
	return rdb.Set(ctx, loginCodePrefix+email, code, 5*time.Minute).Err()
}

func GetAndDelLoginCode(ctx context.Context, rdb *redis.Client, email string) (string, error) {
	return rdb.GetDel(ctx, loginCodePrefix+email).Result()
}

// PublishEvent appends a state-transition record to the panel event stream.
// Consumers (dashboard widgets, auditing) read it to refresh after writes.
func PublishEvent(ctx context.Context, rdb *redis.Client, payload map[string]interface{}) error {
	_, err := rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamEvents,
		Values: payload,
	}).Result()
	return err
}
