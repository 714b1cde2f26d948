package rdx

import (
	"fmt"
	"log"
	"os"

	"campium/globals"

	"github.com/redis/go-redis/v9"
)

var Conn *redis.Client

func init() {
	addr := os.Getenv("REDIS_URL")
	if addr == "" {
		addr = "localhost:6379"
	}
	Conn = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})
}

func RdxSet(key, value string) error {
	return Conn.Set(globals.Ctx, key, value, 0).Err()
}

func RdxGet(key string) (string, error) {
	return Conn.Get(globals.Ctx, key).Result()
}

func RdxHset(hash, field, value string) error {
	return Conn.HSet(globals.Ctx, hash, field, value).Err()
}

func RdxHdel(hash, field string) (int64, error) {
	return Conn.HDel(globals.Ctx, hash, field).Result()
}

// --- Unread notification counters ---
//
// Cached counts back the badge endpoint; Mongo remains the source of truth
// and the cache is repopulated lazily on miss.

func unreadKey(userID string) string {
	return fmt.Sprintf("notif:unread:%s", userID)
}

func IncrUnread(userID string) {
	if err := Conn.Incr(globals.Ctx, unreadKey(userID)).Err(); err != nil {
		log.Printf("redis unread incr failed for %s: %v", userID, err)
	}
}

func SetUnread(userID string, count int64) {
	if err := Conn.Set(globals.Ctx, unreadKey(userID), count, 0).Err(); err != nil {
		log.Printf("redis unread set failed for %s: %v", userID, err)
	}
}

func GetUnread(userID string) (int64, bool) {
	n, err := Conn.Get(globals.Ctx, unreadKey(userID)).Int64()
	if err != nil {
		return 0, false
	}
	return n, true
}

func ClearUnread(userID string) {
	if err := Conn.Del(globals.Ctx, unreadKey(userID)).Err(); err != nil {
		log.Printf("redis unread clear failed for %s: %v", userID, err)
	}
}
