package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ivanwe2/battleships/internal/config"
)

const (
	roomKeyPrefix = "battleship:room:"

	// abandoned rooms expire on their own
	roomExpiration = 2 * time.Hour
)

// NewRedisClient connects to redis and checks the connection.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return rdb, nil
}

// RedisStore keeps rooms in redis so a relay restart does not lose games.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (rs *RedisStore) LoadRoom(ctx context.Context, gameID string) (*Room, error) {
	data, err := rs.client.Get(ctx, roomKeyPrefix+gameID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var room Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, fmt.Errorf("decode room %s: %w", gameID, err)
	}
	return &room, nil
}

func (rs *RedisStore) SaveRoom(ctx context.Context, room *Room) error {
	if room == nil {
		return nil
	}
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("encode room %s: %w", room.GameID, err)
	}
	return rs.client.Set(ctx, roomKeyPrefix+room.GameID, data, roomExpiration).Err()
}

func (rs *RedisStore) DeleteRoom(ctx context.Context, gameID string) error {
	return rs.client.Del(ctx, roomKeyPrefix+gameID).Err()
}

// CountRooms scans the room keys.
func (rs *RedisStore) CountRooms(ctx context.Context) (int, error) {
	n := 0
	iter := rs.client.Scan(ctx, 0, roomKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n++
	}
	return n, iter.Err()
}
