package relay

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanwe2/battleships/internal/config"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func TestRoom(t *testing.T) {
	t.Parallel()

	r := &Room{GameID: "g"}
	assert.False(t, r.Full())
	assert.Empty(t, r.First())
	assert.Empty(t, r.Other("alice"))

	r.Players = []string{"alice", "bob"}
	assert.True(t, r.Full())
	assert.True(t, r.Has("bob"))
	assert.False(t, r.Has("carol"))
	assert.Equal(t, "alice", r.First())
	assert.Equal(t, "bob", r.Other("alice"))
	assert.Equal(t, "alice", r.Other("bob"))

	r.MarkReady("alice")
	r.MarkReady("alice")
	assert.False(t, r.AllReady())
	r.MarkReady("bob")
	assert.True(t, r.AllReady())
	assert.Len(t, r.Ready, 2)
}

func TestRoomStores(t *testing.T) {
	stores := map[string]func(t *testing.T) RoomStore{
		"memory": func(*testing.T) RoomStore { return NewMemoryStore() },
		"redis": func(t *testing.T) RoomStore {
			s, _ := newTestRedisStore(t)
			return s
		},
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)

			missing, err := store.LoadRoom(ctx, "nope")
			require.NoError(t, err)
			assert.Nil(t, missing)

			room := &Room{GameID: "alice-bob", Players: []string{"alice"}, CreatedAt: time.Now().Unix()}
			require.NoError(t, store.SaveRoom(ctx, room))

			// the store holds its own copy
			room.Players = append(room.Players, "bob")

			loaded, err := store.LoadRoom(ctx, "alice-bob")
			require.NoError(t, err)
			require.NotNil(t, loaded)
			assert.Equal(t, []string{"alice"}, loaded.Players)
			assert.Equal(t, room.CreatedAt, loaded.CreatedAt)

			require.NoError(t, store.SaveRoom(ctx, room))
			require.NoError(t, store.SaveRoom(ctx, &Room{GameID: "other"}))
			n, err := store.CountRooms(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, n)

			require.NoError(t, store.DeleteRoom(ctx, "alice-bob"))
			loaded, err = store.LoadRoom(ctx, "alice-bob")
			require.NoError(t, err)
			assert.Nil(t, loaded)

			assert.NoError(t, store.SaveRoom(ctx, nil))
		})
	}
}

func TestRedisStore_Expiration(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRoom(ctx, &Room{GameID: "stale"}))
	assert.Equal(t, roomExpiration, mr.TTL(roomKeyPrefix+"stale"))

	mr.FastForward(roomExpiration + time.Minute)
	loaded, err := store.LoadRoom(ctx, "stale")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStore_CorruptRoom(t *testing.T) {
	store, mr := newTestRedisStore(t)
	require.NoError(t, mr.Set(roomKeyPrefix+"bad", "{not json"))

	_, err := store.LoadRoom(context.Background(), "bad")
	assert.Error(t, err)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := NewRedisClient(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	_ = rdb.Close()

	addr := mr.Addr()
	mr.Close()
	_, err = NewRedisClient(context.Background(), config.RedisConfig{Addr: addr})
	assert.Error(t, err)
}
