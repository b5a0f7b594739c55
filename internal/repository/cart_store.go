package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// CartStore keeps the pending dish quantities of each table until checkout.
type CartStore interface {
	// SetItem stores qty for dishID; qty <= 0 removes the item.
	SetItem(ctx context.Context, tableID, dishID uint64, qty int) error
	Items(ctx context.Context, tableID uint64) (map[uint64]int, error)
	Clear(ctx context.Context, tableID uint64) error
}

// RedisCartStore keeps one hash per table, field = dish id, value = quantity.
// Every write refreshes the TTL so abandoned carts expire.
type RedisCartStore struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisCartStore(rdb *redis.Client, ttl time.Duration) *RedisCartStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &RedisCartStore{rdb: rdb, ttl: ttl, prefix: "cart"}
}

func (s *RedisCartStore) key(tableID uint64) string {
	return fmt.Sprintf("%s:%d", s.prefix, tableID)
}

func (s *RedisCartStore) SetItem(ctx context.Context, tableID, dishID uint64, qty int) error {
	key := s.key(tableID)
	field := strconv.FormatUint(dishID, 10)
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		if qty <= 0 {
			p.HDel(ctx, key, field)
		} else {
			p.HSet(ctx, key, field, qty)
		}
		p.Expire(ctx, key, s.ttl)
		return nil
	})
	return err
}

// Items skips fields that do not parse; they can only come from manual edits.
func (s *RedisCartStore) Items(ctx context.Context, tableID uint64) (map[uint64]int, error) {
	raw, err := s.rdb.HGetAll(ctx, s.key(tableID)).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[uint64]int, len(raw))
	for f, v := range raw {
		dishID, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			continue
		}
		qty, err := strconv.Atoi(v)
		if err != nil {
			continue
		}
		out[dishID] = qty
	}
	return out, nil
}

func (s *RedisCartStore) Clear(ctx context.Context, tableID uint64) error {
	return s.rdb.Del(ctx, s.key(tableID)).Err()
}

var _ CartStore = (*RedisCartStore)(nil)
