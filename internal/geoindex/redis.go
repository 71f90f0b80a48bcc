package geoindex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"tripndrop/internal/domain"
)

// RedisIndex keeps pending delivery endpoints in two Redis GEO sets. Points
// Redis cannot store go into a plain set that every search returns. The
// watermark key holds the time up to which the sets are known complete.
type RedisIndex struct {
	rdb       *redis.Client
	pickups   string
	dropoffs  string
	unindexed string
	watermark string
}

// NewRedisIndex creates a new RedisIndex under prefix.
func NewRedisIndex(rdb *redis.Client, prefix string) *RedisIndex {
	if prefix == "" {
		prefix = "tripndrop:pending"
	}
	return &RedisIndex{
		rdb:       rdb,
		pickups:   prefix + ":pickup",
		dropoffs:  prefix + ":dropoff",
		unindexed: prefix + ":unindexed",
		watermark: prefix + ":watermark",
	}
}

// NewClient connects to Redis and pings it.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 3 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

// Add indexes a pending delivery.
func (i *RedisIndex) Add(ctx context.Context, id string, pickup, dropoff domain.Coordinate) error {
	_, err := i.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if !indexable(pickup) || !indexable(dropoff) {
			pipe.SAdd(ctx, i.unindexed, id)
			return nil
		}
		pipe.GeoAdd(ctx, i.pickups, &redis.GeoLocation{Name: id, Longitude: pickup.Lng, Latitude: pickup.Lat})
		pipe.GeoAdd(ctx, i.dropoffs, &redis.GeoLocation{Name: id, Longitude: dropoff.Lng, Latitude: dropoff.Lat})
		return nil
	})
	if err != nil {
		return fmt.Errorf("index add %s: %w", id, err)
	}
	return nil
}

// Remove drops a delivery from the index. Removing an unknown id is a no-op.
func (i *RedisIndex) Remove(ctx context.Context, id string) error {
	_, err := i.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, i.pickups, id)
		pipe.ZRem(ctx, i.dropoffs, id)
		pipe.SRem(ctx, i.unindexed, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("index remove %s: %w", id, err)
	}
	return nil
}

// Replace swaps the index content for pending and records watermark. The
// new sets are built under temporary keys and renamed in one MULTI, so
// readers see either the old or the new index.
func (i *RedisIndex) Replace(ctx context.Context, pending []domain.Delivery, watermark time.Time) error {
	suffix := ":rebuild:" + uuid.NewString()
	tmpPick, tmpDrop, tmpUn := i.pickups+suffix, i.dropoffs+suffix, i.unindexed+suffix

	var geo, plain int
	_, err := i.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, d := range pending {
			p, q := d.Pickup.Coordinate, d.Dropoff.Coordinate
			if !indexable(p) || !indexable(q) {
				pipe.SAdd(ctx, tmpUn, d.ID)
				plain++
				continue
			}
			pipe.GeoAdd(ctx, tmpPick, &redis.GeoLocation{Name: d.ID, Longitude: p.Lng, Latitude: p.Lat})
			pipe.GeoAdd(ctx, tmpDrop, &redis.GeoLocation{Name: d.ID, Longitude: q.Lng, Latitude: q.Lat})
			geo++
		}
		return nil
	})
	if err != nil {
		_ = i.rdb.Del(context.WithoutCancel(ctx), tmpPick, tmpDrop, tmpUn).Err()
		return fmt.Errorf("index build: %w", err)
	}

	_, err = i.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		swap(ctx, pipe, tmpPick, i.pickups, geo > 0)
		swap(ctx, pipe, tmpDrop, i.dropoffs, geo > 0)
		swap(ctx, pipe, tmpUn, i.unindexed, plain > 0)
		pipe.Set(ctx, i.watermark, watermark.UTC().Format(time.RFC3339Nano), 0)
		return nil
	})
	if err != nil {
		_ = i.rdb.Del(context.WithoutCancel(ctx), tmpPick, tmpDrop, tmpUn).Err()
		return fmt.Errorf("index swap: %w", err)
	}
	return nil
}

// RENAME fails on a missing source, and Redis drops empty sets.
func swap(ctx context.Context, pipe redis.Pipeliner, tmp, key string, built bool) {
	if built {
		pipe.Rename(ctx, tmp, key)
		return
	}
	pipe.Del(ctx, key)
}

// Candidates returns ids whose pickup and dropoff both fall inside the search
// circle around the journey, plus every unindexed id, and the watermark. A
// zero watermark means the index was never built.
func (i *RedisIndex) Candidates(ctx context.Context, j domain.Journey, radiusKm float64) ([]string, time.Time, error) {
	c := SearchCircle(j.Start.Coordinate, j.End.Coordinate, radiusKm)
	q := &redis.GeoSearchQuery{
		Longitude:  c.Center.Lng,
		Latitude:   c.Center.Lat,
		Radius:     c.RadiusKm,
		RadiusUnit: "km",
	}

	var pickCmd, dropCmd *redis.StringSliceCmd
	var extraCmd *redis.StringSliceCmd
	var markCmd *redis.StringCmd
	_, err := i.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pickCmd = pipe.GeoSearch(ctx, i.pickups, q)
		dropCmd = pipe.GeoSearch(ctx, i.dropoffs, q)
		extraCmd = pipe.SMembers(ctx, i.unindexed)
		markCmd = pipe.Get(ctx, i.watermark)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, time.Time{}, fmt.Errorf("index search: %w", err)
	}

	var mark time.Time
	if raw, err := markCmd.Result(); err == nil {
		if mark, err = time.Parse(time.RFC3339Nano, raw); err != nil {
			return nil, time.Time{}, fmt.Errorf("index watermark %q: %w", raw, err)
		}
	}

	drops := make(map[string]struct{}, len(dropCmd.Val()))
	for _, id := range dropCmd.Val() {
		drops[id] = struct{}{}
	}
	out := make([]string, 0, len(pickCmd.Val())+len(extraCmd.Val()))
	for _, id := range pickCmd.Val() {
		if _, ok := drops[id]; ok {
			out = append(out, id)
		}
	}
	return append(out, extraCmd.Val()...), mark, nil
}
