// Package redis signals downstream catalog caches that book data changed.
// The signal is best-effort: callers log failures and move on.
package redis

import (
	"context"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"
)

type Invalidator struct {
	log     *slog.Logger
	rdb     *goredis.Client
	channel string
}

func NewInvalidator(log *slog.Logger, rdb *goredis.Client, channel string) *Invalidator {
	return &Invalidator{log: log, rdb: rdb, channel: channel}
}

// Invalidate drops the local cache entry for the tag and broadcasts the tag
// on the invalidation channel so remote caches can do the same.
func (i *Invalidator) Invalidate(ctx context.Context, tag string) error {
	pipe := i.rdb.Pipeline()
	pipe.Del(ctx, "cache:"+tag)
	pipe.Publish(ctx, i.channel, tag)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("invalidate %q: %w", tag, err)
	}
	i.log.Debug("cache invalidated", "tag", tag)
	return nil
}
