package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/retail-inventory/internal/inventory"
)

const (
	cacheNamespace  = "analytics:inventory"
	cacheVersionKey = cacheNamespace + ":version"
)

// Cache stores derived reports in Redis under a snapshot version shared by
// every process. A write moves the version forward so readers stop seeing
// reports derived before it; superseded entries expire on the TTL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil
}

// Version reports the current snapshot version. It is zero until the first
// write and only ever increases.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("analytics cache: read version: %w", err)
	}
	return ver, nil
}

// Bump invalidates every cached report by advancing the snapshot version.
func (c *Cache) Bump(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	if err := c.client.Incr(ctx, cacheVersionKey).Err(); err != nil {
		return fmt.Errorf("analytics cache: bump version: %w", err)
	}
	return nil
}

// HandleInventoryChanged bumps the cache version after a catalog or ledger
// write so derived reports are recomputed.
func (c *Cache) HandleInventoryChanged(ctx context.Context, _ inventory.ChangedEvent) error {
	return c.Bump(ctx)
}

// reportKey names one report variant, e.g. top_sellers with its limit.
type reportKey struct {
	report string
	params []string
}

func newReportKey(report string, params ...string) reportKey {
	return reportKey{report: report, params: params}
}

// at renders the Redis key of the report under version ver.
func (k reportKey) at(ver int64) string {
	parts := append([]string{cacheNamespace, "v" + strconv.FormatInt(ver, 10), k.report}, k.params...)
	return strings.Join(parts, ":")
}

// fetchReport returns the report stored under key, deriving and storing it on
// a miss.
func fetchReport[T any](ctx context.Context, c *Cache, key string, derive func(context.Context) (T, error)) (T, error) {
	var out T
	payload, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if err := json.Unmarshal(payload, &out); err != nil {
			return out, fmt.Errorf("analytics cache: decode %s: %w", key, err)
		}
		return out, nil
	case !errors.Is(err, redis.Nil):
		return out, fmt.Errorf("analytics cache: read %s: %w", key, err)
	}

	out, err = derive(ctx)
	if err != nil {
		return out, err
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return out, err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return out, fmt.Errorf("analytics cache: store %s: %w", key, err)
	}
	return out, nil
}
