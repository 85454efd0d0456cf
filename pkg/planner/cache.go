package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/travigo/journeygraph/pkg/ctdf"
)

func NewCache(client *redis.Client, expiration time.Duration) *cache.Cache[string] {
	redisStore := redisstore.NewRedis(client, store.WithExpiration(expiration))

	return cache.New[string](redisStore)
}

// cacheKey identifies a query against one graph version. Times are stored in
// UTC so equal instants share an entry.
func (p *Planner) cacheKey(query Query) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "journeyplan:%s:%s:%s:%s:%d",
		p.Version,
		query.Origin.key(),
		query.Destination.key(),
		query.NotBefore.UTC().Format(time.RFC3339),
		query.MaxResults,
	)
	if !query.Origin.IsStop() || !query.Destination.IsStop() {
		fmt.Fprintf(&builder, ":%g:%g", query.MaxAccessDistance, query.AccessSpeed)
	}

	return builder.String()
}

func (p *Planner) cached(ctx context.Context, key string) (*ctdf.JourneyPlanResults, bool) {
	if p.Cache == nil {
		return nil, false
	}

	value, err := p.Cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}

	var results ctdf.JourneyPlanResults
	if err := json.Unmarshal([]byte(value), &results); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to decode cached journey plans")
		return nil, false
	}

	return &results, true
}

func (p *Planner) store(ctx context.Context, key string, results *ctdf.JourneyPlanResults) {
	if p.Cache == nil {
		return
	}

	value, err := json.Marshal(results)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode journey plans")
		return
	}

	if err := p.Cache.Set(ctx, key, string(value)); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to cache journey plans")
	}
}
