package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/baytides/climate-quest/pkg/content"
	"github.com/baytides/climate-quest/pkg/storage"
)

const (
	keyLocations = "content:locations" // list of location ids in registry order
	keyManifest  = "content:manifest"
	keyIndex     = "content:keys" // set of every key written by the last publish

	// PublishedChannel receives the manifest JSON after each successful publish.
	PublishedChannel = "content:published"
)

func questionKey(id string) string { return "content:question:" + id }
func eventKey(id string) string { return "content:event:" + id }
func summaryKey(loc string) string { return "content:summary:" + loc }
func locationKey(loc string) string { return "content:location:" + loc }
func locationQuestionsKey(loc string) string { return "content:location:" + loc + ":questions" }
func locationEventsKey(loc string) string { return "content:location:" + loc + ":events" }

// RedisStore implements the ContentStore interface on Redis
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
}

// Ensure RedisStore implements ContentStore interface
var _ storage.ContentStore = (*RedisStore)(nil)

// NewRedisStore creates a store from a redis:// URL
func NewRedisStore(redisURL string, logger *slog.Logger) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &RedisStore{
		client: redis.NewClient(opt),
		logger: logger,
	}, nil
}

// Health and lifecycle methods

func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStore) WaitForConnection(ctx context.Context, maxRetries int, retryDelay time.Duration) error {
	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Publish operations

type entry struct {
	key   string
	value []byte
}

// Publish replaces the published content set in one MULTI/EXEC transaction:
// every key of the previous publish is deleted and the new keys written.
func (r *RedisStore) Publish(ctx context.Context, c *content.Catalog, locations []content.Location, m storage.Manifest) error {
	if c == nil {
		return errors.New("catalog cannot be nil")
	}

	entries, lists, err := encodeCatalog(c, locations, m)
	if err != nil {
		r.logger.Error("Failed to encode content", "run_id", m.RunID, "error", err)
		return err
	}

	old, err := r.client.SMembers(ctx, keyIndex).Result()
	if err != nil {
		r.logger.Error("Failed to read previous content index", "error", err)
		return fmt.Errorf("failed to read content index: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(old) > 0 {
			pipe.Del(ctx, old...)
		}
		pipe.Del(ctx, keyIndex)

		written := make([]any, 0, len(entries)+len(lists))
		for _, e := range entries {
			pipe.Set(ctx, e.key, e.value, 0)
			written = append(written, e.key)
		}
		for key, ids := range lists {
			if len(ids) == 0 {
				continue
			}
			values := make([]any, len(ids))
			for i, id := range ids {
				values[i] = id
			}
			pipe.RPush(ctx, key, values...)
			written = append(written, key)
		}
		if len(written) > 0 {
			pipe.SAdd(ctx, keyIndex, written...)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to publish content", "run_id", m.RunID, "error", err)
		return fmt.Errorf("failed to publish content: %w", err)
	}

	r.announce(ctx, m)

	r.logger.Info("Published content",
		"run_id", m.RunID,
		"locations", m.Locations,
		"questions", m.Questions,
		"events", m.Events,
		"summaries", m.Summaries)
	return nil
}

// announce notifies subscribers that a new content set is live. The content
// is already committed, so a failed notification is only logged.
func (r *RedisStore) announce(ctx context.Context, m storage.Manifest) {
	data, err := json.Marshal(m)
	if err != nil {
		r.logger.Warn("Failed to marshal manifest for announcement", "run_id", m.RunID, "error", err)
		return
	}
	if err := r.client.Publish(ctx, PublishedChannel, data).Err(); err != nil {
		r.logger.Warn("Failed to announce published content", "run_id", m.RunID, "error", err)
	}
}

// encodeCatalog lays a catalog out as string keys and ordered id lists.
func encodeCatalog(c *content.Catalog, locations []content.Location, m storage.Manifest) ([]entry, map[string][]string, error) {
	var entries []entry
	lists := map[string][]string{}
	add := func(key string, v any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", key, err)
		}
		entries = append(entries, entry{key, data})
		return nil
	}

	for _, l := range locations {
		if err := add(locationKey(l.ID), l); err != nil {
			return nil, nil, err
		}
		lists[keyLocations] = append(lists[keyLocations], l.ID)
	}
	for _, q := range c.Questions {
		if err := add(questionKey(q.ID), q); err != nil {
			return nil, nil, err
		}
		k := locationQuestionsKey(q.LocationID)
		lists[k] = append(lists[k], q.ID)
	}
	for _, e := range c.Events {
		if err := add(eventKey(e.ID), e); err != nil {
			return nil, nil, err
		}
		k := locationEventsKey(e.LocationID)
		lists[k] = append(lists[k], e.ID)
	}
	written := map[string]bool{}
	for _, s := range c.Summaries {
		if written[s.LocationID] {
			continue
		}
		written[s.LocationID] = true
		if err := add(summaryKey(s.LocationID), s); err != nil {
			return nil, nil, err
		}
	}
	if err := add(keyManifest, m); err != nil {
		return nil, nil, err
	}
	return entries, lists, nil
}

// Read operations

func (r *RedisStore) Locations(ctx context.Context) ([]content.Location, error) {
	ids, err := r.client.LRange(ctx, keyLocations, 0, -1).Result()
	if err != nil {
		r.logger.Error("Failed to list locations", "error", err)
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = locationKey(id)
	}
	return mget[content.Location](ctx, r, keys)
}

func (r *RedisStore) Location(ctx context.Context, id string) (content.Location, error) {
	var l content.Location
	if err := r.get(ctx, locationKey(id), &l); err != nil {
		return content.Location{}, err
	}
	return l, nil
}

func (r *RedisStore) QuestionsForLocation(ctx context.Context, locationID string, band content.GradeBand) ([]content.Question, error) {
	if _, err := r.Location(ctx, locationID); err != nil {
		return nil, err
	}
	ids, err := r.client.LRange(ctx, locationQuestionsKey(locationID), 0, -1).Result()
	if err != nil {
		r.logger.Error("Failed to list questions", "location", locationID, "error", err)
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = questionKey(id)
	}
	all, err := mget[content.Question](ctx, r, keys)
	if err != nil {
		return nil, err
	}

	out := make([]content.Question, 0, len(all))
	for _, q := range all {
		if band == "" || q.GradeBand == band {
			out = append(out, q)
		}
	}
	return out, nil
}

func (r *RedisStore) EventsForLocation(ctx context.Context, locationID string, band content.GradeBand) ([]content.Event, error) {
	if _, err := r.Location(ctx, locationID); err != nil {
		return nil, err
	}
	ids, err := r.client.LRange(ctx, locationEventsKey(locationID), 0, -1).Result()
	if err != nil {
		r.logger.Error("Failed to list events", "location", locationID, "error", err)
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = eventKey(id)
	}
	all, err := mget[content.Event](ctx, r, keys)
	if err != nil {
		return nil, err
	}

	out := make([]content.Event, 0, len(all))
	for _, e := range all {
		if band == "" || e.GradeBand == band {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *RedisStore) SummaryForLocation(ctx context.Context, locationID string) (content.Summary, error) {
	var s content.Summary
	if err := r.get(ctx, summaryKey(locationID), &s); err != nil {
		return content.Summary{}, err
	}
	return s, nil
}

func (r *RedisStore) LatestManifest(ctx context.Context) (storage.Manifest, error) {
	var m storage.Manifest
	if err := r.get(ctx, keyManifest, &m); err != nil {
		return storage.Manifest{}, err
	}
	return m, nil
}

// get decodes one JSON value, mapping a missing key to storage.ErrNotFound.
func (r *RedisStore) get(ctx context.Context, key string, dst any) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return storage.ErrNotFound
		}
		r.logger.Error("Failed to load content", "key", key, "error", err)
		return fmt.Errorf("failed to load %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		r.logger.Error("Failed to unmarshal content", "key", key, "error", err)
		return fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return nil
}

// mget loads and decodes keys in order. Keys that vanished are skipped.
func mget[T any](ctx context.Context, r *RedisStore, keys []string) ([]T, error) {
	out := make([]T, 0, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		r.logger.Error("Failed to load content", "keys", len(keys), "error", err)
		return nil, fmt.Errorf("failed to load content: %w", err)
	}
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var item T
		if err := json.Unmarshal([]byte(s), &item); err != nil {
			r.logger.Error("Failed to unmarshal content", "key", keys[i], "error", err)
			return nil, fmt.Errorf("failed to unmarshal %s: %w", keys[i], err)
		}
		out = append(out, item)
	}
	return out, nil
}
