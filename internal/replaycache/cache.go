// Package replaycache decodes replay files once and serves the derived
// event data from memory or a SQLite-backed TTL cache afterwards.
package replaycache

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mfriera/go-dota-fights/internal/abilities"
	"github.com/mfriera/go-dota-fights/internal/classify"
	"github.com/mfriera/go-dota-fights/internal/decoder"
	"github.com/mfriera/go-dota-fights/internal/model"
	"github.com/mfriera/go-dota-fights/internal/storage"
)

// ErrReplayUnavailable marks a replay file that cannot be read or decoded.
var ErrReplayUnavailable = errors.New("replay unavailable")

// DefaultTTL is how long a decoded replay stays cached. Replays are
// immutable, the TTL only bounds disk usage.
const DefaultTTL = 7 * 24 * time.Hour

var matchIDPattern = regexp.MustCompile(`(\d{10,})`)

// MatchIDFromPath extracts the numeric match id from a replay filename.
// Paths without one get a stable fnv-based synthetic id so they still cache.
func MatchIDFromPath(path string) string {
	base := filepath.Base(path)
	if m := matchIDPattern.FindString(base); m != "" {
		return m
	}
	h := fnv.New64a()
	h.Write([]byte(base))
	return fmt.Sprintf("local_%x", h.Sum64())
}

// ParsedReplay is the fully derived, cacheable form of one replay: the
// classified event stream plus the indices needed to query it.
type ParsedReplay struct {
	MatchID   string
	Events    []model.ClassifiedEvent
	TimeIndex model.GameTimeIndex
	Positions model.HeroPositionIndex
	Snapshots []model.EntitySnapshot
}

// Cache decodes replays on demand. Concurrent requests for the same match
// share a single decode; results persist across runs through the store.
type Cache struct {
	dec       decoder.Decoder
	store     *storage.DB
	ttl       time.Duration
	hitWindow float64
	log       *slog.Logger

	group singleflight.Group

	mu  sync.RWMutex
	mem map[string]*ParsedReplay
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL overrides the cache entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) { c.ttl = ttl }
}

// WithHitWindow overrides the cast-to-effect correlation window in seconds.
func WithHitWindow(seconds float64) Option {
	return func(c *Cache) { c.hitWindow = seconds }
}

// WithLogger overrides the default logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Cache) { c.log = log }
}

// New builds a cache over the given decoder and store. The store may be nil,
// which disables persistence and keeps entries in memory only.
func New(dec decoder.Decoder, store *storage.DB, opts ...Option) *Cache {
	c := &Cache{
		dec:       dec,
		store:     store,
		ttl:       DefaultTTL,
		hitWindow: abilities.DefaultHitWindow,
		log:       slog.Default(),
		mem:       make(map[string]*ParsedReplay),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load returns the parsed form of the replay at path, decoding it at most
// once no matter how many goroutines ask concurrently.
func (c *Cache) Load(path string) (*ParsedReplay, error) {
	matchID := MatchIDFromPath(path)

	c.mu.RLock()
	cached, ok := c.mem[matchID]
	c.mu.RUnlock()
	if ok {
		c.touch(matchID)
		return cached, nil
	}

	v, err, _ := c.group.Do(matchID, func() (interface{}, error) {
		return c.loadSlow(matchID, path)
	})
	if err != nil {
		return nil, err
	}
	return v.(*ParsedReplay), nil
}

func (c *Cache) loadSlow(matchID, path string) (*ParsedReplay, error) {
	// Another caller may have finished while we waited on the flight.
	c.mu.RLock()
	cached, ok := c.mem[matchID]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	if pr := c.fromStore(matchID); pr != nil {
		c.log.Debug("replay cache hit", "match_id", matchID, "source", "store")
		c.remember(pr)
		return pr, nil
	}

	c.log.Debug("replay cache miss", "match_id", matchID, "path", path)
	pr, err := c.decode(matchID, path)
	if err != nil {
		return nil, err
	}
	c.remember(pr)
	c.persist(pr)
	return pr, nil
}

// decode runs the full pipeline: raw entries and snapshots out of the
// decoder, then classification and ability hit annotation.
func (c *Cache) decode(matchID, path string) (*ParsedReplay, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrReplayUnavailable, path, err)
	}

	started := time.Now()
	entries, err := c.dec.DecodeCombatLog(path)
	if err != nil {
		return nil, fmt.Errorf("%w: decode combat log %s: %v", ErrReplayUnavailable, path, err)
	}
	snapshots, err := c.dec.DecodeSnapshots(path)
	if err != nil {
		return nil, fmt.Errorf("%w: decode snapshots %s: %v", ErrReplayUnavailable, path, err)
	}

	timeIndex := buildTimeIndex(snapshots)
	events := classify.Events(entries, timeIndex)
	hits := abilities.BuildIndex(events, c.hitWindow)
	abilities.Annotate(events, hits)

	pr := &ParsedReplay{
		MatchID:   matchID,
		Events:    events,
		TimeIndex: timeIndex,
		Positions: buildPositionIndex(snapshots),
		Snapshots: snapshots,
	}
	c.log.Info("replay decoded",
		"match_id", matchID,
		"entries", len(entries),
		"snapshots", len(snapshots),
		"elapsed", time.Since(started).Round(time.Millisecond))
	return pr, nil
}

func buildTimeIndex(snapshots []model.EntitySnapshot) model.GameTimeIndex {
	points := make([]model.Breakpoint, 0, len(snapshots))
	for _, s := range snapshots {
		points = append(points, model.Breakpoint{Tick: s.Tick, Time: s.GameTime})
	}
	return model.NewGameTimeIndex(points)
}

func buildPositionIndex(snapshots []model.EntitySnapshot) model.HeroPositionIndex {
	byTick := make(map[int]map[string]model.Position, len(snapshots))
	for _, s := range snapshots {
		if len(s.Players) == 0 {
			continue
		}
		at := make(map[string]model.Position, len(s.Players))
		for _, p := range s.Players {
			at[classify.CleanName(p.HeroName)] = model.Position{X: p.X, Y: p.Y}
		}
		byTick[s.Tick] = at
	}
	return model.NewHeroPositionIndex(byTick)
}

func (c *Cache) remember(pr *ParsedReplay) {
	c.mu.Lock()
	c.mem[pr.MatchID] = pr
	c.mu.Unlock()
}

func (c *Cache) fromStore(matchID string) *ParsedReplay {
	if c.store == nil {
		return nil
	}
	payload, err := c.store.GetReplay(matchID, time.Now())
	if err != nil {
		c.log.Warn("replay cache read failed", "match_id", matchID, "error", err)
		return nil
	}
	if payload == nil {
		return nil
	}
	var pr ParsedReplay
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&pr); err != nil {
		// A stale or corrupt blob is treated as a miss and overwritten.
		c.log.Warn("replay cache entry corrupt", "match_id", matchID, "error", err)
		c.store.DeleteReplay(matchID)
		return nil
	}
	c.touch(matchID)
	return &pr
}

func (c *Cache) persist(pr *ParsedReplay) {
	if c.store == nil {
		return
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(pr); err != nil {
		c.log.Warn("replay cache encode failed", "match_id", pr.MatchID, "error", err)
		return
	}
	if err := c.store.PutReplay(pr.MatchID, buf.Bytes(), c.ttl, time.Now()); err != nil {
		c.log.Warn("replay cache write failed", "match_id", pr.MatchID, "error", err)
	}
}

func (c *Cache) touch(matchID string) {
	if c.store == nil {
		return
	}
	if err := c.store.TouchReplay(matchID, c.ttl, time.Now()); err != nil {
		c.log.Warn("replay cache touch failed", "match_id", matchID, "error", err)
	}
}

// Invalidate drops a match from memory and the store.
func (c *Cache) Invalidate(matchID string) error {
	c.mu.Lock()
	delete(c.mem, matchID)
	c.mu.Unlock()
	if c.store == nil {
		return nil
	}
	return c.store.DeleteReplay(matchID)
}
