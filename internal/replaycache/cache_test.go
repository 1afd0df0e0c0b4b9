package replaycache

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mfriera/go-dota-fights/internal/model"
	"github.com/mfriera/go-dota-fights/internal/storage"
)

// fakeDecoder counts decode calls and returns a small fixed replay.
type fakeDecoder struct {
	combatCalls   atomic.Int64
	snapshotCalls atomic.Int64
	failCombat    bool
}

func (f *fakeDecoder) DecodeCombatLog(path string) ([]model.CombatLogEntry, error) {
	f.combatCalls.Add(1)
	if f.failCombat {
		return nil, errors.New("truncated file")
	}
	return []model.CombatLogEntry{
		{Tick: 600, Type: model.EntryDamage, AttackerName: "npc_dota_hero_disruptor", TargetName: "npc_dota_hero_earthshaker", InflictorName: "dota_unknown", Value: 90},
		// An uncorrelated cast: no matching effect follows, so it resolves as a miss.
		{Tick: 620, Type: model.EntryAbility, AttackerName: "npc_dota_hero_disruptor", InflictorName: "disruptor_static_storm"},
		{Tick: 650, Type: model.EntryDeath, AttackerName: "npc_dota_hero_disruptor", TargetName: "npc_dota_hero_earthshaker", InflictorName: "disruptor_thunder_strike"},
	}, nil
}

func (f *fakeDecoder) DecodeSnapshots(path string) ([]model.EntitySnapshot, error) {
	f.snapshotCalls.Add(1)
	return []model.EntitySnapshot{
		{Tick: 0, GameTime: -60, Players: []model.PlayerSnapshot{
			{PlayerID: 0, HeroName: "npc_dota_hero_earthshaker", X: -6000, Y: -5800},
		}},
		{Tick: 900, GameTime: -30},
		{Tick: 3000, GameTime: 40},
	}, nil
}

// replayFile creates an empty stand-in replay file named after the match id.
func replayFile(t *testing.T, matchID string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), matchID+".dem")
	if err := os.WriteFile(path, []byte("DEM"), 0o644); err != nil {
		t.Fatalf("write stub replay: %v", err)
	}
	return path
}

func openMemStore(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMatchIDFromPath(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/replays/8461956309.dem", "8461956309"},
		{"match_8461956309_full.dem", "8461956309"},
		{"short_123.dem", ""}, // under 10 digits, falls back to hash
	}
	for _, c := range cases {
		got := MatchIDFromPath(c.path)
		if c.want != "" && got != c.want {
			t.Errorf("MatchIDFromPath(%q) = %q, want %q", c.path, got, c.want)
		}
		if c.want == "" && got == "123" {
			t.Errorf("MatchIDFromPath(%q) must not use short digit runs", c.path)
		}
	}

	// The fallback id is stable for the same filename.
	if MatchIDFromPath("a.dem") != MatchIDFromPath("/elsewhere/a.dem") {
		t.Error("fallback id should depend only on the base name")
	}
}

func TestLoadDecodesOnce(t *testing.T) {
	dec := &fakeDecoder{}
	c := New(dec, nil)
	path := replayFile(t, "8461956309")

	first, err := c.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	second, err := c.Load(path)
	if err != nil {
		t.Fatalf("Load (cached): %v", err)
	}
	if first != second {
		t.Error("second load should return the memoized replay")
	}
	if n := dec.combatCalls.Load(); n != 1 {
		t.Errorf("combat log decoded %d times, want 1", n)
	}
}

func TestLoadSingleFlight(t *testing.T) {
	dec := &fakeDecoder{}
	c := New(dec, nil)
	path := replayFile(t, "8461956309")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Load(path); err != nil {
				t.Errorf("concurrent Load: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := dec.combatCalls.Load(); n != 1 {
		t.Errorf("combat log decoded %d times under concurrency, want 1", n)
	}
}

func TestLoadPipeline(t *testing.T) {
	c := New(&fakeDecoder{}, nil)
	pr, err := c.Load(replayFile(t, "8461956309"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if pr.MatchID != "8461956309" {
		t.Errorf("match id = %q", pr.MatchID)
	}
	if len(pr.Events) != 3 {
		t.Fatalf("got %d events, want 3", len(pr.Events))
	}

	dmg := pr.Events[0]
	if dmg.Attacker != "disruptor" || dmg.Target != "earthshaker" {
		t.Errorf("names not cleaned: %q vs %q", dmg.Attacker, dmg.Target)
	}
	if dmg.Ability != "" {
		t.Errorf("dota_unknown inflictor should clear the ability, got %q", dmg.Ability)
	}
	if !dmg.AttackerIsHero || !dmg.TargetIsHero {
		t.Error("hero flags not set")
	}

	kill := pr.Events[2]
	if kill.Ability != "disruptor_thunder_strike" {
		t.Errorf("kill ability = %q", kill.Ability)
	}
	// Tick 650 sits between breakpoints (0, -60) and (900, -30).
	if kill.GameTime >= 0 || kill.GameTime <= -60 {
		t.Errorf("kill game time = %v, want interpolated pre-horn value", kill.GameTime)
	}

	if pos, ok := pr.Positions.At("earthshaker", 100); !ok || pos.X != -6000 {
		t.Errorf("position lookup = %+v, %v", pos, ok)
	}
}

func TestLoadPersistsAcrossCaches(t *testing.T) {
	store := openMemStore(t)
	path := replayFile(t, "8461956309")

	first := &fakeDecoder{}
	if _, err := New(first, store).Load(path); err != nil {
		t.Fatalf("initial Load: %v", err)
	}

	// A fresh cache over the same store must not decode again.
	second := &fakeDecoder{}
	pr, err := New(second, store).Load(path)
	if err != nil {
		t.Fatalf("Load from store: %v", err)
	}
	if n := second.combatCalls.Load(); n != 0 {
		t.Errorf("decoded %d times despite persisted entry", n)
	}
	if len(pr.Events) != 3 || pr.Events[2].Ability != "disruptor_thunder_strike" {
		t.Errorf("persisted replay did not round-trip: %+v", pr.Events)
	}
}

func TestMissedCastSurvivesPersistence(t *testing.T) {
	store := openMemStore(t)
	path := replayFile(t, "8461956309")

	fresh, err := New(&fakeDecoder{}, store).Load(path)
	if err != nil {
		t.Fatalf("initial Load: %v", err)
	}
	if got := fresh.Events[1].Hit; got != model.HitMissed {
		t.Fatalf("fresh decode: Hit = %v, want HitMissed", got)
	}

	// A fresh cache serves the gob payload from the store; the miss must
	// not degrade to HitNotApplicable on the way through.
	reloaded, err := New(&fakeDecoder{}, store).Load(path)
	if err != nil {
		t.Fatalf("Load from store: %v", err)
	}
	if got := reloaded.Events[1].Hit; got != model.HitMissed {
		t.Errorf("after store round-trip: Hit = %v, want HitMissed", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	c := New(&fakeDecoder{}, nil)
	_, err := c.Load("/nonexistent/8461956309.dem")
	if !errors.Is(err, ErrReplayUnavailable) {
		t.Errorf("err = %v, want ErrReplayUnavailable", err)
	}
}

func TestLoadDecodeFailure(t *testing.T) {
	c := New(&fakeDecoder{failCombat: true}, nil)
	_, err := c.Load(replayFile(t, "8461956309"))
	if !errors.Is(err, ErrReplayUnavailable) {
		t.Errorf("err = %v, want ErrReplayUnavailable", err)
	}
}

func TestInvalidate(t *testing.T) {
	store := openMemStore(t)
	dec := &fakeDecoder{}
	c := New(dec, store)
	path := replayFile(t, "8461956309")

	if _, err := c.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := c.Invalidate("8461956309"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, err := c.Load(path); err != nil {
		t.Fatalf("Load after invalidate: %v", err)
	}
	if n := dec.combatCalls.Load(); n != 2 {
		t.Errorf("decoded %d times, want 2 after invalidation", n)
	}
}
