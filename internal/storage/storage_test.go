package storage

import (
	"testing"
	"time"
)

func openMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestReplayRoundTrip(t *testing.T) {
	db := openMemDB(t)
	now := time.Now()

	payload := []byte("serialized replay data")
	if err := db.PutReplay("8461956309", payload, time.Hour, now); err != nil {
		t.Fatalf("PutReplay: %v", err)
	}

	got, err := db.GetReplay("8461956309", now)
	if err != nil {
		t.Fatalf("GetReplay: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("payload mismatch: got %q", got)
	}

	missing, err := db.GetReplay("1111111111", now)
	if err != nil {
		t.Fatalf("GetReplay missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil payload for unknown match")
	}
}

func TestReplayExpiry(t *testing.T) {
	db := openMemDB(t)
	now := time.Now()

	db.PutReplay("8461956309", []byte("x"), time.Minute, now)

	got, err := db.GetReplay("8461956309", now.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("GetReplay: %v", err)
	}
	if got != nil {
		t.Error("expired entry should read as a miss")
	}
}

func TestTouchExtendsExpiry(t *testing.T) {
	db := openMemDB(t)
	now := time.Now()

	db.PutReplay("8461956309", []byte("x"), time.Minute, now)
	if err := db.TouchReplay("8461956309", time.Hour, now.Add(50*time.Second)); err != nil {
		t.Fatalf("TouchReplay: %v", err)
	}

	got, err := db.GetReplay("8461956309", now.Add(30*time.Minute))
	if err != nil {
		t.Fatalf("GetReplay: %v", err)
	}
	if got == nil {
		t.Error("touched entry should still be alive well past the original TTL")
	}
}

func TestPurgeExpired(t *testing.T) {
	db := openMemDB(t)
	now := time.Now()

	db.PutReplay("8461956309", []byte("a"), time.Minute, now)
	db.PutReplay("8461956310", []byte("b"), time.Hour, now)

	n, err := db.PurgeExpired(now.Add(10 * time.Minute))
	if err != nil {
		t.Fatalf("PurgeExpired: %v", err)
	}
	if n != 1 {
		t.Errorf("purged %d rows, want 1", n)
	}

	stats, err := db.Stats(now.Add(10 * time.Minute))
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Entries != 1 || stats.ExpiredCount != 0 {
		t.Errorf("stats after purge = %+v", stats)
	}
}

func TestStats(t *testing.T) {
	db := openMemDB(t)
	now := time.Now()

	db.PutReplay("8461956309", []byte("abcd"), time.Hour, now)
	db.PutReplay("8461956310", []byte("ef"), -time.Minute, now)

	stats, err := db.Stats(now)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Entries != 2 {
		t.Errorf("entries = %d, want 2", stats.Entries)
	}
	if stats.TotalBytes != 6 {
		t.Errorf("total bytes = %d, want 6", stats.TotalBytes)
	}
	if stats.ExpiredCount != 1 {
		t.Errorf("expired = %d, want 1", stats.ExpiredCount)
	}
}

func TestDeleteAllReplays(t *testing.T) {
	db := openMemDB(t)
	now := time.Now()

	db.PutReplay("8461956309", []byte("a"), time.Hour, now)
	db.PutReplay("8461956310", []byte("b"), time.Hour, now)

	n, err := db.DeleteAllReplays()
	if err != nil {
		t.Fatalf("DeleteAllReplays: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d rows, want 2", n)
	}
}

func TestPutReplayIdempotent(t *testing.T) {
	db := openMemDB(t)
	now := time.Now()

	db.PutReplay("8461956309", []byte("first"), time.Hour, now)
	// Second put replaces the payload (INSERT OR REPLACE).
	if err := db.PutReplay("8461956309", []byte("second"), time.Hour, now); err != nil {
		t.Fatalf("second PutReplay: %v", err)
	}
	got, _ := db.GetReplay("8461956309", now)
	if string(got) != "second" {
		t.Errorf("payload after replace = %q", got)
	}
}

func TestListReplayIDs(t *testing.T) {
	db := openMemDB(t)
	now := time.Now()

	db.PutReplay("8461956309", []byte("a"), time.Hour, now)
	db.PutReplay("8461956310", []byte("b"), time.Hour, now.Add(time.Minute))

	ids, err := db.ListReplayIDs()
	if err != nil {
		t.Fatalf("ListReplayIDs: %v", err)
	}
	if len(ids) != 2 || ids[0] != "8461956310" {
		t.Errorf("ids = %v, want most recently accessed first", ids)
	}
}
