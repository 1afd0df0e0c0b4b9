package storage

import (
	"database/sql"
	"errors"
	"time"
)

// CacheStats summarizes the replay cache contents.
type CacheStats struct {
	Entries      int
	TotalBytes   int64
	ExpiredCount int
}

// PutReplay stores (or replaces) a serialized replay with the given TTL.
func (db *DB) PutReplay(matchID string, payload []byte, ttl time.Duration, now time.Time) error {
	_, err := db.conn.Exec(`
		INSERT OR REPLACE INTO replays(match_id, payload, created_at, last_access, expires_at)
		VALUES (?, ?, ?, ?, ?)`,
		matchID, payload, now.Unix(), now.Unix(), now.Add(ttl).Unix(),
	)
	return err
}

// GetReplay returns the payload for a match, or (nil, nil) when the entry is
// missing or already expired. Expired rows are left for PurgeExpired.
func (db *DB) GetReplay(matchID string, now time.Time) ([]byte, error) {
	var payload []byte
	var expiresAt int64
	err := db.conn.QueryRow(
		"SELECT payload, expires_at FROM replays WHERE match_id = ?", matchID,
	).Scan(&payload, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if expiresAt <= now.Unix() {
		return nil, nil
	}
	return payload, nil
}

// TouchReplay refreshes an entry's last access time and pushes its expiry
// forward by the TTL.
func (db *DB) TouchReplay(matchID string, ttl time.Duration, now time.Time) error {
	_, err := db.conn.Exec(
		"UPDATE replays SET last_access = ?, expires_at = ? WHERE match_id = ?",
		now.Unix(), now.Add(ttl).Unix(), matchID,
	)
	return err
}

// DeleteReplay removes a single cached replay.
func (db *DB) DeleteReplay(matchID string) error {
	_, err := db.conn.Exec("DELETE FROM replays WHERE match_id = ?", matchID)
	return err
}

// DeleteAllReplays empties the cache and returns the number of rows removed.
func (db *DB) DeleteAllReplays() (int64, error) {
	res, err := db.conn.Exec("DELETE FROM replays")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// PurgeExpired removes entries whose TTL has lapsed and returns the count.
func (db *DB) PurgeExpired(now time.Time) (int64, error) {
	res, err := db.conn.Exec("DELETE FROM replays WHERE expires_at <= ?", now.Unix())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Stats reports entry count, total payload size and how many rows are expired.
func (db *DB) Stats(now time.Time) (CacheStats, error) {
	var s CacheStats
	err := db.conn.QueryRow(`
		SELECT COUNT(1),
		       COALESCE(SUM(LENGTH(payload)), 0),
		       COALESCE(SUM(CASE WHEN expires_at <= ? THEN 1 ELSE 0 END), 0)
		FROM replays`, now.Unix(),
	).Scan(&s.Entries, &s.TotalBytes, &s.ExpiredCount)
	if err != nil {
		return CacheStats{}, err
	}
	return s, nil
}

// ListReplayIDs returns the cached match ids ordered by most recent access.
func (db *DB) ListReplayIDs() ([]string, error) {
	rows, err := db.conn.Query("SELECT match_id FROM replays ORDER BY last_access DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
