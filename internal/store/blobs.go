package store

import (
	"database/sql"
	"fmt"
	"time"
)

// historyDepth is how many replaced values are kept per key.
const historyDepth = 10

// GetBlob returns the current value for key. ok is false when the key has
// never been written.
func (db *DB) GetBlob(key string) (value []byte, ok bool, err error) {
	var s string
	err = db.QueryRow(`SELECT value FROM blobs WHERE key = ?`, key).Scan(&s)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get blob %s: %w", key, err)
	}
	return []byte(s), true, nil
}

// PutBlob replaces the value for key. The previous value, if different, is
// moved to blob_history and history is trimmed to the newest entries.
func (db *DB) PutBlob(key string, value []byte) error {
	now := time.Now().UnixMilli()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin put blob %s: %w", key, err)
	}
	defer tx.Rollback()

	var prev string
	err = tx.QueryRow(`SELECT value FROM blobs WHERE key = ?`, key).Scan(&prev)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return fmt.Errorf("read previous blob %s: %w", key, err)
	case prev != string(value):
		if _, err := tx.Exec(`INSERT INTO blob_history (key, value, replaced_at) VALUES (?, ?, ?)`,
			key, prev, now); err != nil {
			return fmt.Errorf("archive blob %s: %w", key, err)
		}
		if _, err := tx.Exec(`
			DELETE FROM blob_history WHERE key = ? AND id NOT IN (
				SELECT id FROM blob_history WHERE key = ? ORDER BY replaced_at DESC, id DESC LIMIT ?
			)`, key, key, historyDepth); err != nil {
			return fmt.Errorf("trim blob history %s: %w", key, err)
		}
	}

	if _, err := tx.Exec(`
		INSERT INTO blobs (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, string(value), now); err != nil {
		return fmt.Errorf("put blob %s: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit blob %s: %w", key, err)
	}
	return nil
}

// BlobHistory returns replaced values for key, newest first.
func (db *DB) BlobHistory(key string, limit int) ([][]byte, error) {
	rows, err := db.Query(`
		SELECT value FROM blob_history WHERE key = ?
		ORDER BY replaced_at DESC, id DESC LIMIT ?
	`, key, limit)
	if err != nil {
		return nil, fmt.Errorf("blob history %s: %w", key, err)
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan blob history: %w", err)
		}
		out = append(out, []byte(s))
	}
	return out, rows.Err()
}
