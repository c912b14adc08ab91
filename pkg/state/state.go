// Package state persists small per-user session facts between CLI
// runs: the last active thread, the recent-thread list and local
// transcript snapshots. Storage is a pebble database under the
// configured state directory.
package state

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"

	"askdb/pkg/logger"
	"askdb/pkg/models"
)

var db *pebble.DB

const recentLimit = 20

// Open opens or creates the state database at path.
func Open(path string) error {
	var err error
	db, err = pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("state_open_failed", "path", path, "error", err)
		return fmt.Errorf("askdb: open state db: %w", err)
	}
	return nil
}

// Close closes the state database.
func Close() error {
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return err
	}
	db = nil
	return nil
}

func lastKey(userID string) []byte    { return []byte("last/" + userID) }
func recentKey(userID string) []byte  { return []byte("recent/" + userID) }
func transcriptKey(tid string) []byte { return []byte("transcript/" + tid) }

// SetLastThread records the thread the user was in when the session
// ended.
func SetLastThread(userID, threadID string) error {
	if db == nil {
		return fmt.Errorf("state not opened; call state.Open first")
	}
	return db.Set(lastKey(userID), []byte(threadID), pebble.Sync)
}

// LastThread returns the last active thread id, or "" when none is
// recorded.
func LastThread(userID string) (string, error) {
	if db == nil {
		return "", fmt.Errorf("state not opened; call state.Open first")
	}
	v, closer, err := db.Get(lastKey(userID))
	if errors.Is(err, pebble.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer closer.Close()
	out := string(v)
	return out, nil
}

// TouchRecent moves threadID to the front of the user's recent list,
// trimming the tail past the retention limit.
func TouchRecent(userID, threadID string) error {
	if db == nil {
		return fmt.Errorf("state not opened; call state.Open first")
	}
	ids, err := Recent(userID)
	if err != nil {
		return err
	}
	out := make([]string, 0, len(ids)+1)
	out = append(out, threadID)
	for _, id := range ids {
		if id != threadID {
			out = append(out, id)
		}
	}
	if len(out) > recentLimit {
		out = out[:recentLimit]
	}
	b, err := json.Marshal(out)
	if err != nil {
		return err
	}
	return db.Set(recentKey(userID), b, pebble.Sync)
}

// Recent returns the user's recent thread ids, most recent first.
func Recent(userID string) ([]string, error) {
	if db == nil {
		return nil, fmt.Errorf("state not opened; call state.Open first")
	}
	v, closer, err := db.Get(recentKey(userID))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	var ids []string
	if err := json.Unmarshal(v, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// SaveTranscript snapshots the normalized messages of a thread so the
// next run can show history before the first fetch lands.
func SaveTranscript(threadID string, msgs []models.ChatMessage) error {
	if db == nil {
		return fmt.Errorf("state not opened; call state.Open first")
	}
	b, err := json.Marshal(msgs)
	if err != nil {
		return err
	}
	return db.Set(transcriptKey(threadID), b, pebble.NoSync)
}

// Transcript returns the snapshot for threadID, or nil when none is
// stored.
func Transcript(threadID string) ([]models.ChatMessage, error) {
	if db == nil {
		return nil, fmt.Errorf("state not opened; call state.Open first")
	}
	v, closer, err := db.Get(transcriptKey(threadID))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	var msgs []models.ChatMessage
	if err := json.Unmarshal(v, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}
