package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const queueFormatVersion = 1

// QueuedCall is a write captured while the API was unreachable, replayed
// later by `gmctl flush-queue`. The idempotency key is minted at queue time,
// so replaying the same call twice lands on the server once.
type QueuedCall struct {
	Method         string         `json:"method"`
	Path           string         `json:"path"`
	AsUser         string         `json:"as_user,omitempty"`
	Body           map[string]any `json:"body,omitempty"`
	IdempotencyKey string         `json:"idempotency_key"`
	QueuedAt       time.Time      `json:"queued_at"`
}

type queueFile struct {
	Version int          `json:"version"`
	Calls   []QueuedCall `json:"calls"`
}

func queuePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".gmctl")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "queue.json"), nil
}

func LoadQueue() ([]QueuedCall, error) {
	path, err := queuePath()
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var qf queueFile
	if err := json.Unmarshal(raw, &qf); err != nil {
		return nil, fmt.Errorf("queue file is corrupt: %w", err)
	}
	if qf.Version != queueFormatVersion {
		return nil, fmt.Errorf("queue file version %d is not supported", qf.Version)
	}
	return qf.Calls, nil
}

// SaveQueue writes atomically via a temp file so a crash mid-write cannot
// lose queued calls. An empty queue removes the file.
func SaveQueue(calls []QueuedCall) error {
	path, err := queuePath()
	if err != nil {
		return err
	}
	if len(calls) == 0 {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	raw, err := json.MarshalIndent(queueFile{Version: queueFormatVersion, Calls: calls}, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func PushQueue(call QueuedCall) error {
	calls, err := LoadQueue()
	if err != nil {
		return err
	}
	if call.QueuedAt.IsZero() {
		call.QueuedAt = time.Now()
	}
	return SaveQueue(append(calls, call))
}
