package cli

import (
	"os"
	"testing"
)

func TestQueueRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	calls, err := LoadQueue()
	if err != nil {
		t.Fatalf("LoadQueue on empty dir: %v", err)
	}
	if len(calls) != 0 {
		t.Fatalf("expected empty queue, got %d calls", len(calls))
	}

	err = PushQueue(QueuedCall{
		Method:         "POST",
		Path:           "/v1/admin/grant",
		Body:           map[string]any{"user_id": "u1", "amount": float64(100)},
		IdempotencyKey: "key-1",
	})
	if err != nil {
		t.Fatalf("PushQueue: %v", err)
	}

	calls, err = LoadQueue()
	if err != nil {
		t.Fatalf("LoadQueue after push: %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("expected 1 queued call, got %d", len(calls))
	}
	got := calls[0]
	if got.Method != "POST" || got.Path != "/v1/admin/grant" || got.IdempotencyKey != "key-1" {
		t.Fatalf("queued call mangled: %+v", got)
	}
	if got.QueuedAt.IsZero() {
		t.Fatal("QueuedAt was not stamped")
	}

	if err := SaveQueue(nil); err != nil {
		t.Fatalf("SaveQueue(nil): %v", err)
	}
	calls, err = LoadQueue()
	if err != nil {
		t.Fatalf("LoadQueue after drain: %v", err)
	}
	if len(calls) != 0 {
		t.Fatalf("expected drained queue, got %d calls", len(calls))
	}
}

func TestQueueRejectsUnknownVersion(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path, err := queuePath()
	if err != nil {
		t.Fatalf("queuePath: %v", err)
	}
	if err := os.WriteFile(path, []byte(`{"version": 99, "calls": []}`), 0o600); err != nil {
		t.Fatalf("write queue file: %v", err)
	}
	if _, err := LoadQueue(); err == nil {
		t.Fatal("expected an error for an unsupported queue version")
	}
}
