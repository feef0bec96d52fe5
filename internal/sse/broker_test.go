package sse

import (
	"strings"
	"testing"
	"time"
)

func recv(t *testing.T, ch chan []byte) string {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return string(msg)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return ""
	}
}

func TestBrokerPublish(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()

	ch := b.Subscribe()
	b.Publish(Event{Type: TypeImportProgress, Data: map[string]any{"space": "Work"}})

	msg := recv(t, ch)
	if !strings.HasPrefix(msg, "event: import.progress\n") {
		t.Errorf("message = %q", msg)
	}
	if !strings.Contains(msg, `"space":"Work"`) {
		t.Errorf("payload missing: %q", msg)
	}
}

func TestBrokerReloadThrottlesPreview(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()

	ch := b.Subscribe()
	b.PublishSidebarReload("/tmp/StorableSidebar.json", 3)
	b.PublishSidebarReload("/tmp/StorableSidebar.json", 3)

	first := recv(t, ch)
	if !strings.HasPrefix(first, "event: sidebar.reloaded\n") {
		t.Fatalf("first = %q", first)
	}
	second := recv(t, ch)
	if !strings.HasPrefix(second, "event: preview.updated\n") {
		t.Fatalf("second = %q", second)
	}
	// The second reload arrives inside the throttle window: reload event
	// only, no second preview.
	third := recv(t, ch)
	if !strings.HasPrefix(third, "event: sidebar.reloaded\n") {
		t.Fatalf("third = %q", third)
	}
	select {
	case msg := <-ch:
		t.Fatalf("unexpected extra event %q", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBrokerClientCount(t *testing.T) {
	b := NewBroker(0)
	defer b.Close()

	if n := b.ClientCount(); n != 0 {
		t.Fatalf("count = %d, want 0", n)
	}
	ch := b.Subscribe()
	if n := b.ClientCount(); n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}
	b.Unsubscribe(ch)
	if n := b.ClientCount(); n != 0 {
		t.Fatalf("count = %d after unsubscribe, want 0", n)
	}
}

func TestBrokerClose(t *testing.T) {
	b := NewBroker(0)
	ch := b.Subscribe()
	b.Close()

	if _, ok := <-ch; ok {
		t.Error("client channel should be closed")
	}
	if n := b.ClientCount(); n != 0 {
		t.Errorf("count after close = %d", n)
	}
	// Publishing after close must not panic or block.
	b.Publish(Event{Type: TypeImportProgress})
}
