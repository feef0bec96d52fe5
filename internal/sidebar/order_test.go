package sidebar

import "testing"

const (
	containerA = "3f2a6c1e-9d4b-4f0e-8a7c-1b2c3d4e5f60"
	containerB = "7e1d0b9a-2c3f-4a5b-9c8d-0e1f2a3b4c5d"
)

func TestResolveOrder_SentinelsBeforeContainer(t *testing.T) {
	f := &fixture{}
	f.addContainer(containerA, "T1", "F1", "T2")
	f.addSpace("S1", "Work", "unpinned", containerA, "pinned")

	doc := f.parse(t)
	order := ResolveOrder(doc.Spaces()[0], doc, discardLogger())
	want := []string{"T1", "F1", "T2"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestResolveOrder_ContainerBeforeSentinels(t *testing.T) {
	f := &fixture{}
	f.addContainer(containerA, "T9")
	f.addSpace("S1", "Work", containerA, "pinned", "unpinned")

	doc := f.parse(t)
	order := ResolveOrder(doc.Spaces()[0], doc, discardLogger())
	if len(order) != 1 || order[0] != "T9" {
		t.Fatalf("order = %v, want [T9]", order)
	}
}

func TestResolveOrder_FirstNonEmptyWins(t *testing.T) {
	f := &fixture{}
	f.addContainer(containerA) // empty, must be passed over
	f.addContainer(containerB, "T1")
	f.addSpace("S1", "Work", "pinned", containerA, containerB)

	doc := f.parse(t)
	order := ResolveOrder(doc.Spaces()[0], doc, discardLogger())
	if len(order) != 1 || order[0] != "T1" {
		t.Fatalf("order = %v, want [T1]", order)
	}
}

func TestResolveOrder_NoResolvableContainer(t *testing.T) {
	f := &fixture{}
	f.addContainer(containerA)
	f.addSpace("S1", "Empty", "pinned", "unpinned", containerA, "not-a-uuid")

	doc := f.parse(t)
	if order := ResolveOrder(doc.Spaces()[0], doc, discardLogger()); len(order) != 0 {
		t.Fatalf("order = %v, want empty", order)
	}
}
