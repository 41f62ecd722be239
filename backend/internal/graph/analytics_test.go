package graph

import (
	"testing"
)

func TestNewTriangle_SortsIdentifiers(t *testing.T) {
	cases := []struct {
		in   [3]string
		want Triangle
	}{
		{[3]string{"carol", "alice", "bob"}, Triangle{"alice", "bob", "carol"}},
		{[3]string{"alice", "bob", "carol"}, Triangle{"alice", "bob", "carol"}},
		{[3]string{"z", "a", "m"}, Triangle{"a", "m", "z"}},
	}
	for _, tc := range cases {
		got := NewTriangle(tc.in[0], tc.in[1], tc.in[2])
		if got != tc.want {
			t.Errorf("NewTriangle(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestDedupeTriangles_CollapsesOrderings(t *testing.T) {
	// The same 3-cycle discovered in both traversal directions
	raw := []Triangle{
		NewTriangle("u", "alice", "bob"),
		NewTriangle("u", "bob", "alice"),
	}

	got := DedupeTriangles(raw)
	if len(got) != 1 {
		t.Fatalf("Expected 1 cluster, got %d: %v", len(got), got)
	}
	if got[0] != (Triangle{"alice", "bob", "u"}) {
		t.Errorf("Unexpected cluster: %v", got[0])
	}
}

func TestDedupeTriangles_Empty(t *testing.T) {
	if got := DedupeTriangles(nil); len(got) != 0 {
		t.Errorf("Expected empty result, got %v", got)
	}
}

func TestDedupeTriangles_Deterministic(t *testing.T) {
	raw := []Triangle{
		NewTriangle("u", "d", "e"),
		NewTriangle("u", "b", "c"),
		NewTriangle("u", "e", "d"),
	}

	got := DedupeTriangles(raw)
	if len(got) != 2 {
		t.Fatalf("Expected 2 clusters, got %d", len(got))
	}
	// Lexicographic output order regardless of discovery order
	if got[0] != (Triangle{"b", "c", "u"}) || got[1] != (Triangle{"d", "e", "u"}) {
		t.Errorf("Unexpected cluster order: %v", got)
	}
}

func TestInteractionKind_Valid(t *testing.T) {
	for _, kind := range []InteractionKind{InteractionLike, InteractionComment, InteractionShare} {
		if !kind.Valid() {
			t.Errorf("%s should be valid", kind)
		}
	}
	if InteractionKind("POKED_POST").Valid() {
		t.Error("unknown kind should not be valid")
	}
	if InteractionKind("").Valid() {
		t.Error("empty kind should not be valid")
	}
}
