package config

import (
	"strings"
	"testing"
)

func TestResolveStatesCodesAndNames(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"PA", "PA"},
		{"pa", "PA"},
		{"Pennsylvania", "PA"},
		{"pennsylvania", "PA"},
		{"New Hampshire", "NH"},
		{"newhampshire", "NH"},
		{"COlorado", "CO"},
		{"NOrth Carolina", "NC"},
		{"District of Columbia", "DC"},
	}

	for _, tt := range tests {
		got, err := ResolveStates([]string{tt.token})
		if err != nil {
			t.Fatalf("ResolveStates(%q) error: %v", tt.token, err)
		}
		if len(got) != 1 || got[0] != tt.want {
			t.Errorf("ResolveStates(%q) = %v; want [%s]", tt.token, got, tt.want)
		}
	}
}

func TestResolveStatesMisspellings(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"Massachusets", "MA"},
		{"Minesota", "MN"},
		{"Okakhoma", "OK"},
	}

	for _, tt := range tests {
		got, err := ResolveStates([]string{tt.token})
		if err != nil {
			t.Fatalf("ResolveStates(%q) error: %v", tt.token, err)
		}
		if len(got) != 1 || got[0] != tt.want {
			t.Errorf("ResolveStates(%q) = %v; want [%s]", tt.token, got, tt.want)
		}
	}
}

func TestResolveStatesPreservesOrderAndDedupes(t *testing.T) {
	got, err := ResolveStates([]string{"Texas", "PA", "tx", "Pennsylvania", "WY"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"TX", "PA", "WY"}
	if len(got) != len(want) {
		t.Fatalf("got %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v; want %v", got, want)
		}
	}
}

func TestResolveStatesUnknownListsAllOffenders(t *testing.T) {
	_, err := ResolveStates([]string{"Texas", "Atlantis", "PA", "Narnia"})
	if err == nil {
		t.Fatal("expected error for unknown tokens")
	}
	msg := err.Error()
	if !strings.Contains(msg, "Atlantis") || !strings.Contains(msg, "Narnia") {
		t.Errorf("error should name both unknown tokens, got: %s", msg)
	}
	if strings.Contains(msg, "Texas") {
		t.Errorf("error should not name resolvable tokens, got: %s", msg)
	}
}

func TestStateName(t *testing.T) {
	if got := StateName("IL"); got != "Illinois" {
		t.Errorf("StateName(IL) = %q", got)
	}
	if got := StateName("ZZ"); got != "ZZ" {
		t.Errorf("StateName(ZZ) = %q", got)
	}
}
