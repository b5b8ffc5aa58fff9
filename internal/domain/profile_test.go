package domain

import (
	"testing"
	"time"
)

func TestNormalizeHumanName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"Bob Jones", "Bob Jones"},
		{"  Bob   Jones ", "Bob Jones"},
		{"\tBob\nJones", "Bob Jones"},
		{"Bob", "Bob"},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range tests {
		if got := NormalizeHumanName(tc.in); got != tc.want {
			t.Errorf("NormalizeHumanName(%q)=%q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSplitHumanName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, first, last string
	}{
		{"Bob Jones", "Bob", "Jones"},
		{"Mary Jane Watson", "Mary", "Jane Watson"},
		{"Bob", "Bob", ""},
		{"  Bob   Jones ", "Bob", "Jones"},
		{"", "", ""},
	}
	for _, tc := range tests {
		first, last := SplitHumanName(tc.in)
		if first != tc.first || last != tc.last {
			t.Errorf("SplitHumanName(%q)=(%q, %q), want (%q, %q)", tc.in, first, last, tc.first, tc.last)
		}
	}
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	p := Profile{FullName: "Bob Jones", FirstName: "Bob"}
	if got := p.DisplayName(); got != "Bob Jones" {
		t.Fatalf("DisplayName=%q", got)
	}
	p = Profile{FirstName: "Bob"}
	if got := p.DisplayName(); got != "Bob" {
		t.Fatalf("DisplayName=%q", got)
	}
	p = Profile{}
	if got := p.DisplayName(); got != "" {
		t.Fatalf("DisplayName=%q", got)
	}
}

func TestPlaceholderEmails(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	got := PlaceholderEmail(now, "abc123")
	want := "secondary-1748779200000-abc123@placeholder.meca.local"
	if got != want {
		t.Fatalf("PlaceholderEmail=%q, want %q", got, want)
	}
	if !IsPlaceholderEmail(got) {
		t.Fatal("PlaceholderEmail output not recognized as placeholder")
	}

	repair := RepairPlaceholderEmail("123456789abcdef", now)
	wantRepair := "secondary-12345678-1748779200000@placeholder.meca.local"
	if repair != wantRepair {
		t.Fatalf("RepairPlaceholderEmail=%q, want %q", repair, wantRepair)
	}

	if IsPlaceholderEmail("bob@example.com") {
		t.Fatal("real address flagged as placeholder")
	}
	if IsPlaceholderEmail("bob@notplaceholder.meca.local.example.com") {
		t.Fatal("suffix check too loose")
	}
}
