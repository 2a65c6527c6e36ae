package catalog

import (
	"testing"
)

func TestFind(t *testing.T) {
	c := Default()

	tests := []struct {
		query string
		first int
	}{
		{"clown", 2},
		{"BODY", 3},
		{"cloud", 5},
		{"ideal", 4},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := c.Find(tt.query)
			if len(got) == 0 {
				t.Fatalf("Find(%q) returned nothing", tt.query)
			}
			if got[0] != tt.first {
				t.Errorf("Find(%q)[0] = %d, expected %d", tt.query, got[0], tt.first)
			}
		})
	}
}

func TestFindNoMatch(t *testing.T) {
	c := Default()

	if got := c.Find("zzzzqx"); len(got) != 0 {
		t.Errorf("expected no matches, got %v", got)
	}
	if got := c.Find("   "); got != nil {
		t.Errorf("expected nil for blank query, got %v", got)
	}
}
