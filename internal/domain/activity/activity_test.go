package activity

import (
	"testing"
	"time"
)

func TestTimelineKey(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	if got := TimelineKey(ts); got != "2025-03-14" {
		t.Fatalf("unexpected key: %q", got)
	}

	// A local timestamp crossing midnight buckets by its UTC date.
	loc := time.FixedZone("UTC+5", 5*3600)
	late := time.Date(2025, 3, 15, 2, 0, 0, 0, loc)
	if got := TimelineKey(late); got != "2025-03-14" {
		t.Fatalf("expected UTC bucketing, got %q", got)
	}
}
