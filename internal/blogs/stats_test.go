package blogs

import (
	"testing"
	"time"
)

func TestMonthBuckets(t *testing.T) {
	now := time.Date(2026, time.June, 15, 12, 0, 0, 0, time.UTC)
	stamps := []time.Time{
		time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.June, 14, 9, 30, 0, 0, time.UTC),
		time.Date(2026, time.April, 30, 23, 59, 59, 0, time.UTC),
		time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC),
		// Outside the 6-month window, must be ignored.
		time.Date(2025, time.December, 31, 23, 59, 59, 0, time.UTC),
	}

	got := monthBuckets(now, 6, stamps)
	if len(got) != 6 {
		t.Fatalf("bucket count = %d, want 6", len(got))
	}

	want := []MonthCount{
		{Month: "Jan 2026", Count: 1},
		{Month: "Feb 2026", Count: 0},
		{Month: "Mar 2026", Count: 0},
		{Month: "Apr 2026", Count: 1},
		{Month: "May 2026", Count: 0},
		{Month: "Jun 2026", Count: 2},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("bucket[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestMonthBucketsEmpty(t *testing.T) {
	now := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)
	got := monthBuckets(now, 6, nil)
	for _, b := range got {
		if b.Count != 0 {
			t.Errorf("bucket %s = %d, want 0", b.Month, b.Count)
		}
	}
}
