package calendar

import (
	"testing"
	"time"
)

func TestOffsetToTimeSnapsToQuarterHour(t *testing.T) {
	grid := TimeGrid{StartHour: 6, PixelsPerMinute: 2}
	day := date(2024, 3, 14)

	// 130px / 2 = 65 minutes, snapped to 60 -> 07:00.
	got := grid.OffsetToTime(day, 130)
	want := time.Date(2024, 3, 14, 7, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("OffsetToTime(130) = %v, want %v", got, want)
	}
}

func TestOffsetToTimeClampsAboveGridTop(t *testing.T) {
	grid := TimeGrid{StartHour: 6, PixelsPerMinute: 2}
	day := date(2024, 3, 14)

	got := grid.OffsetToTime(day, -40)
	want := time.Date(2024, 3, 14, 6, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("negative offset should clamp to first row, got %v", got)
	}
}

func TestTimeToOffset(t *testing.T) {
	grid := TimeGrid{StartHour: 6, PixelsPerMinute: 2}

	tests := []struct {
		hour, min int
		want      float64
	}{
		{6, 0, 0},
		{7, 0, 120},
		{9, 30, 420},
	}
	for _, tc := range tests {
		at := time.Date(2024, 3, 14, tc.hour, tc.min, 0, 0, time.UTC)
		if got := grid.TimeToOffset(at); got != tc.want {
			t.Fatalf("TimeToOffset(%02d:%02d) = %v, want %v", tc.hour, tc.min, got, tc.want)
		}
	}
}

func TestSnappedTimeRoundTripsStable(t *testing.T) {
	grid := TimeGrid{StartHour: 6, PixelsPerMinute: 2}
	day := date(2024, 3, 14)

	// Re-snapping an already snapped time must return the same time.
	for px := float64(-20); px <= 1500; px += 7 {
		snapped := grid.OffsetToTime(day, px)
		again := grid.OffsetToTime(day, grid.TimeToOffset(snapped))
		if !again.Equal(snapped) {
			t.Fatalf("snap not idempotent at %vpx: %v -> %v", px, snapped, again)
		}
		if snapped.Minute()%SnapMinutes != 0 {
			t.Fatalf("snapped time %v not on %d-minute grid", snapped, SnapMinutes)
		}
	}
}
