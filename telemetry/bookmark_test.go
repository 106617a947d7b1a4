package telemetry

import "testing"

func hasBookmark(bms []Bookmark, typ BookmarkType) bool {
	for _, bm := range bms {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_MergeBurst(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := range 5 {
		bms := bd.Check(WindowStats{WindowEndTick: int32(i * 60), Merges: 1, Circles: 8, Groups: 2})
		if hasBookmark(bms, BookmarkMergeBurst) {
			t.Fatalf("burst at window %d", i)
		}
	}

	bms := bd.Check(WindowStats{WindowEndTick: 300, Level: 2, Merges: 4, Circles: 4, Groups: 2})
	if !hasBookmark(bms, BookmarkMergeBurst) {
		t.Fatal("expected merge_burst bookmark")
	}
	if bms[0].Tick != 300 || bms[0].Level != 2 {
		t.Errorf("bookmark = %+v", bms[0])
	}
}

func TestBookmarkDetector_Saturated(t *testing.T) {
	tests := []struct {
		name      string
		held, sat int
		want      bool
	}{
		{"mostly saturated", 60, 45, true},
		{"half saturated", 60, 30, true},
		{"mostly applied", 60, 10, false},
		{"short hold", 6, 6, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bd := NewBookmarkDetector(5)
			bms := bd.Check(WindowStats{HeldTicks: tt.held, AllocSaturated: tt.sat})
			if got := hasBookmark(bms, BookmarkSaturated); got != tt.want {
				t.Errorf("saturated = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBookmarkDetector_StarvedOncePerLevel(t *testing.T) {
	bd := NewBookmarkDetector(5)
	ws := WindowStats{HeldTicks: 5, AllocNoDonors: 5}

	if !hasBookmark(bd.Check(ws), BookmarkStarved) {
		t.Fatal("expected starved bookmark")
	}
	if hasBookmark(bd.Check(ws), BookmarkStarved) {
		t.Error("starved bookmark repeated within a level")
	}
	bd.Reset()
	if !hasBookmark(bd.Check(ws), BookmarkStarved) {
		t.Error("starved bookmark not sent after reset")
	}
}

func TestBookmarkDetector_Stalled(t *testing.T) {
	bd := NewBookmarkDetector(5)
	quiet := WindowStats{Circles: 3, Groups: 2}

	fired := 0
	for range 3 * stalledWindows {
		if hasBookmark(bd.Check(quiet), BookmarkStalled) {
			fired++
		}
	}
	if fired != 1 {
		t.Errorf("stalled fired %d times, want 1", fired)
	}

	// A finished level never stalls
	bd.Reset()
	for range 2 * stalledWindows {
		if hasBookmark(bd.Check(WindowStats{Circles: 2, Groups: 2}), BookmarkStalled) {
			t.Fatal("stalled on a completed level")
		}
	}
}
