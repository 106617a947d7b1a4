package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkMergeBurst BookmarkType = "merge_burst"
	BookmarkSaturated  BookmarkType = "saturated"
	BookmarkStarved    BookmarkType = "starved"
	BookmarkStalled    BookmarkType = "stalled"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Level       int          `csv:"level"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"level", b.Level,
		"description", b.Description,
	)
}

// stalledWindows is how many quiet windows in a row count as a stall.
const stalledWindows = 10

// BookmarkDetector detects interesting moments in a level.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	quietWindows int  // consecutive windows without merges or holding
	starved      bool // starved bookmark already sent this level
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	historySize = max(historySize, 3)
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Reset forgets the history. Call it when a level starts.
func (bd *BookmarkDetector) Reset() {
	clear(bd.history)
	bd.historyIdx = 0
	bd.historyFull = false
	bd.quietWindows = 0
	bd.starved = false
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark
	for _, check := range []func(WindowStats) *Bookmark{
		bd.checkMergeBurst,
		bd.checkSaturated,
		bd.checkStarved,
		bd.checkStalled,
	} {
		if b := check(stats); b != nil {
			b.Tick = stats.WindowEndTick
			b.Level = stats.Level
			bookmarks = append(bookmarks, *b)
		}
	}
	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// checkMergeBurst fires when a window merges at least 3 times and twice the
// rolling average.
func (bd *BookmarkDetector) checkMergeBurst(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 || stats.Merges < 3 {
		return nil
	}
	total := 0
	for _, h := range history {
		total += h.Merges
	}
	avg := float64(total) / float64(len(history))
	if float64(stats.Merges) <= 2*avg {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkMergeBurst,
		Description: fmt.Sprintf("%d merges against an average of %.1f", stats.Merges, avg),
	}
}

// checkSaturated fires when most held ticks of a window hit the group cap.
func (bd *BookmarkDetector) checkSaturated(stats WindowStats) *Bookmark {
	if stats.HeldTicks < 10 || 2*stats.AllocSaturated < stats.HeldTicks {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkSaturated,
		Description: fmt.Sprintf("%d of %d held ticks saturated", stats.AllocSaturated, stats.HeldTicks),
	}
}

// checkStarved fires once per level on the first window where holding found
// no donor.
func (bd *BookmarkDetector) checkStarved(stats WindowStats) *Bookmark {
	if bd.starved || stats.AllocNoDonors == 0 {
		return nil
	}
	bd.starved = true
	return &Bookmark{
		Type:        BookmarkStarved,
		Description: fmt.Sprintf("%d held ticks found no donor", stats.AllocNoDonors),
	}
}

// checkStalled fires once after a run of windows with circles left to merge
// but no merges and no holding.
func (bd *BookmarkDetector) checkStalled(stats WindowStats) *Bookmark {
	if stats.Merges > 0 || stats.HeldTicks > 0 || stats.Circles <= stats.Groups {
		bd.quietWindows = 0
		return nil
	}
	bd.quietWindows++
	if bd.quietWindows != stalledWindows {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkStalled,
		Description: fmt.Sprintf("no merges for %d windows with %d circles in %d groups", stalledWindows, stats.Circles, stats.Groups),
	}
}
