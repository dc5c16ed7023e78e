package ingestion

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// seedProgress prints a single, rewritten status line while a taxonomy is
// seeded. A nil *seedProgress is valid and prints nothing.
type seedProgress struct {
	mu      sync.Mutex
	w       io.Writer
	total   int
	every   int
	stored  int
	failed  int
	printed int
	began   time.Time
}

func newSeedProgress(w io.Writer, total, every int) *seedProgress {
	if w == nil {
		return nil
	}
	return &seedProgress{w: w, total: total, every: max(every, 1), began: time.Now()}
}

// done records one processed entry. ok is false when its upsert failed.
func (p *seedProgress) done(ok bool) {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if ok {
		p.stored++
	} else {
		p.failed++
	}
	if processed := p.stored + p.failed; processed-p.printed >= p.every {
		p.print()
		p.printed = processed
	}
}

// finish prints the final counts and ends the line.
func (p *seedProgress) finish() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.print()
	fmt.Fprintln(p.w)
}

// print must be called with mu held.
func (p *seedProgress) print() {
	pct := 100.0
	if p.total > 0 {
		pct = float64(p.stored+p.failed) / float64(p.total) * 100
	}
	rate := 0.0
	if secs := time.Since(p.began).Seconds(); secs > 0 {
		rate = float64(p.stored) / secs
	}
	fmt.Fprintf(p.w, "\rSeeding: %d/%d stored, %d failed (%.1f%%) - %.1f entries/s",
		p.stored, p.total, p.failed, pct, rate)
}
