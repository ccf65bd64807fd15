package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// renderInterval throttles progress redraws.
const renderInterval = 100 * time.Millisecond

// ProgressReporter reports progress for long-running operations.
type ProgressReporter interface {
	Start(total int64)
	Update(current int64)
	Finish()
	Error(err error)
}

// SimpleProgress implements a single-line text progress reporter.
type SimpleProgress struct {
	mu         sync.Mutex
	total      int64
	current    int64
	started    time.Time
	lastRender time.Time
	writer     io.Writer
}

// NewProgressReporter creates a new progress reporter that writes to w.
// If w is nil, it defaults to os.Stderr.
func NewProgressReporter(w io.Writer) ProgressReporter {
	if w == nil {
		w = os.Stderr
	}
	return &SimpleProgress{
		writer: w,
	}
}

// Start resets the reporter. A total of zero means the total is unknown.
func (p *SimpleProgress) Start(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.current = 0
	p.started = time.Now()
	p.render()
}

// Update sets the number of processed items.
func (p *SimpleProgress) Update(current int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = current
	if time.Since(p.lastRender) >= renderInterval {
		p.render()
	}
}

// Finish draws the final state and ends the line.
func (p *SimpleProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.total > 0 {
		p.current = p.total
	}
	p.render()
	fmt.Fprintln(p.writer)
}

// Error reports an error during progress.
func (p *SimpleProgress) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.writer, "\n✗ Error: %v\n", err)
}

func (p *SimpleProgress) render() {
	p.lastRender = time.Now()

	rate := 0.0
	if elapsed := time.Since(p.started).Seconds(); elapsed > 0 {
		rate = float64(p.current) / elapsed
	}

	if p.total <= 0 {
		fmt.Fprintf(p.writer, "\rProcessed %d records (%.1f rec/s)", p.current, rate)
		return
	}

	percent := float64(p.current) / float64(p.total) * 100
	if percent > 100 {
		percent = 100
	}
	barWidth := 40
	filled := int(float64(barWidth) * percent / 100)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	fmt.Fprintf(p.writer, "\rProgress: [%s] %.1f%% (%d/%d) %.1f rec/s",
		bar, percent, p.current, p.total, rate)
}
