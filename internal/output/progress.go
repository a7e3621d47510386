package output

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Counter reports how many units have been recorded so far.
type Counter interface {
	Len() int
}

// ProgressReporter drives a progress bar from a record counter while a
// scenario runs.
type ProgressReporter struct {
	counter  Counter
	total    int
	bar      *progressbar.ProgressBar
	ticker   *time.Ticker
	done     chan struct{}
	finished chan struct{}
	active   int32
}

// NewProgressReporter creates a progress reporter that polls counter at the
// given interval until total units are recorded or Stop is called.
func NewProgressReporter(counter Counter, total int, description string, interval time.Duration, writer io.Writer) *ProgressReporter {
	if writer == nil {
		writer = io.Discard
	}
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(writer),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("units"),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(writer)
		}),
	)
	return &ProgressReporter{
		counter:  counter,
		total:    total,
		bar:      bar,
		ticker:   time.NewTicker(interval),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
}

// Start begins polling in a background goroutine.
func (p *ProgressReporter) Start() {
	if !atomic.CompareAndSwapInt32(&p.active, 0, 1) {
		return // already running
	}
	go p.run()
}

// Stop halts polling and draws the final state of the bar.
func (p *ProgressReporter) Stop() {
	if atomic.CompareAndSwapInt32(&p.active, 1, 0) {
		close(p.done)
		<-p.finished
	}
	p.ticker.Stop()
	p.update()
	if p.counter.Len() >= p.total {
		_ = p.bar.Finish()
	}
}

// Current returns the value the bar last displayed.
func (p *ProgressReporter) Current() int {
	return int(p.bar.State().CurrentNum)
}

func (p *ProgressReporter) run() {
	defer close(p.finished)
	for {
		select {
		case <-p.ticker.C:
			p.update()
		case <-p.done:
			return
		}
	}
}

func (p *ProgressReporter) update() {
	n := p.counter.Len()
	if n > p.total {
		n = p.total
	}
	_ = p.bar.Set(n)
}
