package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// ProgressDisplay renders a single progress line for a batch of video
// downloads. In verbose mode every finished item gets its own line.
type ProgressDisplay struct {
	mu        sync.Mutex
	out       io.Writer
	total     int
	done      int
	saved     int
	skipped   int
	failed    int
	bytes     int64
	current   string
	startTime time.Time
	verbose   bool
}

// NewProgressDisplay creates a display for total items
func NewProgressDisplay(out io.Writer, total int, verbose bool) *ProgressDisplay {
	return &ProgressDisplay{
		out:       out,
		total:     total,
		startTime: time.Now(),
		verbose:   verbose,
	}
}

// Start marks url as the item being worked on
func (p *ProgressDisplay) Start(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = url
	if !p.verbose {
		p.printProgress()
	}
}

// Saved records a downloaded video
func (p *ProgressDisplay) Saved(url, path string, size int64, caption string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	p.saved++
	p.bytes += size

	if !p.verbose {
		p.printProgress()
		return
	}

	line := fmt.Sprintf("%s %s • %s", Green("✓"), path, formatBytes(size))
	if caption != "" {
		line += " • " + Dim(caption)
	}
	fmt.Fprintln(p.out, line)
}

// Skipped records a video that was already on disk
func (p *ProgressDisplay) Skipped(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	p.skipped++

	if !p.verbose {
		p.printProgress()
		return
	}
	fmt.Fprintf(p.out, "%s %s • already downloaded\n", Dim("-"), url)
}

// Failed records a failed download
func (p *ProgressDisplay) Failed(url string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	p.failed++

	if !p.verbose {
		p.printProgress()
		return
	}
	fmt.Fprintf(p.out, "%s %s • %v\n", Red("✗"), url, err)
}

func (p *ProgressDisplay) printProgress() {
	const barWidth = 20

	filled := barWidth
	if p.total > 0 {
		filled = p.done * barWidth / p.total
	}
	bar := strings.Repeat("━", filled) + strings.Repeat("─", barWidth-filled)

	line := fmt.Sprintf("[%s] %d/%d • %s • %s",
		bar,
		p.done,
		p.total,
		formatBytes(p.bytes),
		p.eta(),
	)
	if p.failed > 0 {
		line += " • " + Red(fmt.Sprintf("%d failed", p.failed))
	}

	fmt.Fprintf(p.out, "\r%s\r%s", strings.Repeat(" ", 100), line)
}

// Complete prints the summary and returns the number of failures
func (p *ProgressDisplay) Complete() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := time.Since(p.startTime)

	fmt.Fprintf(p.out, "\n%s Saved %d of %d videos (%s in %s)\n",
		Green("✓"),
		p.saved,
		p.total,
		formatBytes(p.bytes),
		formatDuration(elapsed),
	)
	if p.skipped > 0 {
		fmt.Fprintf(p.out, "  %s %d already downloaded\n", Dim("•"), p.skipped)
	}
	if p.failed > 0 {
		fmt.Fprintf(p.out, "  %s %d downloads failed\n", Dim("•"), p.failed)
	}
	return p.failed
}

func (p *ProgressDisplay) eta() string {
	if p.done == 0 {
		return "calculating..."
	}

	rate := float64(p.done) / time.Since(p.startTime).Seconds()
	if rate == 0 {
		return "calculating..."
	}

	remaining := float64(p.total-p.done) / rate
	return formatDuration(time.Duration(remaining) * time.Second)
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
