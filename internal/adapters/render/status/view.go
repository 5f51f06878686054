package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/mmwall/internal/application"
	"github.com/bnema/mmwall/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type RenderOptions struct {
	Now time.Time
	// Limit caps listed rows; zero lists everything.
	Limit int
}

// RenderResult renders the outcome of one next or previous step.
func RenderResult(result application.Result) (string, error) {
	return run(func(s styles) string {
		return resultView(result, s)
	})
}

func RenderStatus(status application.Status, opts RenderOptions) (string, error) {
	return run(func(s styles) string {
		return statusView(status, opts, s)
	})
}

func RenderLedger(ledger application.LedgerStatus, opts RenderOptions) (string, error) {
	return run(func(s styles) string {
		return ledgerView(ledger, opts, s)
	})
}

func RenderPool(view application.PoolView, opts RenderOptions) (string, error) {
	return run(func(s styles) string {
		return poolView(view, opts, s)
	})
}

func resultView(result application.Result, s styles) string {
	if result.Empty() {
		return s.empty.Render("No image to display.")
	}

	lines := []string{imageLine(result, s)}
	if result.Caption != "" {
		lines = append(lines, s.caption.Render(result.Caption))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func imageLine(result application.Result, s styles) string {
	line := s.image.Render(fmt.Sprintf("[%d/%d] %s", result.Index+1, result.PoolSize, result.URL))
	switch {
	case result.FromHistory:
		line += " " + s.meta.Render("(history)")
	case result.Fallback:
		line += " " + s.meta.Render("(wrapped)")
	}
	return line
}

func statusView(status application.Status, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Slideshow"),
		s.header.Render(fmt.Sprintf("method: %s  collection: %d  pool: %d", methodLabel(status.Method), status.CollectionSize, status.PoolSize)),
	}

	if status.CollectionSize == 0 {
		lines = append(lines, s.empty.Render("The collection is empty."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	lines = append(lines, s.detail.Render(windowLine(status, opts.Now)))
	lines = append(lines, s.section.Render(resultView(status.Current, s)))
	lines = append(lines, s.section.Render(historyView(status.History, opts, s)))
	lines = append(lines, s.section.Render(ledgerView(status.Ledger, opts, s)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func windowLine(status application.Status, now time.Time) string {
	if !status.Rotating {
		return "pool: fixed"
	}

	window := status.Window
	line := fmt.Sprintf("pool window: %d/%d (images %d-%d of cycle %d)",
		window.ActiveBucket+1, window.TotalBuckets, window.Start, max(window.End-1, window.Start), window.Cycle)
	if !status.NextRotation.IsZero() {
		line += ", " + formatRotation(status.NextRotation, now)
	}
	return line
}

func historyView(history application.HistoryStatus, opts RenderOptions, s styles) string {
	header := s.key.Render(fmt.Sprintf("history: %d entries", len(history.Entries)))
	if len(history.Entries) == 0 {
		return header
	}

	header += " " + s.meta.Render(fmt.Sprintf("(back: %s, forward: %s)", yesNo(history.CanStepBack), yesNo(history.CanStepForward)))
	lines := []string{header}

	start := 0
	if opts.Limit > 0 && len(history.Entries) > opts.Limit {
		start = len(history.Entries) - opts.Limit
	}
	for i := start; i < len(history.Entries); i++ {
		entry := history.Entries[i]
		prefix := "  "
		if i == history.Cursor {
			prefix = s.marker.Render("> ")
		}
		lines = append(lines, prefix+s.detail.Render(fmt.Sprintf("[%d] %s", entry.Index, entry.URL)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func ledgerView(ledger application.LedgerStatus, opts RenderOptions, s styles) string {
	if !ledger.Enabled {
		return s.key.Render("recently shown: tracking disabled")
	}

	header := s.key.Render(fmt.Sprintf("recently shown: %d/%d tracked", len(ledger.Entries), ledger.Capacity)) +
		" " + s.meta.Render(fmt.Sprintf("(cooldown %dm)", ledger.CooldownMinutes))
	if !ledger.Persisted {
		header += " " + s.meta.Render("[memory only]")
	}
	lines := []string{header}

	if len(ledger.Entries) == 0 {
		lines = append(lines, s.empty.Render("Nothing shown yet."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	entries := ledger.Entries
	if opts.Limit > 0 && len(entries) > opts.Limit {
		entries = entries[:opts.Limit]
	}
	for _, entry := range entries {
		lines = append(lines, ledgerLine(entry, opts.Now, s))
	}
	if hidden := len(ledger.Entries) - len(entries); hidden > 0 {
		lines = append(lines, s.empty.Render(fmt.Sprintf("... %d more", hidden)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func ledgerLine(entry application.LedgerEntry, now time.Time, s styles) string {
	percent := clampPercent(entry.Weight * 100)
	weightStyle := lipgloss.NewStyle().Foreground(interpolateColor(percent, 0, 100))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		"  ",
		renderProgressBar(percent, 16, s),
		" ",
		weightStyle.Render(fmt.Sprintf("%3.0f%%", percent)),
		" ",
		s.detail.Render(entry.URL),
		" ",
		s.meta.Render("("+formatAgo(entry.ShownAt, now)+")"),
	)
}

func poolView(view application.PoolView, opts RenderOptions, s styles) string {
	window := view.Window
	lines := []string{
		s.title.Render("Pool"),
		s.header.Render(fmt.Sprintf("at: %s  bucket: %d  window: %d/%d  images: %d of %d",
			view.At.Format(time.RFC3339), window.Bucket, window.ActiveBucket+1, max(window.TotalBuckets, 1), len(view.Images), view.CollectionSize)),
	}

	if len(view.Images) == 0 {
		lines = append(lines, s.empty.Render("The pool is empty."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	images := view.Images
	if opts.Limit > 0 && len(images) > opts.Limit {
		images = images[:opts.Limit]
	}
	for i, image := range images {
		lines = append(lines, s.detail.Render(fmt.Sprintf("%4d  %s", i, image.URL)))
	}
	if hidden := len(view.Images) - len(images); hidden > 0 {
		lines = append(lines, s.empty.Render(fmt.Sprintf("... %d more", hidden)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderProgressBar fills the bar proportionally to percent.
func renderProgressBar(percent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * clampPercent(percent) / 100))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func formatAgo(at, now time.Time) string {
	if at.IsZero() {
		return "unknown"
	}
	if now.IsZero() {
		return "shown " + at.Format(time.RFC3339)
	}

	elapsed := now.Sub(at)
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return plural(int(elapsed.Minutes()), "minute") + " ago"
	case elapsed < 24*time.Hour:
		return plural(int(elapsed.Hours()), "hour") + " ago"
	default:
		return plural(int(elapsed.Hours()/24), "day") + " ago"
	}
}

func formatRotation(at, now time.Time) string {
	if now.IsZero() || !at.After(now) {
		return "rotates at " + at.Format("15:04")
	}

	remaining := at.Sub(now)
	if remaining < time.Hour {
		minutes := max(int(math.Ceil(remaining.Minutes())), 1)
		return fmt.Sprintf("rotates in %s (%s)", plural(minutes, "minute"), at.Format("15:04"))
	}

	hours := int(math.Ceil(remaining.Hours()))
	return fmt.Sprintf("rotates in %s (%s)", plural(hours, "hour"), at.Format("15:04"))
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	// ANSI 256 greyscale ramp, faded at min and bright at max
	baseColor := 240.0
	targetColor := 255.0
	interpolated := baseColor + (targetColor-baseColor)*normalized

	return lipgloss.Color(fmt.Sprintf("%d", int(interpolated)))
}

func methodLabel(method domain.SelectionMethod) string {
	return strings.ReplaceAll(string(method), "_", " ")
}
