// package formatter renders run reports, playlists, and run history for the
// CLI, with JSON and CSV variants for scripting.
package formatter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"syncra/internal/models"
	"syncra/internal/shared"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// Summary renders a completed run report as a styled multi-line summary.
func Summary(report *models.SyncReport) string {
	var b strings.Builder

	b.WriteString(styles.title.Render(fmt.Sprintf("%s: %s", strings.ToUpper(report.Mode), report.PlaylistName)))
	b.WriteString("\n")

	if report.Source != "" {
		b.WriteString(fmt.Sprintf("Source: %s\n", report.Source))
	}
	if report.PlaylistID != "" {
		b.WriteString(fmt.Sprintf("Playlist: %s (ID %s)\n", report.PlaylistName, report.PlaylistID))
	}

	if report.TotalRefs > 0 {
		line := fmt.Sprintf("Resolved %d of %d tracks", report.ResolvedCount, report.TotalRefs)
		if report.UnresolvedCount == 0 {
			b.WriteString(styles.ok.Render(line))
		} else {
			b.WriteString(styles.warn.Render(fmt.Sprintf("%s (%d unresolved)", line, report.UnresolvedCount)))
		}
		b.WriteString("\n")
	}

	if report.PlannedEdits > 0 || len(report.FailedEdits) > 0 {
		line := fmt.Sprintf("Applied %d of %d edits", report.AppliedEdits, report.PlannedEdits)
		if len(report.FailedEdits) == 0 {
			b.WriteString(styles.ok.Render(line))
		} else {
			b.WriteString(styles.err.Render(fmt.Sprintf("%s (%d failed)", line, len(report.FailedEdits))))
		}
		b.WriteString("\n")
	}

	if !report.FinishedAt.IsZero() && !report.StartedAt.IsZero() {
		elapsed := report.FinishedAt.Sub(report.StartedAt).Round(10 * time.Millisecond)
		b.WriteString(styles.help.Render(fmt.Sprintf("Run %s finished in %s", report.RunID, elapsed)))
		b.WriteString("\n")
	}

	return b.String()
}

// UnresolvedList renders the report's unresolved refs, one line each with the
// failure reason.
func UnresolvedList(report *models.SyncReport) string {
	if len(report.Unresolved) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.warn.Render("Unresolved tracks:"))
	b.WriteString("\n")
	for i, r := range report.Unresolved {
		b.WriteString(fmt.Sprintf("  %d. %s - %s", i+1, r.Ref.Artist, r.Ref.Title))
		b.WriteString(styles.help.Render(fmt.Sprintf(" [%s]", r.Reason)))
		b.WriteString("\n")
	}
	return b.String()
}

// FailedEditList renders the report's rejected edits.
func FailedEditList(report *models.SyncReport) string {
	if len(report.FailedEdits) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.err.Render("Failed edits:"))
	b.WriteString("\n")
	for i, f := range report.FailedEdits {
		b.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, f.Op.String(), f.Error))
	}
	return b.String()
}

// PlaylistLine renders one playlist for a listing.
func PlaylistLine(pl models.Playlist) string {
	return fmt.Sprintf("%s %s", styles.help.Render(fmt.Sprintf("[%s]", pl.ID)), pl.Name)
}

// RunLine renders one run record for a history listing.
func RunLine(run *models.RunRecord) string {
	report := run.Report()
	status := styles.ok.Render("ok")
	if len(report.FailedEdits) > 0 || report.UnresolvedCount > 0 {
		status = styles.warn.Render(fmt.Sprintf("%d unresolved, %d failed", report.UnresolvedCount, len(report.FailedEdits)))
	}
	return fmt.Sprintf("#%d %s %s %q %s %s",
		run.Sequence(),
		run.CreatedAt().Format("2006-01-02 15:04"),
		report.Mode,
		report.PlaylistName,
		styles.help.Render(report.RunID),
		status,
	)
}

// ReportJSON renders a report as pretty JSON for scripting.
func ReportJSON(report *models.SyncReport) ([]byte, error) {
	return shared.MarshalJSON(report, true)
}

// WriteUnresolvedCSV writes the unresolved refs as CSV with columns:
// Artist, Title, Album, Duration, Reason
func WriteUnresolvedCSV(w io.Writer, unresolved []models.ResolvedTrack) error {
	writer := csv.NewWriter(w)

	headers := []string{"Artist", "Title", "Album", "Duration", "Reason"}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range unresolved {
		duration := ""
		if r.Ref.DurationSec > 0 {
			duration = shared.FormatDuration(r.Ref.DurationSec)
		}
		record := []string{
			r.Ref.Artist,
			r.Ref.Title,
			r.Ref.Album,
			duration,
			string(r.Reason),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}

	return nil
}
