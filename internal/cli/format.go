package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"task-manager/internal/domain"
	"task-manager/internal/engine"
)

// shortIDLength is how many characters of a task ID the tables show
const shortIDLength = 8

func shortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}
	return id[:shortIDLength]
}

func statusMark(s domain.Status) string {
	switch s {
	case domain.StatusCompleted:
		return "[x]"
	case domain.StatusInProgress:
		return "[~]"
	}
	return "[ ]"
}

// formatDue renders the due date in the configured layout with a relative hint
func (a *App) formatDue(task domain.Task) string {
	if task.DueDate == nil {
		return "-"
	}
	date := task.DueDate.In(time.UTC).Format(a.config.Display.DateFormat)
	return fmt.Sprintf("%s (%s)", date, a.api.DescribeDue(task))
}

// formatTimestamp renders t in the configured layout followed by a humanized age
func (a *App) formatTimestamp(t time.Time) string {
	return fmt.Sprintf("%s (%s)", t.Local().Format(a.config.Display.TimeFormat), humanize.RelTime(t, timeNow(), "ago", "from now"))
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// printTasks writes one row per task
func (a *App) printTasks(tasks []domain.Task) error {
	w := newTable(a.out)
	_, _ = fmt.Fprintln(w, "ID\tSTATUS\tPRIORITY\tDUE\tTITLE")
	for _, task := range tasks {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			shortID(task.ID), statusMark(task.Status), task.Priority, a.formatDue(task), task.Title)
	}
	return w.Flush()
}

// printTask writes every field of one task
func (a *App) printTask(task domain.Task) error {
	w := newTable(a.out)
	_, _ = fmt.Fprintf(w, "ID:\t%s\n", task.ID)
	_, _ = fmt.Fprintf(w, "Title:\t%s\n", task.Title)
	if task.Description != "" {
		_, _ = fmt.Fprintf(w, "Description:\t%s\n", task.Description)
	}
	_, _ = fmt.Fprintf(w, "Status:\t%s\n", task.Status)
	_, _ = fmt.Fprintf(w, "Priority:\t%s\n", task.Priority)
	_, _ = fmt.Fprintf(w, "Due:\t%s\n", a.formatDue(task))
	_, _ = fmt.Fprintf(w, "Created:\t%s\n", a.formatTimestamp(task.CreatedAt))
	_, _ = fmt.Fprintf(w, "Updated:\t%s\n", a.formatTimestamp(task.UpdatedAt))
	return w.Flush()
}

// printStats writes the counters of a stats block
func (a *App) printStats(stats engine.Stats) error {
	w := newTable(a.out)
	_, _ = fmt.Fprintf(w, "Total:\t%d\n", stats.Total)
	_, _ = fmt.Fprintf(w, "Completed:\t%d (%d%%)\n", stats.Completed, stats.CompletionRate)
	_, _ = fmt.Fprintf(w, "In progress:\t%d\n", stats.InProgress)
	_, _ = fmt.Fprintf(w, "To do:\t%d\n", stats.Todo)
	_, _ = fmt.Fprintf(w, "Overdue:\t%d\n", stats.Overdue)
	return w.Flush()
}

// progressBar draws rate (0-100) as a fixed-width bar
func progressBar(rate, width int) string {
	filled := rate * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}
