package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/msomdec/taskboard/internal/domain"
	"github.com/msomdec/taskboard/internal/store"
)

const (
	shortIDWidth  = 8
	maxTitleWidth = 60
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	idStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(shortIDWidth + 1)
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	doneTitleStyle = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	mutedStyle     = lipgloss.NewStyle().Faint(true)
)

func renderTasks(w io.Writer, tasks []domain.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No tasks."))
		return
	}
	for _, t := range tasks {
		icon, title := pendingStyle.Render("[ ]"), truncate(t.Title, maxTitleWidth)
		if t.Status == domain.TaskStatusCompleted {
			icon, title = completedStyle.Render("[x]"), doneTitleStyle.Render(title)
		}
		fmt.Fprintf(w, "%s %s%s\n", icon, idStyle.Render(shortID(t.ID)), title)
		if t.Description != "" {
			fmt.Fprintf(w, "    %s\n", mutedStyle.Render(truncate(t.Description, maxTitleWidth+shortIDWidth)))
		}
	}
}

func renderStats(w io.Writer, st store.TaskStats) {
	fmt.Fprintf(w, "\n%s %d total, %d pending, %d completed (%d%% done)\n",
		headerStyle.Render("Tasks:"), st.Total, st.Pending, st.Completed, st.CompletionRate)
}

func renderUser(w io.Writer, u domain.User) {
	fmt.Fprintf(w, "%s <%s>\n", headerStyle.Render(u.Name), u.Email)
	fmt.Fprintf(w, "%s %s\n", mutedStyle.Render("id:"), u.ID)
	if u.Avatar != "" {
		fmt.Fprintf(w, "%s %s\n", mutedStyle.Render("avatar:"), u.Avatar)
	}
	if !u.CreatedAt.IsZero() {
		fmt.Fprintf(w, "%s %s\n", mutedStyle.Render("member since:"), u.CreatedAt.Local().Format("2006-01-02"))
	}
}

func shortID(id string) string {
	if len(id) <= shortIDWidth {
		return id
	}
	return id[:shortIDWidth]
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return strings.TrimRight(string(runes), " ") + "…"
}
