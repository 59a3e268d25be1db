package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/danalexilewis/taskgraph/internal/types"
)

// colorEnabled gates lipgloss styling: only a real terminal gets color, and
// NO_COLOR is honored.
var colorEnabled = term.IsTerminal(int(os.Stdout.Fd())) && os.Getenv("NO_COLOR") == ""

var (
	styleTodo     = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	styleDoing    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	styleBlocked  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	styleDone     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	styleCanceled = lipgloss.NewStyle().Faint(true)
	styleDim      = lipgloss.NewStyle().Faint(true)
	styleBold     = lipgloss.NewStyle().Bold(true)
)

func renderStatus(s types.TaskStatus) string {
	if !colorEnabled {
		return string(s)
	}
	switch s {
	case types.StatusTodo:
		return styleTodo.Render(string(s))
	case types.StatusDoing:
		return styleDoing.Render(string(s))
	case types.StatusBlocked:
		return styleBlocked.Render(string(s))
	case types.StatusDone:
		return styleDone.Render(string(s))
	case types.StatusCanceled:
		return styleCanceled.Render(string(s))
	}
	return string(s)
}

func renderPlanStatus(s types.PlanStatus) string {
	if !colorEnabled {
		return string(s)
	}
	switch s {
	case types.PlanActive:
		return styleDoing.Render(string(s))
	case types.PlanDone:
		return styleDone.Render(string(s))
	case types.PlanAbandoned, types.PlanPaused:
		return styleCanceled.Render(string(s))
	}
	return string(s)
}

func dim(s string) string {
	if !colorEnabled {
		return s
	}
	return styleDim.Render(s)
}

func bold(s string) string {
	if !colorEnabled {
		return s
	}
	return styleBold.Render(s)
}

// shortID trims a UUID down to its first group for list output.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func outputJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
