package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/skillpulse/internal/core"
	"github.com/valter-silva-au/skillpulse/pkg/models"
)

// Dashboard input modes.
const (
	modeBrowse = iota
	modeFilter
)

type dashboardModel struct {
	list    *core.TaskList
	updates <-chan core.TaskListState
	cancel  func()

	state  core.TaskListState
	cursor int
	mode   int
	input  textinput.Model
	width  int
	height int
}

// stateMsg carries a new TaskList snapshot into the model.
type stateMsg core.TaskListState

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	dialogStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("141")).Bold(true)

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newDashboardModel(list *core.TaskList) dashboardModel {
	updates, cancel := list.Subscribe()
	ti := textinput.New()
	ti.Placeholder = "2026-01-06"
	ti.CharLimit = 32
	return dashboardModel{
		list:    list,
		updates: updates,
		cancel:  cancel,
		state:   list.State(),
		input:   ti,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	m.list.OnAction(core.RefreshTasks{})
	return waitForState(m.updates)
}

// waitForState delivers the next snapshot published by the task list.
func waitForState(ch <-chan core.TaskListState) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return stateMsg(s)
	}
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.mode == modeFilter {
			return m.updateFilter(msg)
		}
		return m.updateBrowse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case stateMsg:
		m.setState(core.TaskListState(msg))
		return m, waitForState(m.updates)
	}

	return m, nil
}

func (m dashboardModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.state.ShowDeleteDialog {
		switch key {
		case "y":
			m.list.OnAction(core.ConfirmDelete{})
		case "n", "esc":
			m.list.OnAction(core.RequestDelete{})
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit
		}
		m.setState(m.list.State())
		return m, nil
	}

	switch key {
	case "q", "ctrl+c":
		m.cancel()
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.state.Tasks)-1 {
			m.cursor++
		}
	case "r":
		m.list.OnAction(core.RefreshTasks{})
	case "n":
		m.list.OnAction(core.LoadMoreTasks{})
	case "/":
		m.mode = modeFilter
		m.input.SetValue("")
		return m, m.input.Focus()
	case "c":
		m.list.OnAction(core.ClearFilter{})
	case "d":
		if len(m.state.Tasks) > 0 {
			task := m.state.Tasks[m.cursor]
			m.list.OnAction(core.RequestDelete{Task: &task})
		}
	case "esc":
		m.list.OnAction(core.DismissAlert{})
	}
	m.setState(m.list.State())
	return m, nil
}

func (m dashboardModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.list.OnAction(core.FilterByDate{Date: strings.TrimSpace(m.input.Value())})
		m.mode = modeBrowse
		m.input.Blur()
		m.setState(m.list.State())
		return m, nil
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// setState replaces the snapshot and keeps the cursor on a visible row.
func (m *dashboardModel) setState(s core.TaskListState) {
	m.state = s
	if m.cursor >= len(s.Tasks) {
		m.cursor = len(s.Tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m dashboardModel) View() string {
	var b strings.Builder

	title := " SkillPulse "
	if m.state.User != "" {
		title = fmt.Sprintf(" SkillPulse - %s ", m.state.User)
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	if line := m.renderAlert(); line != "" {
		b.WriteString(line)
		b.WriteString("\n\n")
	}

	if m.state.Loading {
		b.WriteString("  Loading tasks...\n\n")
	} else {
		width := m.width - 4
		if width < 72 {
			width = 72
		}
		b.WriteString(panelStyle.Width(width).Render(m.renderHoursPanel()))
		b.WriteString("\n")
		b.WriteString(panelStyle.Width(width).Render(m.renderTasksPanel()))
		b.WriteString("\n")
	}

	switch {
	case m.state.ShowDeleteDialog && m.state.ItemToDelete != nil:
		b.WriteString(dialogStyle.Render(fmt.Sprintf("Delete %q? (y/n)", m.state.ItemToDelete.Description)))
	case m.mode == modeFilter:
		b.WriteString("Filter by date: ")
		b.WriteString(m.input.View())
	default:
		b.WriteString(helpStyle.Render("↑/↓: move | r: refresh | n: load more | /: filter | c: clear filter | d: delete | q: quit"))
	}
	return b.String()
}

func (m dashboardModel) renderAlert() string {
	a := m.state.Alert
	if a == nil {
		return ""
	}
	text := localizer().Alert(a)
	if a.Error != nil {
		return errorStyle.Render(text)
	}
	return successStyle.Render(text)
}

func (m dashboardModel) renderHoursPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Hours per day"))
	b.WriteString("\n")

	days := hoursPerDay(m.state.Tasks)
	if len(days) == 0 {
		b.WriteString("  No tasks")
		return b.String()
	}
	for _, d := range days {
		fmt.Fprintf(&b, "  %-12s %s\n", d.day, formatDuration(d.total))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m dashboardModel) renderTasksPanel() string {
	var b strings.Builder
	header := "Tasks"
	if m.state.FilterDate != "" {
		header = fmt.Sprintf("Tasks on %s", m.state.FilterDate)
	}
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")

	if len(m.state.Tasks) == 0 {
		b.WriteString("  No tasks")
		return b.String()
	}

	for i, t := range m.state.Tasks {
		length := "-"
		if _, d, ok := taskSpan(t); ok {
			length = formatDuration(d)
		}
		row := fmt.Sprintf("%-25s %-6s %s", t.StartTime, length, t.Description)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("> " + row))
		} else {
			b.WriteString("  " + row)
		}
		b.WriteString("\n")
	}

	switch {
	case m.state.LoadingMore:
		b.WriteString("  Loading more...")
	case m.state.CanLoadMore:
		b.WriteString(helpStyle.Render("  More tasks available (n)"))
	}
	return strings.TrimRight(b.String(), "\n")
}

type dayTotal struct {
	day   string
	total time.Duration
}

// hoursPerDay sums task durations by the calendar day of their start time
// in its own offset, newest day first. Tasks with unreadable times are
// skipped.
func hoursPerDay(tasks []models.Task) []dayTotal {
	totals := make(map[string]time.Duration)
	for _, t := range tasks {
		start, d, ok := taskSpan(t)
		if !ok || d < 0 {
			continue
		}
		totals[start.Format("2006-01-02")] += d
	}

	out := make([]dayTotal, 0, len(totals))
	for day, total := range totals {
		out = append(out, dayTotal{day: day, total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].day > out[j].day })
	return out
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI over your tasks",
	Long: `Launch an interactive terminal view of your tasks with hours per day.

Keys: r refresh, n load more, / filter by date, c clear the filter,
d delete the selected task (confirm with y or n), q quit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireTaskServices(); err != nil {
			return err
		}
		list := core.NewTaskList(DB, Auth, Logger, PageLimit)
		defer list.Close()

		p := tea.NewProgram(newDashboardModel(list), tea.WithAltScreen())
		_, err := p.Run()
		list.Wait()
		return err
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
