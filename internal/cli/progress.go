package cli

import (
	"fmt"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
)

// Theme holds the color scheme for the progress display.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// geocodeUpdateMsg carries one completed resolution step.
type geocodeUpdateMsg struct {
	done     int
	total    int
	location string
}

// geocodeDoneMsg signals the end of the geocoding pass.
type geocodeDoneMsg struct{}

// geocodeModel is the bubbletea model for the geocoding pass. Updates
// arrive over a channel fed by the pipeline goroutine; the rate limit on
// the remote service makes each step take about a second, so live feedback
// matters.
type geocodeModel struct {
	updates  <-chan geocodeUpdateMsg
	finished <-chan struct{}
	cancel   func()

	progress   progress.Model
	theme      Theme
	done       int
	total      int
	location   string
	finishedOK bool
	quitting   bool
}

func newGeocodeModel(updates <-chan geocodeUpdateMsg, finished <-chan struct{}, cancel func()) geocodeModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)
	return geocodeModel{
		updates:  updates,
		finished: finished,
		cancel:   cancel,
		progress: prog,
		theme:    defaultTheme,
	}
}

func (m geocodeModel) Init() tea.Cmd {
	return tea.Batch(
		m.waitForUpdate(),
		m.progress.Init(),
	)
}

// waitForUpdate blocks on the channels in a command goroutine so Update
// itself never blocks.
func (m geocodeModel) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		select {
		case u := <-m.updates:
			return u
		case <-m.finished:
			return geocodeDoneMsg{}
		}
	}
}

func (m geocodeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			m.cancel()
			return m, tea.Quit
		}

	case geocodeUpdateMsg:
		m.done = msg.done
		m.total = msg.total
		m.location = msg.location
		return m, m.waitForUpdate()

	case geocodeDoneMsg:
		m.finishedOK = true
		return m, tea.Quit

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m geocodeModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m geocodeModel) renderContent() string {
	if m.finishedOK {
		return m.theme.completedStyle().Render(
			fmt.Sprintf("✓ Geocoding done: %d/%d events processed\n", m.done, m.total))
	}
	if m.quitting {
		return m.theme.hintStyle().Render("\nGeocoding interrupted, partial results kept.\n")
	}

	var pct float64
	if m.total > 0 {
		pct = float64(m.done) / float64(m.total)
	}

	status := m.theme.statusStyle().Render("[geocoding]")
	bar := m.progress.ViewAs(pct)
	counts := fmt.Sprintf("%d/%d", m.done, m.total)
	loc := m.theme.hintStyle().Render(truncateLocation(m.location, 50))

	return fmt.Sprintf("%s %s %s\n%s\n", status, bar, counts, loc)
}

func truncateLocation(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

// runGeocodeProgress drives the interactive progress UI until the feeding
// goroutine reports completion, or the user cancels.
func runGeocodeProgress(updates <-chan geocodeUpdateMsg, finished <-chan struct{}, cancel func()) error {
	p := tea.NewProgram(newGeocodeModel(updates, finished, cancel))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("progress UI error: %w", err)
	}
	return nil
}
