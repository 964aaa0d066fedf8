package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/balkashynov/studytrack/internal/models"
	"github.com/balkashynov/studytrack/internal/parser"
	"github.com/balkashynov/studytrack/internal/tracking"
)

type timerKeyMap struct {
	Pause  key.Binding
	Resume key.Binding
	Finish key.Binding
	Exit   key.Binding
	Quit   key.Binding
}

func (k timerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Resume, k.Finish, k.Exit, k.Quit}
}

func (k timerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var timerKeys = timerKeyMap{
	Pause:  key.NewBinding(key.WithKeys("p", "P"), key.WithHelp("p", "pause")),
	Resume: key.NewBinding(key.WithKeys("r", "R"), key.WithHelp("r", "resume")),
	Finish: key.NewBinding(key.WithKeys("f", "F"), key.WithHelp("f", "finish & save")),
	Exit:   key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc/q", "exit (keep running)")),
	Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "force quit")),
}

// TimerModel is the live study session timer
type TimerModel struct {
	ctx context.Context
	svc *tracking.Service
	now func() time.Time

	width  int
	height int

	detail  tracking.SessionDetail
	elapsed time.Duration

	keys timerKeyMap
	help help.Model

	// Animation state
	timerAnimation int

	busy     bool  // a transition is in flight
	lastErr  error // last rejected transition, shown under the clock
	finished bool  // session was finished and saved
	timedOut bool  // resume hit the pause limit and the session was interrupted
	exiting  bool  // user left the TUI with the session still running
}

// timerTickMsg is sent every second to update the timer
type timerTickMsg struct{}

// animationTickMsg is sent for faster animations
type animationTickMsg struct{}

// transitionMsg carries the result of a pause, resume or finish
type transitionMsg struct {
	detail *tracking.SessionDetail
	err    error
	finish bool
}

// NewTimerModel creates a timer for an existing live session
func NewTimerModel(ctx context.Context, svc *tracking.Service, detail tracking.SessionDetail, now func() time.Time) TimerModel {
	if now == nil {
		now = time.Now
	}
	m := TimerModel{
		ctx:    ctx,
		svc:    svc,
		now:    now,
		detail: detail,
		keys:   timerKeys,
		help:   help.New(),
	}
	m.elapsed = tracking.EffectiveElapsed(detail.Session, detail.Pauses, now())
	return m
}

// Session returns the session as last seen by the timer
func (m TimerModel) Session() models.Session {
	return m.detail.Session
}

func (m TimerModel) paused() bool {
	return m.detail.Session.Status == models.StatusPaused
}

func tickTimer() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg{}
	})
}

func tickAnimation() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return animationTickMsg{}
	})
}

// Init starts both timer and animation tickers
func (m TimerModel) Init() tea.Cmd {
	return tea.Batch(tickTimer(), tickAnimation())
}

// transition runs op against the service and reloads the session
func (m TimerModel) transition(op func(ctx context.Context, id uint) (*models.Session, error), finish bool) tea.Cmd {
	ctx, svc, id := m.ctx, m.svc, m.detail.Session.ID
	return func() tea.Msg {
		_, err := op(ctx, id)
		if err != nil && !errors.Is(err, tracking.ErrPauseTimeout) {
			return transitionMsg{err: err}
		}
		detail, loadErr := svc.SessionDetail(ctx, id)
		if loadErr != nil {
			return transitionMsg{err: loadErr}
		}
		return transitionMsg{detail: detail, err: err, finish: finish}
	}
}

func (m TimerModel) done() bool {
	return m.finished || m.timedOut || m.exiting
}

// Update handles messages
func (m TimerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case timerTickMsg:
		m.elapsed = tracking.EffectiveElapsed(m.detail.Session, m.detail.Pauses, m.now())
		if m.done() {
			return m, nil
		}
		return m, tickTimer()

	case animationTickMsg:
		if !m.paused() {
			m.timerAnimation = (m.timerAnimation + 1) % 4
		}
		if m.done() {
			return m, nil
		}
		return m, tickAnimation()

	case transitionMsg:
		m.busy = false
		if msg.detail != nil {
			m.detail = *msg.detail
			m.elapsed = tracking.EffectiveElapsed(m.detail.Session, m.detail.Pauses, m.now())
		}
		m.lastErr = msg.err
		switch {
		case errors.Is(msg.err, tracking.ErrPauseTimeout):
			m.timedOut = true
			return m, tea.Quit
		case msg.err == nil && msg.finish:
			m.finished = true
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Exit):
			m.exiting = true
			return m, tea.Quit
		}

		if m.busy {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keys.Pause):
			m.busy = true
			return m, m.transition(m.svc.PauseSession, false)
		case key.Matches(msg, m.keys.Resume):
			m.busy = true
			return m, m.transition(m.svc.ResumeSession, false)
		case key.Matches(msg, m.keys.Finish):
			m.busy = true
			return m, m.transition(m.svc.FinishSession, true)
		}
	}

	return m, nil
}

// View renders the timer TUI
func (m TimerModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	helpBar := lipgloss.NewStyle().Width(m.width).Align(lipgloss.Center).Render(m.help.View(m.keys))
	contentHeight := m.height - lipgloss.Height(helpBar) - 1

	// Narrow view: just the timer panel
	if m.width < 90 {
		return lipgloss.JoinVertical(lipgloss.Left, m.renderTimerPanel(m.width, contentHeight), helpBar)
	}

	leftWidth := m.width / 2
	rightWidth := m.width - leftWidth - 2

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderTimerPanel(leftWidth, contentHeight),
		"  ",
		m.renderDetailsPanel(rightWidth, contentHeight),
	)
	return lipgloss.JoinVertical(lipgloss.Left, content, helpBar)
}

// renderTimerPanel renders the clock side
func (m TimerModel) renderTimerPanel(width, height int) string {
	var components []string
	centered := lipgloss.NewStyle().Align(lipgloss.Center).Width(width)

	headerText := "⏸  PAUSED  ⏸"
	headerColor := ColorWarning
	if !m.paused() {
		animChars := []string{"⏱", "⏲", "⏱", "⏲"}
		animChar := animChars[m.timerAnimation]
		headerText = fmt.Sprintf("%s  STUDYING  %s", animChar, animChar)
		headerColor = ColorAccentBright
	}
	components = append(components, centered.Foreground(lipgloss.Color(headerColor)).Bold(true).Render(headerText))

	subject := centered.Foreground(lipgloss.Color(ColorPrimaryText)).Bold(true).
		Render(tracking.SubjectLabel(m.detail.Session.SubjectID))
	components = append(components, subject)

	clockColor := ColorAccentBright
	if m.paused() {
		clockColor = ColorWarning
	}
	var clock []string
	for _, line := range strings.Split(renderBigClock(m.elapsed, clockColor), "\n") {
		clock = append(clock, centered.Render(line))
	}
	components = append(components, strings.Join(clock, "\n"))

	started := fmt.Sprintf("Started at %s (%s)", m.detail.Session.StartedAt.Format("15:04:05"), humanize.Time(m.detail.Session.StartedAt))
	components = append(components, centered.Foreground(lipgloss.Color(ColorSecondaryText)).Italic(true).Render(started))

	if m.lastErr != nil {
		components = append(components, centered.Foreground(lipgloss.Color(ColorError)).Render("✗ "+m.lastErr.Error()))
	}

	content := strings.Join(components, "\n\n")
	return lipgloss.NewStyle().Width(width).Height(height).Align(lipgloss.Center, lipgloss.Center).Render(content)
}

// renderDetailsPanel renders the session summary side
func (m TimerModel) renderDetailsPanel(width, height int) string {
	sess := m.detail.Session
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorAccentMain)).
		Width(width-12).
		Padding(0, 1)
	b.WriteString(titleStyle.Render(fmt.Sprintf("Session #%d", sess.ID)))
	b.WriteString("\n\n")

	separator := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBorder)).Align(lipgloss.Center).Width(width - 8)
	b.WriteString(separator.Render(strings.Repeat("─", min(width-12, 40))))
	b.WriteString("\n\n")

	line := lipgloss.NewStyle().Align(lipgloss.Center).Width(width - 8)
	value := func(color, text string) string {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true).Render(text)
	}

	statusColor := ColorSuccess
	if m.paused() {
		statusColor = ColorWarning
	}
	rows := []string{
		"● Status: " + value(statusColor, string(sess.Status)),
		"📚 Subject: " + value(ColorAccentBright, tracking.SubjectLabel(sess.SubjectID)),
		"⏸  Pauses: " + value(ColorSecondaryText, fmt.Sprintf("%d (%s)", len(m.detail.Pauses), parser.FormatMinutes(m.detail.PauseMinutes))),
		"🕐 Wall clock: " + value(ColorSecondaryText, parser.FormatElapsed(m.now().Sub(sess.StartedAt))),
	}
	for _, row := range rows {
		b.WriteString(line.Render(row))
		b.WriteString("\n")
	}

	return lipgloss.NewStyle().Width(width).Height(height).Align(lipgloss.Left, lipgloss.Center).Render(b.String())
}

// 5-row block digits for the big clock
var bigDigits = map[rune][5]string{
	'0': {" ███ ", "█   █", "█   █", "█   █", " ███ "},
	'1': {"  █  ", " ██  ", "  █  ", "  █  ", "█████"},
	'2': {" ███ ", "█   █", "   █ ", "  █  ", "█████"},
	'3': {" ███ ", "█   █", "  ██ ", "█   █", " ███ "},
	'4': {"█   █", "█   █", "█████", "    █", "    █"},
	'5': {"█████", "█    ", "████ ", "    █", "████ "},
	'6': {" ███ ", "█    ", "████ ", "█   █", " ███ "},
	'7': {"█████", "    █", "   █ ", "  █  ", " █   "},
	'8': {" ███ ", "█   █", " ███ ", "█   █", " ███ "},
	'9': {" ███ ", "█   █", " ████", "    █", " ███ "},
	':': {"     ", "  █  ", "     ", "  █  ", "     "},
}

// clockText formats d as MM:SS, or HH:MM:SS from the first hour on
func clockText(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// renderBigClock renders d in block digits
func renderBigClock(d time.Duration, color string) string {
	var lines [5]strings.Builder
	for _, char := range clockText(d) {
		art, ok := bigDigits[char]
		if !ok {
			continue
		}
		for i := range lines {
			lines[i].WriteString(art[i])
			lines[i].WriteString(" ")
		}
	}

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
	rendered := make([]string, len(lines))
	for i := range lines {
		rendered[i] = style.Render(lines[i].String())
	}
	return strings.Join(rendered, "\n")
}
