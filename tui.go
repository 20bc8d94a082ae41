package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
	"github.com/tomaslejdung/pigate/pkg/api"
	"github.com/tomaslejdung/pigate/pkg/credential"
	"github.com/tomaslejdung/pigate/pkg/gate"
	"github.com/tomaslejdung/pigate/pkg/log"
	sig "github.com/tomaslejdung/pigate/pkg/signal"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("7"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	sharingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("10"))

	urlStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("13"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	keyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14")) // Cyan for keys

	keySepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	// The code is what students read off the projector, so it gets the big box.
	codeBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("11")).
			Padding(1, 4)

	codeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("11"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)

	boxTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))
)

// Messages
type tickMsg time.Time

// serverStoppedMsg reports that the HTTP server exited on its own.
type serverStoppedMsg struct {
	err error
}

type model struct {
	srv *api.Server

	code     string
	snapshot sig.Snapshot
	lockouts []gate.Lockout
	banner   []string
	now      time.Time

	status    string
	lastError string
	width     int
}

func newModel(srv *api.Server) model {
	m := model{
		srv:    srv,
		banner: srv.Banner(),
	}
	m.refresh(time.Now())
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		tea.SetWindowTitle("pigate"),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refresh pulls the current state from the server components.
func (m *model) refresh(now time.Time) {
	m.now = now
	m.code = m.srv.Credentials().Current()
	m.snapshot = m.srv.Router().Snapshot()
	m.lockouts = m.srv.Gate().Store().Lockouts()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tickMsg:
		m.refresh(time.Time(msg))
		return m, tickCmd()

	case serverStoppedMsg:
		if msg.err != nil {
			m.lastError = msg.err.Error()
		} else {
			m.lastError = "server stopped"
		}
		return m, nil
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "r":
		m.srv.Credentials().Rotate(credential.Generate())
		m.refresh(time.Now())
		m.status = "Access code rotated"

	case "u":
		store := m.srv.Gate().Store()
		cleared := len(m.lockouts)
		for _, l := range m.lockouts {
			store.Reset(l.Identity)
			logrus.WithField("ip", l.Identity).Info("Lockout cleared by operator")
		}
		m.refresh(time.Now())
		m.status = fmt.Sprintf("Cleared %d lockout(s)", cleared)
	}

	return m, nil
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("pigate"))
	b.WriteString(dimStyle.Render(" - projector access gate"))
	b.WriteString("\n\n")

	b.WriteString(codeBoxStyle.Render(dimStyle.Render("ACCESS CODE") + "\n\n" + codeStyle.Render(m.code)))
	b.WriteString("\n\n")

	b.WriteString(m.renderSessionStatus())
	b.WriteString("\n\n")

	if len(m.banner) > 2 {
		b.WriteString(normalStyle.Render("Client: "))
		b.WriteString(urlStyle.Render(strings.TrimPrefix(m.banner[1], "Client URL: ")))
		b.WriteString("\n")
		b.WriteString(normalStyle.Render("Host:   "))
		b.WriteString(urlStyle.Render(strings.TrimPrefix(m.banner[2], "Host/Receiver URL: ")))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderLockouts())
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}

	if m.lastError != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + m.lastError))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())

	return b.String()
}

func (m model) renderSessionStatus() string {
	var b strings.Builder

	if m.snapshot.Sharing() {
		b.WriteString(sharingStyle.Render("[SHARING]"))
	} else {
		b.WriteString(dimStyle.Render("[IDLE]"))
	}

	b.WriteString(" ")
	if m.snapshot.ReceiverID != "" {
		b.WriteString(statusStyle.Render("receiver connected"))
	} else {
		b.WriteString(errorStyle.Render("no receiver"))
	}

	b.WriteString(dimStyle.Render(fmt.Sprintf("  room %s, %d member(s)", m.snapshot.Room, m.snapshot.Members)))
	return b.String()
}

func (m model) renderLockouts() string {
	var b strings.Builder
	b.WriteString(boxTitleStyle.Render(fmt.Sprintf("Locked out (%d)", len(m.lockouts))))
	b.WriteString("\n")

	if len(m.lockouts) == 0 {
		b.WriteString(dimStyle.Render("nobody"))
		return boxStyle.Render(b.String())
	}

	for i, l := range m.lockouts {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(normalStyle.Render(fmt.Sprintf("%-39s", l.Identity)))
		b.WriteString(dimStyle.Render(" " + formatDuration(l.Until.Sub(m.now)) + " left"))
	}
	return boxStyle.Render(b.String())
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	mins := int(d.Minutes()) % 60
	secs := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm", h, mins)
	}
	return fmt.Sprintf("%dm%02ds", mins, secs)
}

func (m model) renderHelp() string {
	sep := keySepStyle.Render("  ")

	var actions []string
	actions = append(actions, keyStyle.Render("r")+helpStyle.Render(" rotate code"))
	if len(m.lockouts) > 0 {
		actions = append(actions, keyStyle.Render("u")+helpStyle.Render(" clear lockouts"))
	}
	actions = append(actions, keyStyle.Render("q")+helpStyle.Render(" quit"))

	return strings.Join(actions, sep)
}

// RunTUI serves srv in the background and runs the dashboard until the user
// quits or ctx is cancelled.
func RunTUI(ctx context.Context, srv *api.Server) error {
	// Write logs to file instead of corrupting TUI display
	logFile, err := os.Create("pigate.log")
	if err != nil {
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(logFile)
		logrus.Infof("=== pigate started at %s ===", time.Now().Format(time.RFC3339))
		defer logFile.Close()
	}
	defer log.SetOutput(os.Stderr)

	serverCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newModel(srv), tea.WithAltScreen())

	done := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe(serverCtx)
		done <- err
		if serverCtx.Err() == nil {
			p.Send(serverStoppedMsg{err: err})
		}
	}()

	go func() {
		<-serverCtx.Done()
		p.Quit()
	}()

	_, runErr := p.Run()
	cancel()

	if err := <-done; err != nil {
		logrus.WithError(err).Error("Server error")
	}
	return runErr
}
