package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DiscoverFunc runs one discovery window, calling onFound for each new zone.
type DiscoverFunc func(ctx context.Context, onFound func(udn, ip string)) (map[string]string, error)

// Messages driving ScanModel
type (
	// ZoneFoundMsg reports a zone heard during the window
	ZoneFoundMsg struct {
		UDN string
		IP  string
	}

	// ScanDoneMsg ends the scan
	ScanDoneMsg struct {
		Results map[string]string
		Err     error
	}

	scanTickMsg time.Time
)

const scanTickInterval = 250 * time.Millisecond

// ScanModel shows a spinner, a progress bar over the discovery window and the
// zones heard so far. It quits when it receives ScanDoneMsg.
type ScanModel struct {
	Window  time.Duration
	Started time.Time
	Found   []ZoneRow
	Done    bool
	Err     error

	spinner spinner.Model
	bar     progress.Model
	cancel  context.CancelFunc
	now     func() time.Time
}

// NewScanModel creates a model for a window starting now. cancel, if not nil,
// is called when the user presses ctrl+c or q.
func NewScanModel(window time.Duration, cancel context.CancelFunc) ScanModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 40

	return ScanModel{
		Window:  window,
		Started: time.Now(),
		spinner: s,
		bar:     bar,
		cancel:  cancel,
		now:     time.Now,
	}
}

func scanTick() tea.Cmd {
	return tea.Tick(scanTickInterval, func(t time.Time) tea.Msg { return scanTickMsg(t) })
}

// Init implements tea.Model
func (m ScanModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, scanTick())
}

// Update implements tea.Model
func (m ScanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			// The scan goroutine reports the cancellation through ScanDoneMsg.
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil

	case ZoneFoundMsg:
		m.Found = append(m.Found, ZoneRow{UDN: msg.UDN, IP: msg.IP})
		return m, nil

	case ScanDoneMsg:
		m.Done = true
		m.Err = msg.Err
		return m, tea.Quit

	case scanTickMsg:
		if m.Done {
			return m, nil
		}
		return m, scanTick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// Percent returns the elapsed share of the window, in [0, 1]
func (m ScanModel) Percent() float64 {
	if m.Done || m.Window <= 0 {
		return 1
	}
	p := float64(m.now().Sub(m.Started)) / float64(m.Window)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// View implements tea.Model
func (m ScanModel) View() string {
	var b strings.Builder

	if m.Done {
		b.WriteString(TitleStyle.Render("  Listening for Leviosa zones... done"))
	} else {
		b.WriteString(TitleStyle.Render(fmt.Sprintf("  %s Listening for Leviosa zones", m.spinner.View())))
	}
	b.WriteString("\n\n  ")
	b.WriteString(m.bar.ViewAs(m.Percent()))
	b.WriteString("\n")

	remaining := m.Window - m.now().Sub(m.Started)
	if remaining < 0 || m.Done {
		remaining = 0
	}
	b.WriteString(SubtitleStyle.Render(fmt.Sprintf("  %d heard · %s left · q to stop",
		len(m.Found), remaining.Round(time.Second))))
	b.WriteString("\n")

	for _, z := range m.Found {
		b.WriteString("\n  ")
		b.WriteString(FoundStyle.Render(FoundMarker + " " + z.IP))
		b.WriteString(" ")
		b.WriteString(lipgloss.NewStyle().Foreground(MutedColor).Render(z.UDN))
	}
	b.WriteString("\n")
	return b.String()
}

// RunScan runs discover with live progress on out. When out is not a
// terminal, progress is printed as plain lines instead.
func RunScan(ctx context.Context, out io.Writer, window time.Duration, discover DiscoverFunc) (map[string]string, error) {
	if f, ok := out.(*os.File); !ok || !IsTerminal(f) {
		return runPlainScan(ctx, out, window, discover)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewScanModel(window, cancel), tea.WithOutput(out))

	type outcome struct {
		results map[string]string
		err     error
	}
	done := make(chan outcome, 1)

	go func() {
		results, err := discover(ctx, func(udn, ip string) {
			p.Send(ZoneFoundMsg{UDN: udn, IP: ip})
		})
		done <- outcome{results, err}
		p.Send(ScanDoneMsg{Results: results, Err: err})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-done
		return nil, fmt.Errorf("scan display failed: %w", err)
	}

	res := <-done
	return res.results, res.err
}

func runPlainScan(ctx context.Context, out io.Writer, window time.Duration, discover DiscoverFunc) (map[string]string, error) {
	_, _ = fmt.Fprintf(out, "Listening for Leviosa zones (%s)...\n", window)
	return discover(ctx, func(udn, ip string) {
		_, _ = fmt.Fprintf(out, "  %s %s %s\n", FoundMarker, ip, udn)
	})
}
