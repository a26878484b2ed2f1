package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/sirupsen/logrus"

	"newsquant/internal/config"
	"newsquant/internal/scan"
	"newsquant/internal/util"
	"newsquant/internal/view"
	"newsquant/pkg/newsquant"
)

// Styles.
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	titleHlStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75")) // brighter blue for highlight
	scoreStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	toggleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	detailStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	noticeStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	highlightBG  = lipgloss.Color("236") // dark grey background
)

// hlStyle returns a copy of s with the highlight background applied when hl is true.
func hlStyle(s lipgloss.Style, hl bool) lipgloss.Style {
	if hl {
		return s.Background(highlightBG)
	}
	return s
}

const idleText = "Press enter to scan."

// Messages.
type scanResultMsg struct {
	query newsquant.Query
	items []newsquant.Item
	err   error
}

// Model.
type model struct {
	ctrl       *scan.Controller
	scanner    scan.Scanner
	region     *view.Buffer
	periods    *scan.Cycle
	industries *scan.Cycle // nil when no industries are configured
	logger     logrus.FieldLogger

	viewport      viewport.Model
	ready         bool
	width, height int

	// Selection.
	selected int // index of the highlighted card

	inFlight int    // scans started and not yet completed
	notice   string // last rejected selection
}

func choicesOf(opts []config.Option) []scan.Choice {
	out := make([]scan.Choice, len(opts))
	for i, o := range opts {
		label := o.Label
		if label == "" {
			label = o.Value
		}
		out[i] = scan.Choice{Value: o.Value, Label: label}
	}
	return out
}

func newModel(scanner scan.Scanner, cfg *config.Config, logger logrus.FieldLogger) (model, error) {
	m := model{
		scanner: scanner,
		region:  view.NewBuffer(),
		periods: scan.NewCycle(choicesOf(cfg.Scan.Periods), cfg.Scan.DefaultPeriod),
		logger:  logger,
	}

	handles := scan.Handles{Period: m.periods, Display: m.region}
	opts := []scan.Option{
		scan.WithLogger(logger),
		scan.WithPeriods(config.Values(cfg.Scan.Periods)...),
		scan.WithAllIndustries(cfg.Scan.AllIndustries),
	}
	if len(cfg.Scan.Industries) > 0 {
		m.industries = scan.NewCycle(choicesOf(cfg.Scan.Industries), cfg.Scan.AllIndustries)
		handles.Industry = m.industries
		opts = append(opts, scan.WithIndustries(config.Values(cfg.Scan.Industries)...))
	}

	ctrl, err := scan.New(scanner, handles, opts...)
	if err != nil {
		return model{}, err
	}
	m.ctrl = ctrl
	m.region.SetText(idleText)
	return m, nil
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "enter", "r":
			cmd = m.startScan()
			return m, cmd
		case "left":
			m.periods.Prev()
			m.refresh()
			return m, nil
		case "right":
			m.periods.Next()
			m.refresh()
			return m, nil
		case "i":
			if m.industries != nil {
				m.industries.Next()
			}
			return m, nil
		case "I":
			if m.industries != nil {
				m.industries.Prev()
			}
			return m, nil
		case "up", "down":
			l := m.region.List()
			if l == nil || l.Len() == 0 {
				return m, nil
			}
			if msg.String() == "up" {
				if m.selected > 0 {
					m.selected--
				}
			} else if m.selected < l.Len()-1 {
				m.selected++
			}
			m.refresh()
			m.ensureVisible()
			return m, nil
		case " ", "tab":
			if l := m.region.List(); l != nil {
				if _, err := l.Toggle(view.CardID(m.selected)); err != nil {
					m.logger.WithError(err).Warn("toggle failed")
				}
				m.refresh()
				m.ensureVisible()
			}
			return m, nil
		case "e":
			if l := m.region.List(); l != nil {
				l.ExpandAll()
				m.refresh()
				m.ensureVisible()
			}
			return m, nil
		case "c":
			if l := m.region.List(); l != nil {
				l.CollapseAll()
				m.refresh()
				m.ensureVisible()
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		headerH := 1
		footerH := 1
		vpHeight := m.height - headerH - footerH
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.MouseWheelEnabled = true
			m.ready = true
			m.refresh()
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
			m.refresh()
		}
		return m, nil

	case scanResultMsg:
		if m.inFlight > 0 {
			m.inFlight--
		}
		outcome, _ := m.ctrl.Complete(msg.query, msg.items, msg.err)
		m.logger.WithField("outcome", outcome.String()).Debug("scan completed")
		m.selected = 0
		m.refresh()
		if m.ready {
			m.viewport.GotoTop()
		}
		return m, nil
	}

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

// startScan shows the busy text and returns the command that performs the
// request. The response comes back as a scanResultMsg.
func (m *model) startScan() tea.Cmd {
	q, err := m.ctrl.Begin(m.periods.Value(), m.industryValue())
	if err != nil {
		m.notice = err.Error()
		m.refresh()
		return nil
	}
	m.notice = ""
	m.inFlight++
	m.refresh()

	scanner := m.scanner
	return func() tea.Msg {
		items, err := scanner.Scan(context.Background(), q)
		return scanResultMsg{query: q, items: items, err: err}
	}
}

func (m *model) industryValue() string {
	if m.industries == nil {
		return ""
	}
	return m.industries.Value()
}

func (m *model) refresh() {
	if m.ready {
		content, _ := m.renderContent()
		m.viewport.SetContent(content)
	}
}

// ensureVisible scrolls the viewport so the selected card's title is visible.
func (m *model) ensureVisible() {
	_, starts := m.renderContent()
	if m.selected < 0 || m.selected >= len(starts) {
		return
	}
	line := starts[m.selected]
	yOff := m.viewport.YOffset
	vpH := m.viewport.Height
	if line < yOff {
		m.viewport.SetYOffset(line)
	} else if line >= yOff+vpH {
		m.viewport.SetYOffset(line - vpH + 1)
	}
}

func (m model) View() string {
	if !m.ready {
		return "Loading..."
	}

	headerText := fmt.Sprintf(" NewsQuant    period: %s", m.periods.Current().Label)
	if m.industries != nil {
		headerText += fmt.Sprintf("    industry: %s", m.industries.Current().Label)
	}
	if m.inFlight > 0 {
		headerText += "    scanning..."
	} else if l := m.region.List(); l != nil {
		headerText += fmt.Sprintf("    articles: %d", l.Len())
	}
	headerBar := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("4")).
		Render(padOrTrunc(headerText+" ", m.width))

	pct := m.viewport.ScrollPercent() * 100
	footerLeft := " q quit  enter scan  left/right period  i industry  up/dn select  space toggle  e/c expand/collapse"
	footerRight := fmt.Sprintf("%.0f%% ", pct)
	gap := m.width - lipgloss.Width(footerLeft) - lipgloss.Width(footerRight)
	if gap < 0 {
		gap = 0
	}
	footerText := footerLeft + strings.Repeat(" ", gap) + footerRight
	footerBar := lipgloss.NewStyle().
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("8")).
		Render(padOrTrunc(footerText, m.width))

	return headerBar + "\n" + m.viewport.View() + "\n" + footerBar
}

// renderContent renders the display region and returns the line on which
// each card starts.
func (m model) renderContent() (string, []int) {
	var b strings.Builder
	if m.notice != "" {
		b.WriteString("  " + noticeStyle.Render(view.SanitizeTerminal(m.notice)) + "\n")
	}

	l := m.region.List()
	if l == nil {
		b.WriteString("\n  " + statusStyle.Render(view.SanitizeTerminal(m.region.Text())) + "\n")
		return b.String(), nil
	}

	line := strings.Count(b.String(), "\n")
	starts := make([]int, 0, l.Len())
	for i, c := range l.Cards() {
		if i > 0 {
			b.WriteString("\n")
			line++
		}
		starts = append(starts, line)
		line += renderCard(&b, c, l.Expanded(c.ID), l.Label(c.ID), i == m.selected)
	}
	return b.String(), starts
}

// renderCard writes one card and returns the number of lines written.
func renderCard(b *strings.Builder, c view.Card, expanded bool, label string, hl bool) int {
	marker := "  "
	ts := titleStyle
	if hl {
		marker = "> "
		ts = titleHlStyle
	}

	b.WriteString(marker)
	b.WriteString(hlStyle(ts, hl).Render(fmt.Sprintf("%d. %s", int(c.ID)+1, view.SanitizeTerminal(c.Title))))
	b.WriteString("\n     ")
	b.WriteString(dimStyle.Render(view.SanitizeTerminal(c.Link)))
	b.WriteString("\n     ")
	b.WriteString(scoreStyle.Render("Relevancy Score: " + c.Score + "/10"))
	b.WriteString("   ")
	b.WriteString(toggleStyle.Render("[" + label + "]"))
	b.WriteString("\n")
	n := 3

	if expanded {
		for _, d := range view.DetailLines(c) {
			b.WriteString("     ")
			b.WriteString(detailStyle.Render(d))
			b.WriteString("\n")
			n++
		}
	}
	return n
}

// padOrTrunc pads s with spaces to width, or truncates if longer.
func padOrTrunc(s string, width int) string {
	n := lipgloss.Width(s)
	if n >= width {
		return ansi.Truncate(s, width, "")
	}
	return s + strings.Repeat(" ", width-n)
}

func main() {
	cfgPath := "config/newsquant.yaml"
	if p := os.Getenv("NEWSQUANT_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	logPath := fmt.Sprintf("/tmp/newsquant-tui-%s.log", time.Now().Format("2006-01-02"))
	if cfg.Logging.File != "" {
		logPath = cfg.Logging.File
	}
	logFile, err := util.OpenLogFile(logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := util.NewLogger(cfg.Logging.Level, "text", logFile)

	client := newsquant.NewClient(cfg.Upstream.BaseURL, newsquant.WithTimeout(cfg.Upstream.Timeout.Std()))
	logger.WithField("upstream", client.BaseURL()).Info("newsquant tui starting")

	m, err := newModel(client, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "binding scan controller: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
