// Package dashui provides the Bubble Tea dashboard.
package dashui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/derdie/internal/model"
	"github.com/verte-zerg/derdie/internal/selection"
	"github.com/verte-zerg/derdie/internal/stats"
	"github.com/verte-zerg/derdie/internal/store"
)

const (
	tabEndings = iota
	tabKeyStats
	tabSummary
)

const (
	paneEndings = iota
	paneExceptions
)

// NotInitializedNotice is shown while the store holds no nouns.
const NotInitializedNotice = "Dashboard not initialized - import data with `derdie import`, then press r to reload."

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#C89A3A")).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A")).
			Padding(1, 2)
	cardStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	focusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)

	genderStyles = map[model.Gender]lipgloss.Style{
		model.Feminine:  lipgloss.NewStyle().Foreground(lipgloss.Color("#EE6666")),
		model.Masculine: lipgloss.NewStyle().Foreground(lipgloss.Color("#5470C6")),
		model.Neuter:    lipgloss.NewStyle().Foreground(lipgloss.Color("#3BA272")),
	}
)

// Loader builds the report the dashboard renders.
type Loader func(ctx context.Context) (stats.Report, error)

// Model implements the Bubble Tea dashboard.
type Model struct {
	load Loader
	top  int
	log  *zap.Logger

	report         stats.Report
	machine        *selection.Machine
	state          selection.State
	notInitialized bool
	errMsg         string

	tabs      []string
	activeTab int
	viewports []viewport.Model
	tables    map[model.Gender]table.Model

	focus           int
	endingCursor    int
	exceptionCursor int
	aspect          selection.Aspect

	width  int
	height int
}

// NewModel constructs the dashboard and loads the first report.
func NewModel(load Loader, top int, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	if top <= 0 {
		top = stats.DefaultTop
	}
	m := &Model{
		load:   load,
		top:    top,
		log:    logger,
		tabs:   []string{"Endings", "Key Stats", "Accuracy & Coverage"},
		aspect: selection.AspectAccuracy,
	}
	m.initViewports()
	m.initTables()
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "r":
			m.refreshReport()
			m.updateLayout()
			return m, nil
		}
		if m.notInitialized {
			return m, nil
		}
		switch msg.String() {
		case "esc":
			m.apply(selection.NoSelection{})
			m.exceptionCursor = 0
			m.focus = paneEndings
			return m, nil
		case "tab":
			if m.activeTab == tabEndings {
				m.toggleFocus()
			}
			return m, nil
		case "up", "k":
			m.moveCursor(-1)
			return m, nil
		case "down", "j":
			m.moveCursor(1)
			return m, nil
		case "enter", " ":
			m.selectAtCursor()
			return m, nil
		case "f", "m", "n", "t":
			if m.activeTab != tabEndings {
				m.selectGender(msg.String())
			}
			return m, nil
		case "a":
			m.setAspect(selection.AspectAccuracy)
			return m, nil
		case "c":
			m.setAspect(selection.AspectCoverage)
			return m, nil
		case "g", "home":
			m.viewports[m.activeTab].GotoTop()
			return m, nil
		case "G", "end":
			m.viewports[m.activeTab].GotoBottom()
			return m, nil
		default:
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

// State returns the current selection.
func (m *Model) State() selection.State {
	return m.state
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	if m.activeTab == tabEndings {
		m.viewports[tabEndings].Height = maxInt(1, vpHeight-tableBlockHeight(vpHeight))
	}
	m.resizeTables(m.width, tableBlockHeight(vpHeight))
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	m.updateLayout()
}

func (m *Model) refreshReport() {
	report, err := m.load(context.Background())
	if err != nil {
		m.report = stats.Report{}
		m.machine = selection.NewMachine(m.report)
		m.state = selection.State{}
		if errors.Is(err, store.ErrEmpty) {
			m.notInitialized = true
			m.errMsg = ""
			m.log.Info("dashboard not initialized")
		} else {
			m.notInitialized = false
			m.errMsg = err.Error()
			m.log.Error("failed to load report", zap.Error(err))
		}
		m.refreshTables()
		m.renderTabContents()
		return
	}
	m.notInitialized = false
	m.errMsg = ""
	m.report = report
	m.machine = selection.NewMachine(report)
	m.state = selection.State{}
	m.endingCursor = 0
	m.exceptionCursor = 0
	m.focus = paneEndings
	m.log.Debug("report loaded",
		zap.Int("nouns", report.Nouns),
		zap.Int("endings", len(report.Endings)),
		zap.Int("key_endings", len(report.KeyEndings)),
	)
	m.refreshTables()
	m.renderTabContents()
}

func (m *Model) apply(ev selection.Event) {
	m.state = m.machine.Apply(m.state, ev)
	m.log.Debug("selection",
		zap.String("event", eventName(ev)),
		zap.Stringer("phase", m.state.Phase),
		zap.String("filter", m.state.TableFilter),
	)
	m.refreshTables()
	m.renderTabContents()
}

func (m *Model) visibleEndings() []model.EndingStats {
	return stats.Top(m.report.Endings, m.top)
}

func (m *Model) toggleFocus() {
	if m.focus == paneEndings && len(m.state.Exceptions) > 0 {
		m.focus = paneExceptions
	} else {
		m.focus = paneEndings
	}
	m.renderTabContents()
}

func (m *Model) moveCursor(delta int) {
	if m.activeTab != tabEndings {
		vp := m.viewports[m.activeTab]
		if delta < 0 {
			vp.ScrollUp(1)
		} else {
			vp.ScrollDown(1)
		}
		m.viewports[m.activeTab] = vp
		return
	}
	if m.focus == paneExceptions {
		m.exceptionCursor = clamp(m.exceptionCursor+delta, 0, len(m.state.Exceptions)-1)
	} else {
		m.endingCursor = clamp(m.endingCursor+delta, 0, len(m.visibleEndings())-1)
	}
	m.renderTabContents()
}

func (m *Model) selectAtCursor() {
	if m.activeTab != tabEndings {
		return
	}
	if m.focus == paneExceptions {
		label := ""
		if m.exceptionCursor >= 0 && m.exceptionCursor < len(m.state.Exceptions) {
			label = m.state.Exceptions[m.exceptionCursor]
		}
		m.apply(selection.ExceptionClick{Label: label})
		return
	}
	endings := m.visibleEndings()
	if m.endingCursor < 0 || m.endingCursor >= len(endings) {
		m.apply(selection.NoSelection{})
		return
	}
	m.apply(selection.EndingClick{Label: endings[m.endingCursor].Ending})
	m.exceptionCursor = 0
}

func (m *Model) selectGender(key string) {
	var gender model.Gender
	if key != "t" {
		gender = model.Gender(key)
	}
	m.apply(selection.GenderAspectClick{Gender: gender, Aspect: m.aspect})
}

func (m *Model) setAspect(aspect selection.Aspect) {
	m.aspect = aspect
	if m.state.TotalSelected || m.state.SelectedGender != "" {
		m.apply(selection.GenderAspectClick{Gender: m.state.SelectedGender, Aspect: aspect})
		return
	}
	m.renderTabContents()
}

func eventName(ev selection.Event) string {
	switch ev.(type) {
	case selection.EndingClick:
		return selection.TypeEnding
	case selection.ExceptionClick:
		return selection.TypeException
	case selection.GenderAspectClick:
		return selection.TypeGender
	default:
		return selection.TypeNone
	}
}
