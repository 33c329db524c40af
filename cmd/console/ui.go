package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/elitelephant/protocol-guardian/pkg/catalog"
	"github.com/elitelephant/protocol-guardian/pkg/sim"
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	cat          *catalog.Catalog
	gameState    *sim.GameState
	mainViewport viewport.Model
	metaViewport viewport.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	// Catalog selection state
	showCatalogModal bool
	catalogs         []string
	catalogMap       map[string]string
	selectedCatalog  int
	loadingCatalogs  bool

	// Quit confirmation state
	showQuitModal bool

	// Decision navigation state
	cursor          int
	showOptionModal bool
	optionCursor    int

	// Running log of session events and the most recent status note
	events []string
	status string
}

type catalogsLoadedMsg struct {
	catalogs   []string
	catalogMap map[string]string
	err        error
}

type sessionCreatedMsg struct {
	gameState *sim.GameState
	cat       *catalog.Catalog
	err       error
}

type actionResultMsg struct {
	gameState *sim.GameState
	note      string
	err       error
}

var (
	mainPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	crisisStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")). // red
			Bold(true)

	staleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("205")).
			Bold(true)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

var titleCaser = cases.Title(language.English)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client) ConsoleUI {
	mainVp := viewport.New(50, 20)
	mainVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:           cfg,
		client:           client,
		mainViewport:     mainVp,
		metaViewport:     metaVp,
		showCatalogModal: true,
		loadingCatalogs:  true,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return m.loadCatalogs()
}

func (m ConsoleUI) loadCatalogs() tea.Cmd {
	return func() tea.Msg {
		names, catalogMap, err := listCatalogs(m.client, m.config.APIBaseURL)
		return catalogsLoadedMsg{names, catalogMap, err}
	}
}

func (m ConsoleUI) createSessionFromCatalog(catalogFile string) tea.Cmd {
	return func() tea.Msg {
		gs, err := createSession(m.client, m.config.APIBaseURL, catalogFile)
		if err != nil {
			return sessionCreatedMsg{nil, nil, err}
		}
		cat, err := getCatalog(m.client, m.config.APIBaseURL, catalogFile)
		return sessionCreatedMsg{gs, cat, err}
	}
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showCatalogModal {
		return m.updateCatalogModal(msg)
	}

	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.mainViewport, vpCmd = m.mainViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizePanels()
		m.ready = true
		m.writeMainContent()
		m.writeMetadata()

	case tea.KeyMsg:
		if m.showOptionModal {
			return m.updateOptionModal(msg)
		}
		return m.handleKey(msg)

	case actionResultMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.status = errorStyle.Render("Error: " + msg.err.Error())
		} else {
			m.err = nil
			m.gameState = msg.gameState
			if msg.note != "" {
				m.events = append(m.events, msg.note)
				m.status = msg.note
			}
			if m.cursor >= len(m.gameState.PendingDecisions) {
				m.cursor = 0
			}
		}
		m.writeMainContent()
		m.writeMetadata()
		return m, nil
	}

	m.mainViewport, vpCmd = m.mainViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)
	return m, tea.Batch(vpCmd, mvCmd)
}

func (m *ConsoleUI) resizePanels() {
	mainWidth := int(float64(m.width)*0.70) - 4
	metaWidth := m.width - mainWidth - 6

	m.mainViewport.Width = mainWidth - 2
	m.mainViewport.Height = m.height - 5
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
}

func (m ConsoleUI) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.showQuitModal = true
		return m, nil
	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
			m.writeMainContent()
		}
		return m, nil
	case tea.KeyDown:
		if m.gameState != nil && m.cursor < len(m.gameState.PendingDecisions)-1 {
			m.cursor++
			m.writeMainContent()
		}
		return m, nil
	case tea.KeyEnter:
		if m.loading || m.gameState == nil || len(m.gameState.PendingDecisions) == 0 {
			return m, nil
		}
		m.showOptionModal = true
		m.optionCursor = 0
		return m, nil
	}

	if m.loading {
		return m, nil
	}

	switch msg.String() {
	case "a":
		m.loading = true
		return m, m.doAdvance(1)
	case "y":
		m.loading = true
		return m, m.doAdvance(12)
	case "s":
		m.loading = true
		return m, m.doSample()
	case "t":
		m.loading = true
		return m, m.doTriggerCrisis()
	case "r":
		m.loading = true
		return m, m.doReset()
	case "c":
		if m.gameState != nil {
			if err := clipboard.WriteAll(m.gameState.ID.String()); err == nil {
				m.status = "Session ID copied to clipboard"
			} else {
				m.status = errorStyle.Render("Clipboard unavailable: " + err.Error())
			}
			m.writeMetadata()
		}
		return m, nil
	case "q":
		m.showQuitModal = true
		return m, nil
	}

	return m, nil
}

func (m ConsoleUI) updateOptionModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	pending := m.selectedDecision()
	if pending == nil {
		m.showOptionModal = false
		return m, nil
	}

	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.showOptionModal = false
		return m, nil
	case tea.KeyUp:
		if m.optionCursor > 0 {
			m.optionCursor--
		}
	case tea.KeyDown:
		if m.optionCursor < len(pending.Options)-1 {
			m.optionCursor++
		}
	case tea.KeyEnter:
		option := pending.Options[m.optionCursor]
		m.showOptionModal = false
		m.loading = true
		return m, m.doDecision(pending.ID, option.ID, pending.Title, option.Text)
	}

	return m, nil
}

func (m ConsoleUI) selectedDecision() *sim.PendingDecision {
	if m.gameState == nil || m.cursor >= len(m.gameState.PendingDecisions) {
		return nil
	}
	return &m.gameState.PendingDecisions[m.cursor]
}

func (m ConsoleUI) doDecision(decisionID, optionID, title, optionText string) tea.Cmd {
	return func() tea.Msg {
		gs, err := makeDecision(m.client, m.config.APIBaseURL, m.gameState.ID, decisionID, optionID)
		note := fmt.Sprintf("%s resolved: %s", title, optionText)
		return actionResultMsg{gs, note, err}
	}
}

func (m ConsoleUI) doAdvance(months int) tea.Cmd {
	return func() tea.Msg {
		gs, err := advanceTime(m.client, m.config.APIBaseURL, m.gameState.ID, months)
		if err != nil {
			return actionResultMsg{nil, "", err}
		}
		note := fmt.Sprintf("Advanced %d month(s) to %04d-%02d", months, gs.CurrentYear, gs.CurrentMonth)
		return actionResultMsg{gs, note, nil}
	}
}

func (m ConsoleUI) doSample() tea.Cmd {
	return func() tea.Msg {
		result, err := sampleDecision(m.client, m.config.APIBaseURL, m.gameState.ID)
		if err != nil {
			return actionResultMsg{nil, "", err}
		}
		note := "No fresh decisions left in the catalog"
		if result.Sampled {
			note = "A new decision is on your desk"
		}
		return actionResultMsg{result.GameState, note, nil}
	}
}

func (m ConsoleUI) doTriggerCrisis() tea.Cmd {
	return func() tea.Msg {
		result, err := triggerCrisis(m.client, m.config.APIBaseURL, m.gameState.ID)
		if err != nil {
			return actionResultMsg{nil, "", err}
		}
		note := "No eligible crisis for the current era"
		if result.Triggered && result.GameState.CurrentCrisis != nil {
			note = crisisStyle.Render("CRISIS: " + m.crisisTitle(result.GameState.CurrentCrisis.CrisisID))
		}
		return actionResultMsg{result.GameState, note, nil}
	}
}

func (m ConsoleUI) doReset() tea.Cmd {
	return func() tea.Msg {
		gs, err := resetSession(m.client, m.config.APIBaseURL, m.gameState.ID)
		return actionResultMsg{gs, "Session reset to the start of the term", err}
	}
}

func (m ConsoleUI) crisisTitle(crisisID string) string {
	if m.cat != nil {
		if c, ok := m.cat.FindCrisis(crisisID); ok {
			return c.Title
		}
	}
	return crisisID
}

// writeMainContent renders the situation panel: active crisis, pending
// decisions with the selection cursor, then the event log.
func (m *ConsoleUI) writeMainContent() {
	width := m.mainViewport.Width - 6
	if width < 20 {
		width = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("PROTOCOL GUARDIAN") + "\n\n")

	if m.gameState == nil {
		m.mainViewport.SetContent(content.String())
		return
	}
	gs := m.gameState

	if gs.Phase.Terminal() {
		content.WriteString(titleStyle.Render("TERM COMPLETE") + "\n\n")
		ending := titleCaser.String(string(gs.Ending))
		content.WriteString(fmt.Sprintf("Final outcome: %s\n\n", titleStyle.Render(ending)))
		content.WriteString(wordwrap.String(endingDescription(gs.Ending), width) + "\n\n")
		content.WriteString(promptStyle.Render("Press R to start a new term, Q to quit") + "\n\n")
	}

	if gs.CurrentCrisis != nil {
		content.WriteString(crisisStyle.Render("⚠ ACTIVE CRISIS: "+m.crisisTitle(gs.CurrentCrisis.CrisisID)) + "\n")
		if m.cat != nil {
			if c, ok := m.cat.FindCrisis(gs.CurrentCrisis.CrisisID); ok && c.Description != "" {
				content.WriteString(wordwrap.String(c.Description, width) + "\n")
			}
		}
		if gs.CurrentCrisis.DaysRemaining != nil {
			content.WriteString(loadingStyle.Render(fmt.Sprintf("%d days to respond", *gs.CurrentCrisis.DaysRemaining)) + "\n")
		}
		content.WriteString("\n")
	}

	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	if len(gs.PendingDecisions) == 0 {
		content.WriteString(promptStyle.Render("No decisions pending. Press A to advance time or S to request a briefing.") + "\n\n")
	} else {
		content.WriteString(titleStyle.Render("PENDING DECISIONS") + "\n\n")
		for i, pd := range gs.PendingDecisions {
			line := pd.Title
			if pd.Stale {
				line += staleStyle.Render(" (overdue)")
			}
			if i == m.cursor {
				content.WriteString(selectedStyle.Render("▶ "+line) + "\n")
				if pd.Description != "" {
					content.WriteString(wordwrap.String(pd.Description, width-2) + "\n")
				}
			} else {
				content.WriteString("  " + line + "\n")
			}
		}
		content.WriteString("\n")
	}

	if m.loading {
		content.WriteString(loadingStyle.Render("Working...") + "\n\n")
	}

	if len(m.events) > 0 {
		content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")
		content.WriteString(titleStyle.Render("LOG") + "\n")
		start := 0
		if len(m.events) > 12 {
			start = len(m.events) - 12
		}
		for _, event := range m.events[start:] {
			content.WriteString(eventStyle.Render("• ") + wordwrap.String(event, width-2) + "\n")
		}
	}

	m.mainViewport.SetContent(content.String())
	m.mainViewport.GotoBottom()
}

func (m *ConsoleUI) writeMetadata() {
	if m.gameState == nil {
		return
	}
	gs := m.gameState

	var content strings.Builder
	content.WriteString(titleStyle.Render("TERM STATUS") + "\n\n")

	content.WriteString("Session:\n")
	content.WriteString(gs.ID.String()[:8] + "...\n\n")

	content.WriteString(fmt.Sprintf("Date: %04d-%02d\n", gs.CurrentYear, gs.CurrentMonth))
	content.WriteString(fmt.Sprintf("Phase: %s\n", titleCaser.String(string(gs.Phase))))
	content.WriteString(fmt.Sprintf("Term: %.0f%%\n\n", gs.TermProgress))

	content.WriteString("Indicators:\n")
	content.WriteString(renderIndicator("Network", gs.Indicators.NetworkHealth, sim.NetworkHealthFloor))
	content.WriteString(renderIndicator("Public", gs.Indicators.PublicConfidence, sim.PublicConfidenceFloor))
	content.WriteString(renderIndicator("Tech", gs.Indicators.TechAdvancement, 0))
	content.WriteString("\n")

	if len(gs.UnresolvedCrises) > 0 {
		content.WriteString(crisisStyle.Render("Unresolved crises:") + "\n")
		for _, uc := range gs.UnresolvedCrises {
			content.WriteString(fmt.Sprintf("• %s (x%d)\n", m.crisisTitle(uc.CrisisID), uc.ErasUnresolved))
		}
		content.WriteString("\n")
	}

	content.WriteString(fmt.Sprintf("Decisions made: %d\n", len(gs.History)))
	content.WriteString(fmt.Sprintf("Lessons: %d\n\n", len(gs.CompletedLessons)))

	if m.status != "" {
		content.WriteString(m.status + "\n\n")
	}

	content.WriteString("Commands:\n")
	content.WriteString("• ↑/↓: Select decision\n")
	content.WriteString("• Enter: Choose option\n")
	content.WriteString("• A: Advance 1 month\n")
	content.WriteString("• Y: Advance 1 year\n")
	content.WriteString("• S: Request briefing\n")
	content.WriteString("• T: Trigger crisis\n")
	content.WriteString("• R: Reset term\n")
	content.WriteString("• C: Copy session ID\n")
	content.WriteString("• Q: Quit\n")

	m.metaViewport.SetContent(content.String())
}

// renderIndicator draws a ten-segment bar. Scores at or below the floor
// are shown in red since they end the term early.
func renderIndicator(label string, score, floor int) string {
	filled := score / 10
	bar := strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)
	line := fmt.Sprintf("%-8s %s %3d\n", label, bar, score)
	if floor > 0 && score <= floor {
		return errorStyle.Render(line)
	}
	return line
}

func endingDescription(e sim.EndingType) string {
	switch e {
	case sim.EndingBalanced:
		return "You kept every constituency in play. The protocols held, the public stayed on side, and research moved forward."
	case sim.EndingGuardian:
		return "The network survived everything thrown at it, though some opportunities were sacrificed to keep it that way."
	case sim.EndingDiplomat:
		return "Public trust became your strongest asset. History will remember a communicator more than an engineer."
	case sim.EndingInnovator:
		return "Research surged ahead of every rival, and the infrastructure mostly kept up."
	case sim.EndingCompromised:
		return "The term ended with the board split and the numbers telling an uncomfortable story."
	}
	return "The term has ended."
}

func (m ConsoleUI) updateCatalogModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case catalogsLoadedMsg:
		m.loadingCatalogs = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.catalogs = msg.catalogs
			m.catalogMap = msg.catalogMap
		}

	case sessionCreatedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.gameState = msg.gameState
			m.cat = msg.cat
			m.showCatalogModal = false
			if m.width > 0 && m.height > 0 {
				m.resizePanels()
				m.ready = true
			}
			m.events = append(m.events, "Term started: "+m.cat.Name)
			m.writeMainContent()
			m.writeMetadata()
		}
		return m, nil

	case tea.KeyMsg:
		if m.loadingCatalogs || m.loading {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.selectedCatalog > 0 {
				m.selectedCatalog--
			}
		case tea.KeyDown:
			if m.selectedCatalog < len(m.catalogs)-1 {
				m.selectedCatalog++
			}
		case tea.KeyEnter:
			if len(m.catalogs) > 0 {
				name := m.catalogs[m.selectedCatalog]
				m.loading = true
				return m, m.createSessionFromCatalog(m.catalogMap[name])
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N", "esc":
				m.showQuitModal = false
				return m, nil
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderCatalogModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	if m.loadingCatalogs {
		content.WriteString(modalTitleStyle.Render("Loading Catalogs..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Fetching available scenarios from the server..."))
	} else if m.err != nil {
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(fmt.Sprintf("Failed to load catalogs: %v", m.err)))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	} else if m.loading {
		content.WriteString(modalTitleStyle.Render("Starting Term..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Setting up your five-year term..."))
	} else {
		content.WriteString(modalTitleStyle.Render("Select a Catalog"))
		content.WriteString("\n\n")

		for i, name := range m.catalogs {
			if i == m.selectedCatalog {
				content.WriteString(selectedStyle.Render("▶ " + name))
			} else {
				content.WriteString(modalItemStyle.Render("  " + name))
			}
			content.WriteString("\n")
		}

		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("Leave your post before the term is up?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderOptionModal() string {
	pending := m.selectedDecision()
	if pending == nil {
		return ""
	}

	width := 70
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render(pending.Title))
	content.WriteString("\n\n")
	if pending.Description != "" {
		content.WriteString(wordwrap.String(pending.Description, width-6))
		content.WriteString("\n\n")
	}

	for i, option := range pending.Options {
		if i == m.optionCursor {
			content.WriteString(selectedStyle.Render("▶ " + option.Text))
		} else {
			content.WriteString(modalItemStyle.Render("  " + option.Text))
		}
		content.WriteString("\n")
	}

	if note := pending.Options[m.optionCursor].EducationalNote; note != "" {
		content.WriteString("\n")
		content.WriteString(promptStyle.Render(wordwrap.String(note, width-6)))
		content.WriteString("\n")
	}

	content.WriteString("\n")
	content.WriteString(promptStyle.Render("↑/↓ to choose, Enter to commit, Esc to back out"))

	modal := modalStyle.Width(width).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showCatalogModal {
		return m.renderCatalogModal()
	}

	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if m.showOptionModal {
		return m.renderOptionModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	mainWidth := int(float64(m.width)*0.70) - 4
	metaWidth := m.width - mainWidth - 6

	mainPanel := mainPanelStyle.Width(mainWidth).Height(m.height - 2).Render(
		m.mainViewport.View(),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, mainPanel, metaPanel)
}
