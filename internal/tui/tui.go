package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/ginrummy/gin"
	"github.com/lox/ginrummy/internal/game"
)

// Model is the Bubble Tea model for a hot-seat match: both players share
// one terminal and the action pane always shows the player whose turn it is.
type Model struct {
	match     *game.Match
	logger    *log.Logger
	formatter *game.EventFormatter

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	// State
	gameLog     []string
	status      string
	statusStyle lipgloss.Style
	quitting    bool
	focusedPane int // 0 = log, 1 = input

	// Dimensions
	width       int
	height      int
	initialized bool
}

// NewModel creates a model driving match. The model subscribes to the
// match's events to build its log.
func NewModel(match *game.Match, logger *log.Logger) *Model {
	// Will be properly sized when WindowSizeMsg arrives
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "draw, take, discard <card>, knock <card>, gin, hint, help"
	ti.Focus()
	ti.CharLimit = 40
	ti.Width = 60
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	names := [2]string{match.Player(0).Name, match.Player(1).Name}
	m := &Model{
		match:       match,
		logger:      logger.WithPrefix("tui"),
		formatter:   game.NewEventFormatter(names, game.FormattingOptions{Perspective: -1}),
		logViewport: vp,
		actionInput: ti,
		focusedPane: 1,
	}

	// the first deal happened before we could subscribe
	m.AddLogEntry(m.formatter.FormatEvent(game.RoundStartEvent{
		Round:          match.Round(),
		StartingPlayer: match.CurrentPlayer(),
	}))
	match.Events().Subscribe(game.EventSubscriberFunc(m.onEvent))
	return m
}

// Run starts the interactive program on the alternate screen and blocks
// until the user quits.
func Run(match *game.Match, logger *log.Logger) error {
	p := tea.NewProgram(NewModel(match, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m *Model) onEvent(event game.GameEvent) {
	m.AddLogEntry(m.formatter.FormatEvent(event))
	switch e := event.(type) {
	case game.RoundEndEvent:
		m.AddLogEntry(fmt.Sprintf("Scores: %s %d, %s %d",
			m.match.Player(0).Name, e.Scores[0], m.match.Player(1).Name, e.Scores[1]))
	case game.MatchEndEvent:
		m.setStatus(SuccessStyle, "Match over, 'quit' to exit")
	}
}

// Init initializes the TUI model
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				input := m.actionInput.Value()
				m.actionInput.SetValue("")
				if quit := m.Execute(input); quit {
					m.quitting = true
					return m, tea.Quit
				}
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "pgup", "b":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageUp()
			}
		case "pgdown", "f":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageDown()
			}
		case "home", "g":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(max(m.width-2, 1)).
		Height(max(actionHeight, 1))
	if m.focusedPane == 1 {
		actionStyle = actionStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	actionPane := actionStyle.Render(actionContent)

	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 25)
	paneHeight := max(m.height-actionHeight-4, 1)

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	logWidth := max(m.width-sidebarWidth-4, 1)
	m.logViewport.Width = logWidth
	m.logViewport.Height = paneHeight
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if !m.initialized && logWidth > 1 && paneHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(logWidth).
		Height(paneHeight)
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	logPane := logStyle.Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

// renderSidebarPane shows the scoreboard and the table
func (m *Model) renderSidebarPane() string {
	state := m.match.State()
	var content strings.Builder

	content.WriteString(HeaderStyle.Render(fmt.Sprintf(" Round %d ", state.Round)))
	content.WriteString("\n\n")
	for i, p := range state.Players {
		marker := "  "
		if i == state.CurrentPlayer && !state.GameOver {
			marker = "▶ "
		}
		fmt.Fprintf(&content, "%s%s: %d (%d won)\n", marker, p.Name, state.Scores[i], state.RoundsWon[i])
	}
	content.WriteString("\n")
	fmt.Fprintf(&content, "Deck: %d\n", state.DeckSize)
	content.WriteString("Discard: ")
	if state.DiscardTop != nil {
		content.WriteString(FormatCard(*state.DiscardTop))
	} else {
		content.WriteString(InfoStyle.Render("empty"))
	}
	fmt.Fprintf(&content, " (%d)\n", state.DiscardSize)
	if state.GameOver {
		final := m.match.FinalScores()
		content.WriteString("\n")
		content.WriteString(SuccessStyle.Render(fmt.Sprintf("Final: %d-%d", final[0], final[1])))
		content.WriteString("\n")
	}
	return content.String()
}

// renderActionPane shows the current player's hand, available actions and
// the input line.
func (m *Model) renderActionPane() string {
	view := m.match.View(m.match.CurrentPlayer())
	var content strings.Builder

	hand := gin.NewHand(view.Hand...)
	hand.Sort()

	fmt.Fprintf(&content, "%s  %s %s\n",
		HandInfoStyle.Render(view.Name+":"),
		FormatCards(hand.Cards()),
		DeadwoodStyle.Render(fmt.Sprintf("deadwood %d", view.Deadwood)))
	content.WriteString(m.renderAvailableActions(view))
	content.WriteString("\n")

	if m.status != "" {
		content.WriteString(m.statusStyle.Render(m.status))
		content.WriteString("\n")
	}

	content.WriteString(m.actionInput.View())
	content.WriteString("\n")

	help := "Tab to scroll log • Enter to submit • Ctrl+C to quit"
	if m.focusedPane == 0 {
		help = "Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"
	}
	content.WriteString(InfoStyle.Render(help))
	return content.String()
}

// renderAvailableActions lists the commands legal in the current phase
func (m *Model) renderAvailableActions(view game.PlayerView) string {
	var actions []string
	switch {
	case view.GameOver:
		actions = append(actions, ErrorStyle.Render("[quit]"))
	case view.Phase == game.RoundOver:
		actions = append(actions, SuccessStyle.Render("[next]"))
	case view.Phase == game.AwaitingDraw:
		actions = append(actions, SuccessStyle.Render("[draw]"))
		if view.DiscardTop != nil {
			actions = append(actions, SuccessStyle.Render("[take "+view.DiscardTop.String()+"]"))
		}
		if view.DeckSize == 0 {
			actions = append(actions, WarningStyle.Render("[recycle]"))
		}
	case view.Phase == game.AwaitingDiscard:
		actions = append(actions, SuccessStyle.Render("[discard <card>]"))
		if view.CanKnock {
			actions = append(actions, WarningStyle.Render("[knock <card>]"))
		}
		if ok, _ := m.match.IsGin(); ok {
			actions = append(actions, WarningStyle.Render("[gin]"))
		}
	}
	return ActionsStyle.Render("Actions: " + strings.Join(actions, " "))
}

// AddLogEntry adds an entry to the game log and scrolls to it
func (m *Model) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// Log returns a copy of the game log
func (m *Model) Log() []string {
	return slices.Clone(m.gameLog)
}

// Status returns the last command feedback line
func (m *Model) Status() string {
	return m.status
}

func (m *Model) setStatus(style lipgloss.Style, format string, args ...any) {
	m.statusStyle = style
	m.status = fmt.Sprintf(format, args...)
}
