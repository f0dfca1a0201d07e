package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/narralabs/narramancer/pkg/chat"
	"github.com/narralabs/narramancer/pkg/state"
)

const (
	AgentName       = "Narramancer"
	PlaceHolderText = "What do you do?"
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config    *ConsoleConfig
	client    *http.Client
	sessionID string

	history  []chat.ChatMessage
	pending  *chat.PendingRoll
	sheet    *chat.SheetSnapshot
	rollEcho string

	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool
	statusLine   string

	showQuitModal bool
	progressTick  int
}

type chatResponseMsg struct {
	response *chat.ChatResponse
	err      error
}

type sessionMsg struct {
	session *state.Session
	err     error
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
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
			Foreground(lipgloss.Color("135")). // violet
			Bold(true)

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	diceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")). // amber
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Bold(true).
			Align(lipgloss.Center)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, sessionID string) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:       cfg,
		client:       client,
		sessionID:    sessionID,
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: metaVp,
		statusLine:   "Introduce your hero to begin: a name, a calling, a bit of backstory.",
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return textarea.Blink
}

// writeChatContent rebuilds the chat panel from the local transcript
// for the current viewport width.
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6

	var content strings.Builder
	content.WriteString(titleStyle.Render("NARRAMANCER") + "\n\n")
	content.WriteString("Describe what your hero does. When the dice come out,\n")
	content.WriteString("press Ctrl+R to throw them.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", max(chatWidth-6, 1))) + "\n\n")

	for _, msg := range m.history {
		switch msg.Role {
		case chat.ChatRoleNarrator:
			prefix := narratorStyle.Render(AgentName + ": ")
			content.WriteString(prefix + wordwrap.String(msg.Content, max(chatWidth-len(AgentName)-2, 10)) + "\n\n")
		case chat.ChatRolePlayer:
			if strings.HasPrefix(msg.Content, "🎲") {
				content.WriteString(diceStyle.Render(msg.Content) + "\n\n")
				continue
			}
			content.WriteString(userStyle.Render("You: ") + wordwrap.String(msg.Content, max(chatWidth-6, 10)) + "\n\n")
		}
	}

	if m.statusLine != "" {
		content.WriteString(promptStyle.Render(m.statusLine) + "\n\n")
	}
	if m.err != nil {
		content.WriteString(errorStyle.Render("Error: "+m.err.Error()) + "\n\n")
	}
	if m.loading {
		content.WriteString(m.renderProgressBar())
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m *ConsoleUI) writeMetadata() {
	var content strings.Builder
	content.WriteString(titleStyle.Render("ADVENTURE") + "\n\n")

	content.WriteString("Session:\n")
	id := m.sessionID
	if len(id) > 8 {
		id = id[:8] + "..."
	}
	content.WriteString(id + "\n\n")

	if m.sheet != nil {
		content.WriteString("Character:\n")
		content.WriteString(fmt.Sprintf("HP: %d / %d\n", m.sheet.HP, m.sheet.MaxHP))
		content.WriteString(fmt.Sprintf("Gold: %d\n\n", m.sheet.Gold))
	}

	if m.pending != nil {
		content.WriteString(diceStyle.Render(fmt.Sprintf("🎲 Roll %dd%d pending!", m.pending.Count, m.pending.Sides)) + "\n")
		content.WriteString("Press Ctrl+R to roll.\n\n")
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• Ctrl+R: Roll dice\n")
	content.WriteString("• /new: New adventure\n")
	content.WriteString("• /copy: Copy session id\n")
	content.WriteString("• /help: Help\n")
	content.WriteString("• Ctrl+C: Quit\n")

	m.metaViewport.SetContent(content.String())
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		chatWidth := int(float64(m.width)*0.75) - 4
		metaWidth := m.width - chatWidth - 6

		m.chatViewport.Width = chatWidth - 2
		m.chatViewport.Height = m.height - 7
		m.metaViewport.Width = metaWidth - 2
		m.metaViewport.Height = m.height - 4
		m.textarea.SetWidth(chatWidth - 4)

		m.ready = true
		m.writeChatContent()
		m.writeMetadata()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyCtrlR:
			if m.loading {
				return m, nil
			}
			if m.pending == nil {
				m.statusLine = "No roll is pending."
				m.writeChatContent()
				return m, nil
			}
			m.loading = true
			m.progressTick = 0
			m.statusLine = ""
			m.err = nil
			m.writeChatContent()
			return m, tea.Batch(m.triggerRoll(), progressTick())
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			m.textarea.Reset()
			m.loading = true
			m.progressTick = 0
			m.statusLine = ""
			m.err = nil

			m.history = append(m.history, chat.ChatMessage{
				Role:    chat.ChatRolePlayer,
				Content: input,
			})
			m.writeChatContent()

			return m, tea.Batch(m.sendChatMessage(input), progressTick())
		}

	case chatResponseMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			// Drop the optimistic player line; the turn was not accepted.
			if n := len(m.history); n > 0 && m.history[n-1].Role == chat.ChatRolePlayer {
				m.history = m.history[:n-1]
			}
		} else {
			m.applyResponse(msg.response)
		}
		m.writeChatContent()
		m.writeMetadata()
		return m, nil

	case sessionMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else if msg.session != nil {
			m.history = nil
			m.pending = nil
			m.sheet = nil
			m.statusLine = "A new adventure begins. Describe your hero to get started."
		}
		m.writeChatContent()
		m.writeMetadata()
		return m, nil

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.writeChatContent()
			return m, progressTick()
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

// applyResponse folds a server reply into the local transcript.
func (m *ConsoleUI) applyResponse(resp *chat.ChatResponse) {
	if resp.RollEcho != "" {
		m.history = append(m.history, chat.ChatMessage{
			Role:    chat.ChatRolePlayer,
			Content: resp.RollEcho,
		})
	}
	if resp.Message != "" {
		m.history = append(m.history, chat.ChatMessage{
			Role:    chat.ChatRoleNarrator,
			Content: resp.Message,
		})
	}
	if resp.Error != "" {
		m.statusLine = "The narrator stumbled; try again."
	}
	m.pending = resp.PendingRoll
	if resp.Sheet != nil {
		m.sheet = resp.Sheet
	}
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimSpace(input))
	m.textarea.Reset()

	switch cmd {
	case "/help":
		m.statusLine = "Type your actions and press Enter. Ctrl+R throws pending dice. /new restarts."
	case "/copy":
		if err := clipboard.WriteAll(m.sessionID); err != nil {
			m.statusLine = "Could not copy session id."
		} else {
			m.statusLine = "Session id copied to clipboard."
		}
	case "/new":
		m.loading = true
		m.progressTick = 0
		m.err = nil
		m.writeChatContent()
		return m, tea.Batch(m.restartSession(), progressTick())
	default:
		m.statusLine = "Unknown command. Try /help."
	}

	m.writeChatContent()
	return m, nil
}

func (m ConsoleUI) sendChatMessage(message string) tea.Cmd {
	return func() tea.Msg {
		resp, err := sendChat(m.client, m.config.APIBaseURL, m.sessionID, message)
		return chatResponseMsg{resp, err}
	}
}

func (m ConsoleUI) triggerRoll() tea.Cmd {
	return func() tea.Msg {
		resp, err := sendRoll(m.client, m.config.APIBaseURL, m.sessionID)
		return chatResponseMsg{resp, err}
	}
}

func (m ConsoleUI) restartSession() tea.Cmd {
	return func() tea.Msg {
		s, err := newSession(m.client, m.config.APIBaseURL, m.sessionID)
		return sessionMsg{s, err}
	}
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.textarea.Focus()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Leave the Adventure?"))
	content.WriteString("\n\n")
	content.WriteString("Your session is saved; you can return with SESSION_ID set.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to keep playing"))

	modal := modalStyle.Width(54).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", max(chatWidth-4, 1))),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar animates a bar while the narrator is thinking.
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable <= 0 {
		usable = 30
	}
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		switch {
		case i < filled:
			bar.WriteString("█")
		case i == filled && frame%4 < 2:
			bar.WriteString("▓")
		default:
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
