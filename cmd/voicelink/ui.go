package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	session "github.com/voxlink-dev/voicelink/core"
	"github.com/voxlink-dev/voicelink/core/events"
	"github.com/voxlink-dev/voicelink/core/token"
)

type focusTarget int

const (
	focusChat focusTarget = iota
	focusPrompt
)

// uiModel is the bubbletea model. It renders off session snapshots and
// re-renders whenever a session event arrives on the events channel, so it
// never holds conversation state of its own.
type uiModel struct {
	sess        *session.Session
	tokens      *token.Client
	connectOpts []session.ConnectOption

	events chan events.Event

	transcript viewport.Model
	chatInput  textinput.Model
	promptEdit textarea.Model
	focus      focusTarget

	styles uiStyles
	width  int
	height int

	notice   string
	quitting bool
}

type uiStyles struct {
	statusBar lipgloss.Style
	byTag     map[string]lipgloss.Style
	userLabel lipgloss.Style
	agentName lipgloss.Style
	interim   lipgloss.Style
	notice    lipgloss.Style
}

func newUIStyles() uiStyles {
	return uiStyles{
		statusBar: lipgloss.NewStyle().Padding(0, 1),
		byTag: map[string]lipgloss.Style{
			session.StyleMuted:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
			session.StylePending: lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
			session.StyleOK:      lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
			session.StyleWarn:    lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
			session.StyleError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
			session.StylePlain:   lipgloss.NewStyle(),
		},
		userLabel: lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		agentName: lipgloss.NewStyle().Foreground(lipgloss.Color("135")).Bold(true),
		interim:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true),
		notice:    lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
	}
}

func (s uiStyles) tagged(label session.StatusLabel) string {
	style, ok := s.byTag[label.Style]
	if !ok {
		style = s.byTag[session.StylePlain]
	}
	return style.Render(label.Text)
}

func newUIModel(sess *session.Session, tokens *token.Client, connectOpts ...session.ConnectOption) uiModel {
	chat := textinput.New()
	chat.Placeholder = "Type a message, or /model <id>, /voice <id>"
	chat.Focus()

	prompt := textarea.New()
	prompt.Placeholder = "System prompt"
	prompt.ShowLineNumbers = false

	return uiModel{
		sess:        sess,
		tokens:      tokens,
		connectOpts: connectOpts,
		events:      make(chan events.Event, 64),
		transcript:  viewport.New(0, 0),
		chatInput:   chat,
		promptEdit:  prompt,
		styles:      newUIStyles(),
	}
}

// sessionEventMsg wraps session events for bubbletea.
type sessionEventMsg struct{ event events.Event }

// connectDoneMsg reports the outcome of the initial connect.
type connectDoneMsg struct{ err error }

// noticeMsg is a one-line transient message for the status area.
type noticeMsg string

func (m uiModel) Init() tea.Cmd {
	return tea.Batch(m.connect(), m.listenSession(), textinput.Blink)
}

func (m uiModel) connect() tea.Cmd {
	return func() tea.Msg {
		opts := append([]session.ConnectOption{
			session.WithEventCallback(func(event events.Event) {
				select {
				case m.events <- event:
				default:
				}
			}),
		}, m.connectOpts...)
		err := m.sess.Connect(context.Background(), opts...)
		return connectDoneMsg{err: err}
	}
}

func (m uiModel) listenSession() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-m.events
		if !ok {
			return nil
		}
		return sessionEventMsg{event: event}
	}
}

func (m uiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.quitting = true
			m.sess.Disconnect()
			return m, tea.Quit
		case tea.KeyTab:
			m = m.toggleFocus()
			return m, nil
		case tea.KeyCtrlL:
			return m, m.toggleListening()
		case tea.KeyCtrlX:
			m.sess.InterruptAgent()
			return m, nil
		case tea.KeyEnter:
			if m.focus == focusChat {
				return m, m.submitChat()
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m = m.layout()
		m = m.renderTranscript()
		return m, nil

	case connectDoneMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("connect failed: %v", msg.err)
		} else {
			m.promptEdit.SetValue(m.sess.Prompt())
		}
		return m, nil

	case sessionEventMsg:
		m = m.renderTranscript()
		return m, m.listenSession()

	case noticeMsg:
		m.notice = string(msg)
		return m, nil
	}

	switch m.focus {
	case focusChat:
		var cmd tea.Cmd
		m.chatInput, cmd = m.chatInput.Update(msg)
		cmds = append(cmds, cmd)
	case focusPrompt:
		before := m.promptEdit.Value()
		var cmd tea.Cmd
		m.promptEdit, cmd = m.promptEdit.Update(msg)
		cmds = append(cmds, cmd)
		if after := m.promptEdit.Value(); after != before {
			m.sess.SetPrompt(after)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m uiModel) toggleFocus() uiModel {
	if m.focus == focusChat {
		m.focus = focusPrompt
		m.chatInput.Blur()
		m.promptEdit.Focus()
	} else {
		m.focus = focusChat
		m.promptEdit.Blur()
		m.chatInput.Focus()
	}
	return m
}

func (m uiModel) toggleListening() tea.Cmd {
	if m.sess.IsListening() {
		m.sess.StopListening()
		return nil
	}
	return func() tea.Msg {
		if err := m.sess.StartListening(); err != nil {
			return noticeMsg(fmt.Sprintf("listening failed: %v", err))
		}
		return nil
	}
}

func (m uiModel) submitChat() tea.Cmd {
	text := strings.TrimSpace(m.chatInput.Value())
	m.chatInput.Reset()
	if text == "" {
		return nil
	}
	if strings.HasPrefix(text, "/") {
		return m.runCommand(text)
	}
	m.sess.SendUserText(text)
	return nil
}

// runCommand handles slash commands. /model and /voice talk to the token
// server directly; the agent picks the change up out of band.
func (m uiModel) runCommand(text string) tea.Cmd {
	fields := strings.Fields(text)
	name, args := fields[0], fields[1:]

	switch name {
	case "/model":
		return m.switchCommand(args, "model", m.tokens.SetModel, func(cfg token.AppConfig) ([]string, string) {
			ids := make([]string, 0, len(cfg.Models))
			for _, model := range cfg.Models {
				ids = append(ids, model.ID)
			}
			return ids, cfg.ActiveModel
		})
	case "/voice":
		return m.switchCommand(args, "voice", m.tokens.SetVoice, func(cfg token.AppConfig) ([]string, string) {
			ids := make([]string, 0, len(cfg.Voices))
			for _, voice := range cfg.Voices {
				ids = append(ids, voice.ID)
			}
			return ids, cfg.ActiveVoice
		})
	default:
		return func() tea.Msg {
			return noticeMsg(fmt.Sprintf("unknown command %s", name))
		}
	}
}

func (m uiModel) switchCommand(args []string, kind string, apply func(context.Context, string) error, pick func(token.AppConfig) ([]string, string)) tea.Cmd {
	return func() tea.Msg {
		if len(args) == 0 {
			cfg, err := m.tokens.Config(context.Background())
			if err != nil {
				return noticeMsg(fmt.Sprintf("failed to list %ss: %v", kind, err))
			}
			ids, active := pick(cfg)
			for i, id := range ids {
				if id == active {
					ids[i] = "*" + id
				}
			}
			return noticeMsg(fmt.Sprintf("%ss: %s", kind, strings.Join(ids, " ")))
		}
		if err := apply(context.Background(), args[0]); err != nil {
			return noticeMsg(fmt.Sprintf("failed to set %s: %v", kind, err))
		}
		return noticeMsg(fmt.Sprintf("%s set to %s", kind, args[0]))
	}
}

func (m uiModel) layout() uiModel {
	promptHeight := 3
	inputHeight := 1
	statusHeight := 1
	m.transcript.Width = m.width
	m.transcript.Height = max(m.height-promptHeight-inputHeight-statusHeight-2, 3)
	m.chatInput.Width = m.width - 4
	m.promptEdit.SetWidth(m.width - 2)
	m.promptEdit.SetHeight(promptHeight)
	return m
}

func (m uiModel) renderTranscript() uiModel {
	view := m.sess.Transcript().Snapshot()

	width := m.transcript.Width
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	for _, entry := range view.Entries {
		label := m.styles.agentName.Render("agent")
		if entry.Role == session.RoleUser {
			label = m.styles.userLabel.Render("you")
		}
		b.WriteString(label)
		b.WriteString(" ")
		b.WriteString(wordwrap.String(entry.Text, width-6))
		b.WriteString("\n")
	}
	if view.PendingReply {
		b.WriteString(m.styles.agentName.Render("agent"))
		b.WriteString(" ")
		b.WriteString(m.styles.interim.Render("…"))
		b.WriteString("\n")
	}
	if view.Interim != "" {
		b.WriteString(m.styles.userLabel.Render("you"))
		b.WriteString(" ")
		b.WriteString(m.styles.interim.Render(wordwrap.String(view.Interim, width-6)))
		b.WriteString("\n")
	}

	atBottom := m.transcript.AtBottom()
	m.transcript.SetContent(b.String())
	if atBottom {
		m.transcript.GotoBottom()
	}
	return m
}

func (m uiModel) statusLine() string {
	parts := []string{
		m.styles.tagged(m.sess.State().Status()),
		m.styles.tagged(session.AgentStatus(m.sess.AgentState())),
	}

	if m.sess.IsListening() {
		parts = append(parts, m.styles.byTag[session.StyleOK].Render("listening"))
	}
	if status := m.sess.PromptStatus(); status != session.PromptStatusIdle {
		tag := session.StyleOK
		if status == session.PromptStatusFailed {
			tag = session.StyleError
		}
		parts = append(parts, m.styles.byTag[tag].Render("prompt "+status))
	}
	if m.notice != "" {
		parts = append(parts, m.styles.notice.Render(m.notice))
	}

	return m.styles.statusBar.Render(strings.Join(parts, "  "))
}

func (m uiModel) View() string {
	if m.quitting {
		return ""
	}

	promptTitle := "prompt (tab to edit)"
	if m.focus == focusPrompt {
		promptTitle = "prompt (tab to chat)"
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.transcript.View(),
		m.styles.byTag[session.StyleMuted].Render(promptTitle),
		m.promptEdit.View(),
		"> "+m.chatInput.View(),
		m.statusLine(),
	)
}
