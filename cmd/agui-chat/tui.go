package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ag-ui/chat-client/pkg/conversation"
	"github.com/ag-ui/chat-client/pkg/core"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	chromeHeight  = 6 // header, input box and footer
)

// chatClient is the part of *client.Client the terminal UI drives.
type chatClient interface {
	Submit(text string) error
	Reset()
}

type stateMsg conversation.State

type updatesClosedMsg struct{}

// noticeMsg shows a one-line message in the footer.
type noticeMsg string

func waitForState(updates <-chan conversation.State) tea.Cmd {
	return func() tea.Msg {
		state, ok := <-updates
		if !ok {
			return updatesClosedMsg{}
		}
		return stateMsg(state)
	}
}

type model struct {
	client   chatClient
	updates  <-chan conversation.State
	endpoint string

	state    conversation.State
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	notice   string
	width    int
	height   int
}

func newModel(c chatClient, updates <-chan conversation.State, endpoint string) model {
	in := textinput.New()
	in.Placeholder = "Type a message... Enter to send, Ctrl+R to reset, Ctrl+C to exit"
	in.CharLimit = 4000
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = dimStyle

	m := model{
		client:   c,
		updates:  updates,
		endpoint: endpoint,
		input:    in,
		viewport: viewport.New(defaultWidth, defaultHeight-chromeHeight),
		spinner:  sp,
		width:    defaultWidth,
		height:   defaultHeight,
	}
	m.input.Width = defaultWidth - 4
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitForState(m.updates))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(1, msg.Height-chromeHeight)
		m.input.Width = max(10, msg.Width-4)
		m.refresh()
		return m, nil

	case stateMsg:
		m.state = conversation.State(msg)
		if m.state.Status.Connected && m.notice == core.ErrNotConnected.Error() {
			m.notice = ""
		}
		m.refresh()
		return m, waitForState(m.updates)

	case updatesClosedMsg:
		return m, tea.Quit

	case noticeMsg:
		m.notice = string(msg)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlR:
			m.client.Reset()
			m.notice = "conversation cleared"
			return m, nil
		case tea.KeyEnter:
			if err := m.client.Submit(m.input.Value()); err != nil {
				m.notice = describeSubmitError(err)
				return m, nil
			}
			m.notice = ""
			m.input.Reset()
			return m, nil
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) refresh() {
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(renderMessages(m.state.Messages, m.viewport.Width))
	if atBottom {
		m.viewport.GotoBottom()
	}
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(m.header())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(inputBorderStyle.Width(max(10, m.width-2)).Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(m.footer())

	return b.String()
}

func (m model) header() string {
	badge := connectedStyle.Render("connected")
	if !m.state.Status.Connected {
		badge = disconnectedStyle.Render("disconnected")
	}

	title := titleStyle.Render("AG-UI chat")
	endpoint := dimStyle.Render(m.endpoint)
	return lipgloss.JoinHorizontal(lipgloss.Center, title, badge, " ", endpoint)
}

func (m model) footer() string {
	switch {
	case m.notice != "":
		return errorStyle.Render(m.notice)
	case !m.state.Status.Connected && m.state.Status.LastError != "":
		return errorStyle.Render("reconnecting: " + m.state.Status.LastError)
	case m.state.IsProcessing:
		status := "agent is working"
		if m.state.CurrentStep != "" {
			status += " (" + m.state.CurrentStep + ")"
		}
		return m.spinner.View() + dimStyle.Render(status)
	default:
		return dimStyle.Render(fmt.Sprintf("%d messages", len(m.state.Messages)))
	}
}

// renderMessages lays out the conversation for a terminal of the given width.
func renderMessages(messages []conversation.Message, width int) string {
	if len(messages) == 0 {
		return dimStyle.Render("No messages yet.")
	}

	body := contentStyle.Width(max(10, width-2))

	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(roleLabel(msg))
		b.WriteString(dimStyle.Render(" " + msg.Timestamp.Format("15:04:05")))
		b.WriteString("\n")

		content := msg.Content
		if msg.IsStreaming {
			content += "▍"
		}
		b.WriteString(body.Render(content))
		b.WriteString("\n")
	}
	return b.String()
}

func roleLabel(msg conversation.Message) string {
	switch msg.Role {
	case conversation.RoleUser:
		return userRoleStyle.Render("You")
	case conversation.RoleTool:
		label := "Tool"
		if msg.ToolName != "" {
			label += " · " + msg.ToolName
		}
		return toolRoleStyle.Render(label)
	default:
		return assistantRoleStyle.Render("Agent")
	}
}

func describeSubmitError(err error) string {
	switch {
	case errors.Is(err, core.ErrEmptyInput):
		return "nothing to send"
	case errors.Is(err, core.ErrNotConnected):
		return core.ErrNotConnected.Error()
	case errors.Is(err, core.ErrRunInProgress):
		return "wait for the agent to finish"
	case errors.Is(err, core.ErrSendQueueFull):
		return "too many messages queued, try again"
	default:
		return err.Error()
	}
}
