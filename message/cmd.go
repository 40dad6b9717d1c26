package message

import tea "charm.land/bubbletea/v2"

// ErrorCmd returns a command delivering err
func ErrorCmd(err error) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Err: err}
	}
}

// ChangedListener returns a grid listener forwarding changes to send, typically tea.Program.Send
func ChangedListener(send func(msg tea.Msg)) func() {
	return func() {
		send(ChangedMsg{})
	}
}
