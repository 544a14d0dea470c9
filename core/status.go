package session

// StatusLabel is a render-ready status line: text plus a style tag the
// front-end maps to its own visual treatment.
type StatusLabel struct {
	Text  string
	Style string
}

// Style tags understood by front-ends. Unknown agent states fall back to
// StylePlain so they still render.
const (
	StyleMuted   = "muted"
	StylePending = "pending"
	StyleOK      = "ok"
	StyleWarn    = "warn"
	StyleError   = "error"
	StylePlain   = "plain"
)

// Status maps a connection state to its status line. Unknown states map to
// a safe default rather than panicking mid-render.
func (s State) Status() StatusLabel {
	switch s {
	case StateDisconnected:
		return StatusLabel{Text: "Disconnected", Style: StyleMuted}
	case StateConnecting:
		return StatusLabel{Text: "Connecting...", Style: StylePending}
	case StateConnected:
		return StatusLabel{Text: "Connected", Style: StyleOK}
	case StateReconnecting:
		return StatusLabel{Text: "Reconnecting...", Style: StyleWarn}
	}
	return StatusLabel{Text: "Unknown", Style: StyleMuted}
}

// AgentStatus maps an agent display state to its status line. The mapping
// is permissive: states the agent reports that we do not recognize render
// verbatim, just without special styling.
func AgentStatus(state string) StatusLabel {
	switch state {
	case "":
		return StatusLabel{Text: "No agent", Style: StyleMuted}
	case AgentWaiting:
		return StatusLabel{Text: "Waiting for agent...", Style: StylePending}
	case AgentNotFound:
		return StatusLabel{Text: "Agent not running", Style: StyleError}
	case AgentConnected:
		return StatusLabel{Text: "Agent connected", Style: StyleOK}
	case AgentDisconnected:
		return StatusLabel{Text: "Agent disconnected", Style: StyleMuted}
	case AgentListening:
		return StatusLabel{Text: "Agent listening", Style: StyleOK}
	case AgentThinking:
		return StatusLabel{Text: "Agent thinking...", Style: StylePending}
	case AgentSpeaking:
		return StatusLabel{Text: "Agent speaking", Style: StyleOK}
	}
	return StatusLabel{Text: "Agent " + state, Style: StylePlain}
}
