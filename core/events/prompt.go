package events

const (
	// KindPromptPushStateChanged identifies instruction push status changes.
	KindPromptPushStateChanged Kind = "prompt.push_state_changed"
)

// PromptPushStateChanged carries the status of the most recent instruction
// push ("idle", "saved", "failed").
type PromptPushStateChanged struct {
	Base
	Status string
}

// NewPromptPushStateChanged creates an instruction push status event.
func NewPromptPushStateChanged(status string) PromptPushStateChanged {
	return PromptPushStateChanged{Base: NewBase(KindPromptPushStateChanged), Status: status}
}
