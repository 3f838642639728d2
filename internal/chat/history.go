package chat

import "sync"

// Role identifies the author of a Turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one role-tagged text unit of the conversation.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// History is the ordered, append-only conversation of a session.
type History struct {
	mu    sync.RWMutex
	turns []Turn
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{}
}

// Append adds turns in order. Appended turns are never modified.
func (h *History) Append(turns ...Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append(h.turns, turns...)
}

// AppendExchange appends the user input followed by the model reply.
func (h *History) AppendExchange(input, reply string) {
	h.Append(Turn{Role: RoleUser, Text: input}, Turn{Role: RoleModel, Text: reply})
}

// Turns returns a copy of all turns in append order.
func (h *History) Turns() []Turn {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Len returns the number of turns.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.turns)
}
