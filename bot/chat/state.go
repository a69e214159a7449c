package chat

// DialogInstance is one frame on a conversation's dialog stack: the dialog
// unit that owns it plus whatever continuation data it needs to resume.
// Frames round-trip through JSON between turns, so continuation state must
// stick to JSON-representable values.
type DialogInstance struct {
	ID    DialogID       `json:"id"`
	State map[string]any `json:"state"`
}

// stateString reads a string value from frame continuation state.
func stateString(state map[string]any, key string) string {
	if v, ok := state[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
