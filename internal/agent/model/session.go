package model

// DefaultUserName is what the bot calls the user until a name is captured.
const DefaultUserName = "your name"

// Session is the per-instance memory of one conversation.
type Session struct {
	UserName string
	history  []string
}

func NewSession() *Session {
	return &Session{UserName: DefaultUserName}
}

// CountRepeats counts earlier lines equal to raw. The current line is not yet
// part of the history, so a first occurrence counts 0.
func (s *Session) CountRepeats(raw string) int {
	n := 0
	for _, h := range s.history {
		if h == raw {
			n++
		}
	}
	return n
}

// Record appends raw to the history.
func (s *Session) Record(raw string) {
	s.history = append(s.history, raw)
}

// History returns a copy of every recorded line, oldest first.
func (s *Session) History() []string {
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}
