package models

// SessionEventKind distinguishes the two session-state transitions that
// observers can react to.
type SessionEventKind string

const SessionLogin SessionEventKind = "login"
const SessionLogout SessionEventKind = "logout"

func (s SessionEventKind) MarshalText() (data []byte, err error) {
	return []byte(s), nil
}

func (s *SessionEventKind) UnmarshalText(data []byte) error {
	*s = SessionEventKind(string(data))
	return nil
}

// SessionEvent announces a session-state change to observers in this process
// and, through the token repository's watch mechanism, to other processes
// sharing the same storage.
type SessionEvent struct {
	Kind SessionEventKind `json:"kind"`
}
