package models

import "fmt"

// TokenPair holds the credentials for an authenticated session. An empty
// Access value means the session is logged out regardless of whether a
// refresh token is still around.
type TokenPair struct {
	Access  string
	Refresh string
}

func (t TokenPair) IsAuthenticated() bool {
	return t.Access != ""
}

// String implements the Stringer interface for printing the pair in logs
func (t TokenPair) String() string {
	return fmt.Sprintf("TokenPair<Access: redacted(set=%v), Refresh: redacted(set=%v)>", t.Access != "", t.Refresh != "")
}
