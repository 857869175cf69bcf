package sessions

import "github.com/noteshq/notesctl/internal/models"

// SessionTokenRepository is the storage surface the session store needs.
type SessionTokenRepository interface {
	models.TokenReader
	models.TokenWriter
	models.TokenRemover
	models.TokenNotifier
	models.TokenWatcher
}
