package apiclient

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/noteshq/notesctl/internal/apperrors"
)

// failureBody is the error shape the notes service uses: a structured
// detail field or a generic message field, either may be missing.
type failureBody struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

// failureMessage drains the response and picks the most specific message it
// can offer.
func failureMessage(res *http.Response) string {
	defer res.Body.Close()
	var body failureBody
	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err == nil && len(raw) > 0 {
		// a body that is not JSON is simply ignored
		_ = json.Unmarshal(raw, &body)
	}
	return apperrors.StatusMessage(res.StatusCode, body.Detail, body.Message)
}

func discardBody(res *http.Response) {
	io.Copy(io.Discard, io.LimitReader(res.Body, 1<<20))
	res.Body.Close()
}

func errorsIsInvalidRefresh(err error) bool {
	return errors.Is(err, apperrors.ErrInvalidRefreshToken)
}
