package chyrp

import (
	"errors"
	"fmt"
)

// ErrUnauthorized marks responses that mean "not signed in" rather than
// a hard failure. Callers branch on it with errors.Is; the session
// probe absorbs it into the anonymous state.
var ErrUnauthorized = errors.New("unauthorized")

// ErrTooManyAttachments rejects post drafts exceeding the server's
// attachment cap before any bytes go on the wire.
var ErrTooManyAttachments = fmt.Errorf("a post carries at most %d attachments", maxAttachments)

// StatusError reports a non-auth HTTP failure with the response body
// preserved for display.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Body)
}

// IsUnauthorized reports whether err represents a 401/403 anywhere in
// its chain.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
