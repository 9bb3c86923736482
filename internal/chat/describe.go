package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/dsablic/klio/internal/api"
	"github.com/dsablic/klio/internal/dashboard"
)

// Describe turns a backend error into the message shown to the user.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, api.ErrUnauthorized):
		return "Your Google Drive session has expired. Run `klio auth login` to reconnect."
	case errors.Is(err, api.ErrNotFound):
		return "No analysis has been run yet for this directory. Run `klio analyze <dir-id>` first."
	case errors.Is(err, dashboard.ErrStale):
		return "The analysis finished after you moved on, so its result was discarded."
	case errors.Is(err, dashboard.ErrNoSnapshot):
		return "There is no saved analysis for this directory. Run `klio analyze <dir-id>` first."
	case errors.Is(err, context.DeadlineExceeded):
		return "The backend took too long to answer. Please try again."
	case errors.Is(err, api.ErrServer), errors.Is(err, api.ErrMalformed):
		return "The backend could not complete the request. Please try again later."
	case api.StatusCode(err) >= 400:
		return fmt.Sprintf("The backend rejected the request (HTTP %d): %v", api.StatusCode(err), err)
	default:
		return "Sorry, I encountered an error: " + err.Error()
	}
}
