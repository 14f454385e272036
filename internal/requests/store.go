package requests

import (
	"context"

	"github.com/mbd888/paylink/internal/pagination"
)

// Store persists payment requests.
type Store interface {
	// Create inserts a new request.
	Create(ctx context.Context, request *Request) error

	// Get returns the request with the given internal ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Request, error)

	// MarkClaimed transitions a request from PENDING to CLAIMED. The
	// update is conditional on the current status, so of two concurrent
	// callers exactly one succeeds; the loser gets ErrAlreadyClaimed.
	MarkClaimed(ctx context.Context, id string) error

	// List returns up to limit requests, newest first, strictly older
	// than the cursor position. A nil cursor starts from the newest.
	List(ctx context.Context, limit int, cursor *pagination.Cursor) ([]*Request, error)
}
