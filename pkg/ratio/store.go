package ratio

import (
	"context"
	"errors"

	"github.com/dtnitsch/localfeed/models"
)

// ErrNotFound is returned by a Store that holds no preferences for a user.
var ErrNotFound = errors.New("preferences not found")

// ErrRemoteSync is returned by Service writes that reached the local store but
// failed on the remote one. The returned preferences are still valid.
var ErrRemoteSync = errors.New("failed to save remote preferences")

// Store reads and writes ratio preferences. Writes are upserts and the last
// write wins.
type Store interface {
	Load(ctx context.Context, userID string) (models.RatioPreferences, error)
	Save(ctx context.Context, prefs models.RatioPreferences) error
}
