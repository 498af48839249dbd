package search

import (
	"context"

	"github.com/arijitchhatui/swiftsend-service/internal/domain"
)

// ProfileIndex is the full-text search capability behind
// searchProfiles. Indexing is best-effort: profile writes call Index
// after the document store write and log failures without failing the
// request.
type ProfileIndex interface {
	Index(ctx context.Context, profile *domain.UserProfile) error
	Search(ctx context.Context, query string, limit int) ([]domain.UserProfile, error)
}
