package storage

import (
	"context"

	"github.com/turfline/leadchat/internal/models"
)

// Archiver stores a completed session's transcript for later human review.
type Archiver interface {
	ArchiveSession(ctx context.Context, s *models.Session) (storedPath string, err error)
}
