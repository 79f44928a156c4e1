package postgres

import (
	"context"

	"github.com/turfline/leadchat/internal/models"
	"gorm.io/gorm"
)

// FeedbackRepo is insert-only; the core has no read path for feedback.
type FeedbackRepo interface {
	Insert(ctx context.Context, fb *models.Feedback) error
}

type feedbackRepo struct {
	db *gorm.DB
}

func NewFeedbackRepo(db *gorm.DB) FeedbackRepo {
	return &feedbackRepo{db: db}
}

func (r *feedbackRepo) Insert(ctx context.Context, fb *models.Feedback) error {
	return r.db.WithContext(ctx).Create(fb).Error
}
