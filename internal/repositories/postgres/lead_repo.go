package postgres

import (
	"context"
	"errors"

	"github.com/turfline/leadchat/internal/models"
	"github.com/turfline/leadchat/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LeadRepo interface {
	// Upsert writes the lead keyed by session_id; a later flush for the same
	// session overwrites the earlier snapshot (last write wins).
	Upsert(ctx context.Context, lead *models.LeadRecord) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.LeadRecord, error)
	List(ctx context.Context, minScore, limit, offset int) ([]models.LeadRecord, error)
}

type leadRepo struct {
	db *gorm.DB
}

func NewLeadRepo(db *gorm.DB) LeadRepo {
	return &leadRepo{db: db}
}

func (r *leadRepo) Upsert(ctx context.Context, lead *models.LeadRecord) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "email", "phone", "address",
				"service_interest", "property_type", "timeline", "preferred_contact",
				"score_total", "score_breakdown", "transcript",
			}),
		}).
		Create(lead).Error
}

func (r *leadRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.LeadRecord, error) {
	var row models.LeadRecord
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}

func (r *leadRepo) List(ctx context.Context, minScore, limit, offset int) ([]models.LeadRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	q := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Offset(offset)
	if minScore > 0 {
		q = q.Where("score_total >= ?", minScore)
	}

	var rows []models.LeadRecord
	err := q.Find(&rows).Error
	return rows, err
}
