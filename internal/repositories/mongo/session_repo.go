package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/turfline/leadchat/internal/models"
	"github.com/turfline/leadchat/internal/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SessionRepository interface {
	Create(ctx context.Context, s *models.Session) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.Session, error)
	// Upsert writes the session's mutable state keyed by session_id.
	Upsert(ctx context.Context, s *models.Session) error
}

type sessionRepo struct {
	col *mongo.Collection
}

func NewSessionRepo(db *mongo.Database) SessionRepository {
	return &sessionRepo{col: db.Collection("sessions")}
}

func (r *sessionRepo) Create(ctx context.Context, s *models.Session) error {
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, s)
	return err
}

func (r *sessionRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.Session, error) {
	var s models.Session
	err := r.col.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &s, err
}

func (r *sessionRepo) Upsert(ctx context.Context, s *models.Session) error {
	s.UpdatedAt = time.Now().UTC()
	_, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": s.SessionID},
		bson.M{
			"$set": bson.M{
				"stage":          s.Stage,
				"transcript":     s.Transcript,
				"customer":       s.Customer,
				"pending_rating": s.PendingRating,
				"updated_at":     s.UpdatedAt,
			},
			"$setOnInsert": bson.M{
				"secret_hash": s.SecretHash,
				"created_at":  s.CreatedAt,
			},
		},
		options.Update().SetUpsert(true),
	)
	return err
}
