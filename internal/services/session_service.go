package services

import (
	"context"
	"errors"
	"time"

	"github.com/turfline/leadchat/internal/cache"
	"github.com/turfline/leadchat/internal/models"
	"github.com/turfline/leadchat/internal/qualify"
	mongorepo "github.com/turfline/leadchat/internal/repositories/mongo"
	"github.com/turfline/leadchat/internal/utils"

	"github.com/google/uuid"
)

const sessionCacheTTL = 30 * time.Minute

type SessionService interface {
	// Start mints a session with a fresh id/secret pair. The plaintext
	// secret is returned exactly once; only its hash is stored.
	Start(ctx context.Context) (*models.Session, string, error)
	// Authorize loads the session and verifies the presented secret against
	// the stored hash.
	Authorize(ctx context.Context, sessionID, secret string) (*models.Session, error)
	Save(ctx context.Context, s *models.Session) error
	// Reset abandons the old session and mints a new empty one. The old
	// record is left as-is (last write wins, no explicit close); only its
	// cache entry is evicted.
	Reset(ctx context.Context, oldSessionID string) (*models.Session, string, error)
}

type sessionService struct {
	sessions mongorepo.SessionRepository
	cache    cache.Cache
}

func NewSessionService(sessions mongorepo.SessionRepository, c cache.Cache) SessionService {
	return &sessionService{sessions: sessions, cache: c}
}

func (s *sessionService) Start(ctx context.Context) (*models.Session, string, error) {
	const op = "SessionService.Start"

	secret, err := utils.NewSessionSecret()
	if err != nil {
		return nil, "", utils.E(utils.CodeInternal, op, "failed to mint session secret", err)
	}
	hash, err := utils.HashSecret(secret)
	if err != nil {
		return nil, "", utils.E(utils.CodeInternal, op, "failed to hash session secret", err)
	}

	now := time.Now().UTC()
	sess := &models.Session{
		SessionID:  uuid.NewString(),
		SecretHash: hash,
		Stage:      models.StageIdle,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	sess.AppendAssistant(qualify.Greeting())

	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, "", utils.E(utils.CodeInternal, op, "failed to create session", err)
	}
	_ = s.cache.SetJSON(ctx, sessionCacheKey(sess.SessionID), sess, sessionCacheTTL)
	return sess, secret, nil
}

func (s *sessionService) Authorize(ctx context.Context, sessionID, secret string) (*models.Session, error) {
	const op = "SessionService.Authorize"

	if sessionID == "" || secret == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id and secret are required", nil)
	}

	sess, err := s.get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load session", err)
	}

	if utils.CheckSecret(sess.SecretHash, secret) != nil {
		return nil, utils.E(utils.CodeUnauthorized, op, "invalid session secret", nil)
	}
	return sess, nil
}

func (s *sessionService) Save(ctx context.Context, sess *models.Session) error {
	const op = "SessionService.Save"

	if err := s.sessions.Upsert(ctx, sess); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to save session", err)
	}
	_ = s.cache.SetJSON(ctx, sessionCacheKey(sess.SessionID), sess, sessionCacheTTL)
	return nil
}

func (s *sessionService) Reset(ctx context.Context, oldSessionID string) (*models.Session, string, error) {
	if oldSessionID != "" {
		_ = s.cache.Del(ctx, sessionCacheKey(oldSessionID))
	}
	return s.Start(ctx)
}

func (s *sessionService) get(ctx context.Context, sessionID string) (*models.Session, error) {
	var cached models.Session
	if hit, err := s.cache.GetJSON(ctx, sessionCacheKey(sessionID), &cached); err == nil && hit && cached.SecretHash != "" {
		return &cached, nil
	}

	sess, err := s.sessions.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	_ = s.cache.SetJSON(ctx, sessionCacheKey(sessionID), sess, sessionCacheTTL)
	return sess, nil
}

func sessionCacheKey(sessionID string) string { return "session:" + sessionID }
