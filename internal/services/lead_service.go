package services

import (
	"context"
	"errors"

	"github.com/turfline/leadchat/internal/models"
	pgrepo "github.com/turfline/leadchat/internal/repositories/postgres"
	"github.com/turfline/leadchat/internal/utils"
)

// LeadService is the admin read path over finalized leads.
type LeadService interface {
	List(ctx context.Context, minScore, limit, offset int) ([]models.LeadRecord, error)
	GetBySessionID(ctx context.Context, sessionID string) (*models.LeadRecord, error)
	// Conversation returns the session's logged free-form exchanges,
	// newest first.
	Conversation(ctx context.Context, sessionID string, limit int) ([]models.ConversationLog, error)
}

type leadService struct {
	leads  pgrepo.LeadRepo
	convos pgrepo.ConversationRepo
}

func NewLeadService(leads pgrepo.LeadRepo, convos pgrepo.ConversationRepo) LeadService {
	return &leadService{leads: leads, convos: convos}
}

func (s *leadService) List(ctx context.Context, minScore, limit, offset int) ([]models.LeadRecord, error) {
	const op = "LeadService.List"

	rows, err := s.leads.List(ctx, minScore, limit, offset)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list leads", err)
	}
	return rows, nil
}

func (s *leadService) GetBySessionID(ctx context.Context, sessionID string) (*models.LeadRecord, error) {
	const op = "LeadService.GetBySessionID"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}

	row, err := s.leads.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "lead not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get lead", err)
	}
	return row, nil
}

func (s *leadService) Conversation(ctx context.Context, sessionID string, limit int) ([]models.ConversationLog, error) {
	const op = "LeadService.Conversation"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}

	rows, err := s.convos.ListBySession(ctx, sessionID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list conversation", err)
	}
	return rows, nil
}
