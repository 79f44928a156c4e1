package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/turfline/leadchat/internal/models"
	"github.com/turfline/leadchat/internal/qualify"
	pgrepo "github.com/turfline/leadchat/internal/repositories/postgres"
	"github.com/turfline/leadchat/internal/storage"
	"github.com/turfline/leadchat/internal/utils"
)

// StepResult is returned for every processed user action.
type StepResult struct {
	Replies   []string         `json:"replies"`
	Stage     models.Stage     `json:"stage"`
	Score     models.LeadScore `json:"lead_score"`
	Rejected  bool             `json:"rejected,omitempty"`
	Completed bool             `json:"completed,omitempty"`
}

// QualificationService drives the guided flow over a session. All backend
// writes behind a step are fire-and-forget: their SideEffects are logged and
// the user-visible flow proceeds as if they succeeded.
type QualificationService interface {
	Step(ctx context.Context, sess *models.Session, in qualify.Input) *StepResult
	// AdvanceToFeedback moves a completed session into the feedback stage.
	// Called by the transport after the post-completion delay.
	AdvanceToFeedback(ctx context.Context, sess *models.Session) *StepResult
	// SubmitFeedback is the one-shot REST path: rating plus optional text.
	SubmitFeedback(ctx context.Context, sess *models.Session, rating int, text string) (*StepResult, error)
}

type qualificationService struct {
	sessions SessionService
	leads    pgrepo.LeadRepo
	feedback pgrepo.FeedbackRepo
	alerts   AlertService
	archiver storage.Archiver // optional
	log      *logrus.Logger
}

func NewQualificationService(
	sessions SessionService,
	leads pgrepo.LeadRepo,
	feedback pgrepo.FeedbackRepo,
	alerts AlertService,
	archiver storage.Archiver,
	log *logrus.Logger,
) QualificationService {
	return &qualificationService{
		sessions: sessions,
		leads:    leads,
		feedback: feedback,
		alerts:   alerts,
		archiver: archiver,
		log:      log,
	}
}

func (s *qualificationService) Step(ctx context.Context, sess *models.Session, in qualify.Input) *StepResult {
	res := qualify.Advance(sess, in)
	score := qualify.Score(sess.Customer, sess.Transcript)

	out := &StepResult{
		Replies:   res.Replies,
		Stage:     sess.Stage,
		Score:     score,
		Rejected:  res.Rejected,
		Completed: res.Completed,
	}
	if res.Rejected {
		return out
	}

	var effects []SideEffect
	if res.Mutated {
		effects = append(effects, SideEffect{Op: "session.save", Err: s.sessions.Save(ctx, sess)})
		effects = append(effects, s.alerts.MaybeAlert(ctx, sess, score))
	}
	if res.Completed {
		effects = append(effects, s.flushLead(ctx, sess, score))
		effects = append(effects, s.archive(ctx, sess))
	}
	if res.Feedback != nil {
		effects = append(effects, s.insertFeedback(ctx, sess.SessionID, res.Feedback))
	}

	logSideEffects(s.log, sess.SessionID, effects...)
	return out
}

func (s *qualificationService) AdvanceToFeedback(ctx context.Context, sess *models.Session) *StepResult {
	if sess.Stage != models.StageComplete {
		return &StepResult{Stage: sess.Stage, Score: qualify.Score(sess.Customer, sess.Transcript), Rejected: true}
	}

	prompt := qualify.FeedbackPrompt()
	sess.AppendAssistant(prompt)
	sess.Stage = models.StageFeedback

	logSideEffects(s.log, sess.SessionID,
		SideEffect{Op: "session.save", Err: s.sessions.Save(ctx, sess)})

	return &StepResult{
		Replies: []string{prompt},
		Stage:   sess.Stage,
		Score:   qualify.Score(sess.Customer, sess.Transcript),
	}
}

func (s *qualificationService) SubmitFeedback(ctx context.Context, sess *models.Session, rating int, text string) (*StepResult, error) {
	const op = "QualificationService.SubmitFeedback"

	if rating < 1 || rating > 5 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "rating must be between 1 and 5", nil)
	}
	// Only a finished flow takes feedback; earlier stages keep their
	// strictly-forward transitions.
	if sess.Stage != models.StageComplete && sess.Stage != models.StageFeedback {
		return nil, utils.E(utils.CodeInvalidArgument, op, "feedback is only accepted once the flow is complete", nil)
	}

	sess.Stage = models.StageFeedbackSubmitted
	sess.PendingRating = 0

	logSideEffects(s.log, sess.SessionID,
		s.insertFeedback(ctx, sess.SessionID, &qualify.FeedbackSubmission{Rating: rating, Text: text}),
		SideEffect{Op: "session.save", Err: s.sessions.Save(ctx, sess)},
	)

	return &StepResult{
		Stage: sess.Stage,
		Score: qualify.Score(sess.Customer, sess.Transcript),
	}, nil
}

// flushLead snapshots the finalized record into Postgres.
func (s *qualificationService) flushLead(ctx context.Context, sess *models.Session, score models.LeadScore) SideEffect {
	const op = "lead.flush"

	breakdown, err := json.Marshal(score)
	if err != nil {
		return SideEffect{Op: op, Err: err}
	}
	transcript, err := json.Marshal(sess.Transcript)
	if err != nil {
		return SideEffect{Op: op, Err: err}
	}

	lead := &models.LeadRecord{
		ID:               uuid.NewString(),
		SessionID:        sess.SessionID,
		Name:             sess.Customer.Name,
		Email:            sess.Customer.Email,
		Phone:            sess.Customer.Phone,
		Address:          sess.Customer.Address,
		ServiceInterest:  sess.Customer.ServiceInterest,
		PropertyType:     sess.Customer.PropertyType,
		Timeline:         sess.Customer.Timeline,
		PreferredContact: sess.Customer.PreferredContact,
		ScoreTotal:       score.Total,
		ScoreBreakdown:   datatypes.JSON(breakdown),
		Transcript:       datatypes.JSON(transcript),
		CreatedAt:        time.Now().UTC(),
	}
	return SideEffect{Op: op, Err: s.leads.Upsert(ctx, lead)}
}

func (s *qualificationService) archive(ctx context.Context, sess *models.Session) SideEffect {
	const op = "transcript.archive"

	if s.archiver == nil {
		return SideEffect{Op: op}
	}
	// archive a copy without the credential hash
	cp := *sess
	cp.SecretHash = ""
	_, err := s.archiver.ArchiveSession(ctx, &cp)
	return SideEffect{Op: op, Err: err}
}

func (s *qualificationService) insertFeedback(ctx context.Context, sessionID string, fb *qualify.FeedbackSubmission) SideEffect {
	const op = "feedback.insert"

	row := &models.Feedback{
		ID:           uuid.NewString(),
		SessionID:    sessionID,
		Rating:       fb.Rating,
		FeedbackText: fb.Text,
		CreatedAt:    time.Now().UTC(),
	}
	return SideEffect{Op: op, Err: s.feedback.Insert(ctx, row)}
}
