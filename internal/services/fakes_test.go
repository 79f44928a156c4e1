package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/turfline/leadchat/internal/models"
	"github.com/turfline/leadchat/internal/providers/llm"
	"github.com/turfline/leadchat/internal/utils"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(logrusDiscard{})
	return l
}

type logrusDiscard struct{}

func (logrusDiscard) Write(p []byte) (int, error) { return len(p), nil }

// in-memory SessionRepository
type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
	failUp   error
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]*models.Session{}}
}

func (r *fakeSessionRepo) Create(_ context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.sessions[s.SessionID] = &cp
	return nil
}

func (r *fakeSessionRepo) GetBySessionID(_ context.Context, sessionID string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSessionRepo) Upsert(_ context.Context, s *models.Session) error {
	if r.failUp != nil {
		return r.failUp
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.sessions[s.SessionID] = &cp
	return nil
}

// no-op cache
type nopCache struct{}

func (nopCache) GetJSON(context.Context, string, any) (bool, error)        { return false, nil }
func (nopCache) SetJSON(context.Context, string, any, time.Duration) error { return nil }
func (nopCache) Del(context.Context, ...string) error                      { return nil }

// fake SessionService used by flow/chat tests
type fakeSessions struct {
	saves   int
	failErr error
}

func (f *fakeSessions) Start(context.Context) (*models.Session, string, error) {
	return &models.Session{SessionID: uuid.NewString(), Stage: models.StageIdle}, "secret", nil
}

func (f *fakeSessions) Authorize(context.Context, string, string) (*models.Session, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeSessions) Save(context.Context, *models.Session) error {
	f.saves++
	return f.failErr
}

func (f *fakeSessions) Reset(ctx context.Context, _ string) (*models.Session, string, error) {
	return f.Start(ctx)
}

// repo fakes
type fakeLeadRepo struct {
	upserts []*models.LeadRecord
	err     error
}

func (r *fakeLeadRepo) Upsert(_ context.Context, lead *models.LeadRecord) error {
	if r.err != nil {
		return r.err
	}
	r.upserts = append(r.upserts, lead)
	return nil
}

func (r *fakeLeadRepo) GetBySessionID(_ context.Context, sessionID string) (*models.LeadRecord, error) {
	for _, l := range r.upserts {
		if l.SessionID == sessionID {
			return l, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (r *fakeLeadRepo) List(context.Context, int, int, int) ([]models.LeadRecord, error) {
	out := make([]models.LeadRecord, 0, len(r.upserts))
	for _, l := range r.upserts {
		out = append(out, *l)
	}
	return out, nil
}

type fakeFeedbackRepo struct {
	rows []*models.Feedback
	err  error
}

func (r *fakeFeedbackRepo) Insert(_ context.Context, fb *models.Feedback) error {
	if r.err != nil {
		return r.err
	}
	r.rows = append(r.rows, fb)
	return nil
}

type fakeConversationRepo struct {
	rows []*models.ConversationLog
	err  error
}

func (r *fakeConversationRepo) Insert(_ context.Context, log *models.ConversationLog) error {
	if r.err != nil {
		return r.err
	}
	r.rows = append(r.rows, log)
	return nil
}

func (r *fakeConversationRepo) ListBySession(context.Context, string, int) ([]models.ConversationLog, error) {
	out := make([]models.ConversationLog, 0, len(r.rows))
	for _, l := range r.rows {
		out = append(out, *l)
	}
	return out, nil
}

// scripted llm.Provider
type fakeProvider struct {
	Chunks   []string
	Err      error
	GotTurns []llm.Turn
}

func (f *fakeProvider) StreamReply(_ context.Context, turns []llm.Turn) (<-chan string, <-chan error) {
	f.GotTurns = turns
	out := make(chan string, len(f.Chunks))
	errs := make(chan error, 1)
	for _, c := range f.Chunks {
		out <- c
	}
	close(out)
	if f.Err != nil {
		errs <- f.Err
	}
	close(errs)
	return out, errs
}

func (f *fakeProvider) Close() error { return nil }

// alert fakes
type fakeAlerts struct {
	calls int
}

func (f *fakeAlerts) MaybeAlert(context.Context, *models.Session, models.LeadScore) SideEffect {
	f.calls++
	return SideEffect{Op: "fake.alert"}
}

type fakeArchiver struct {
	archived []string
	err      error
}

func (f *fakeArchiver) ArchiveSession(_ context.Context, s *models.Session) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.archived = append(f.archived, s.SessionID)
	return "gs://test/" + s.SessionID, nil
}
