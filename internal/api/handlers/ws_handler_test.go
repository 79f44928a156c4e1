package handlers

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turfline/leadchat/internal/models"
	"github.com/turfline/leadchat/internal/qualify"
	"github.com/turfline/leadchat/internal/services"
)

type stubSessions struct {
	sess *models.Session
}

func (s *stubSessions) Start(context.Context) (*models.Session, string, error) {
	return s.sess, "secret", nil
}

func (s *stubSessions) Authorize(context.Context, string, string) (*models.Session, error) {
	return s.sess, nil
}

func (s *stubSessions) Save(context.Context, *models.Session) error { return nil }

func (s *stubSessions) Reset(context.Context, string) (*models.Session, string, error) {
	return s.sess, "secret", nil
}

type stubFlow struct {
	advanced chan error // ctx.Err() seen by AdvanceToFeedback
}

func (f *stubFlow) Step(_ context.Context, sess *models.Session, _ qualify.Input) *services.StepResult {
	sess.Stage = models.StageComplete
	return &services.StepResult{
		Replies:   []string{"You're all set."},
		Stage:     models.StageComplete,
		Completed: true,
	}
}

func (f *stubFlow) AdvanceToFeedback(ctx context.Context, sess *models.Session) *services.StepResult {
	f.advanced <- ctx.Err()
	sess.Stage = models.StageFeedback
	return &services.StepResult{Replies: []string{"Rate us 1 to 5."}, Stage: models.StageFeedback}
}

func (f *stubFlow) SubmitFeedback(context.Context, *models.Session, int, string) (*services.StepResult, error) {
	return nil, nil
}

type stubChat struct{}

func (stubChat) Reply(_ context.Context, sess *models.Session, _ string, _ func(string)) *services.ChatResult {
	return &services.ChatResult{}
}

func TestWSFeedbackPromptSurvivesDisconnect(t *testing.T) {
	old := feedbackDelay
	feedbackDelay = 50 * time.Millisecond
	defer func() { feedbackDelay = old }()

	flow := &stubFlow{advanced: make(chan error, 1)}
	sess := &models.Session{SessionID: "sess-1", Stage: models.StageContactInfo}
	h := NewWSHandler(&stubSessions{sess: sess}, flow, stubChat{})

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/chat/ws/:session_id", h.ChatWS)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/chat/ws/sess-1?secret=s3cr3t"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	require.NoError(t, conn.WriteJSON(wsClientMsg{Type: "message", Text: "John Smith john@example.com"}))

	// read the completion reply, then drop the connection before the
	// feedback delay elapses
	var msg wsServerMsg
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, models.StageComplete, msg.Stage)
	conn.Close()

	select {
	case ctxErr := <-flow.advanced:
		assert.NoError(t, ctxErr, "feedback advance must not run on a cancelled context")
	case <-time.After(2 * time.Second):
		t.Fatal("feedback prompt never fired")
	}
}
