package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turfline/leadchat/internal/models"
	"github.com/turfline/leadchat/internal/qualify"
	"github.com/turfline/leadchat/internal/services"
	"github.com/turfline/leadchat/internal/utils"
)

// ChatHandler is the REST surface of the chat widget: session minting, the
// synchronous (non-streaming) message path, feedback, and reset.
type ChatHandler struct {
	sessions services.SessionService
	flow     services.QualificationService
	chat     services.ChatService
}

func NewChatHandler(sessions services.SessionService, flow services.QualificationService, chat services.ChatService) *ChatHandler {
	return &ChatHandler{sessions: sessions, flow: flow, chat: chat}
}

type StartSessionResponse struct {
	SessionID     string           `json:"session_id"`
	SessionSecret string           `json:"session_secret"`
	Stage         models.Stage     `json:"stage"`
	Greeting      string           `json:"greeting"`
	Options       []qualify.Option `json:"options,omitempty"`
}

func (h *ChatHandler) Start(c *gin.Context) {
	sess, secret, err := h.sessions.Start(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, StartSessionResponse{
		SessionID:     sess.SessionID,
		SessionSecret: secret,
		Stage:         sess.Stage,
		Greeting:      qualify.Greeting(),
		Options:       qualify.StageOptions(sess.Stage),
	})
}

type MessageRequest struct {
	Secret string `json:"secret" binding:"required"`
	Type   string `json:"type" binding:"required"` // message|choice|skip
	Text   string `json:"text"`
}

type MessageResponse struct {
	SessionID string           `json:"session_id"`
	Stage     models.Stage     `json:"stage"`
	Replies   []string         `json:"replies"`
	LeadScore models.LeadScore `json:"lead_score"`
	Options   []qualify.Option `json:"options,omitempty"`
}

func (h *ChatHandler) Message(c *gin.Context) {
	const op = "ChatHandler.Message"

	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid request body", err))
		return
	}

	sess, err := h.sessions.Authorize(c.Request.Context(), c.Param("session_id"), req.Secret)
	if err != nil {
		writeError(c, err)
		return
	}

	ctx := c.Request.Context()
	var resp MessageResponse

	switch req.Type {
	case "message":
		if qualify.FreeForm(sess.Stage) {
			res := h.chat.Reply(ctx, sess, req.Text, nil)
			resp = MessageResponse{
				SessionID: sess.SessionID,
				Stage:     sess.Stage,
				Replies:   []string{res.Reply},
				LeadScore: res.Score,
			}
		} else {
			step := h.flow.Step(ctx, sess, qualify.Input{Kind: qualify.InputText, Value: req.Text})
			resp = stepResponse(sess, step)
		}
	case "choice":
		step := h.flow.Step(ctx, sess, qualify.Input{Kind: qualify.InputChoice, Value: req.Text})
		resp = stepResponse(sess, step)
	case "skip":
		step := h.flow.Step(ctx, sess, qualify.Input{Kind: qualify.InputSkip})
		resp = stepResponse(sess, step)
	default:
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "type must be message, choice, or skip", nil))
		return
	}

	c.JSON(http.StatusOK, resp)
}

func stepResponse(sess *models.Session, step *services.StepResult) MessageResponse {
	return MessageResponse{
		SessionID: sess.SessionID,
		Stage:     step.Stage,
		Replies:   step.Replies,
		LeadScore: step.Score,
		Options:   qualify.StageOptions(step.Stage),
	}
}

type FeedbackRequest struct {
	Secret       string `json:"secret" binding:"required"`
	Rating       int    `json:"rating" binding:"required"`
	FeedbackText string `json:"feedback_text"`
}

func (h *ChatHandler) Feedback(c *gin.Context) {
	const op = "ChatHandler.Feedback"

	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid request body", err))
		return
	}

	sess, err := h.sessions.Authorize(c.Request.Context(), c.Param("session_id"), req.Secret)
	if err != nil {
		writeError(c, err)
		return
	}

	step, err := h.flow.SubmitFeedback(c.Request.Context(), sess, req.Rating, req.FeedbackText)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, stepResponse(sess, step))
}

type ResetRequest struct {
	Secret string `json:"secret" binding:"required"`
}

func (h *ChatHandler) Reset(c *gin.Context) {
	const op = "ChatHandler.Reset"

	var req ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, op, "invalid request body", err))
		return
	}

	// authorize against the old session; it stays as-is (last write wins)
	if _, err := h.sessions.Authorize(c.Request.Context(), c.Param("session_id"), req.Secret); err != nil {
		writeError(c, err)
		return
	}

	sess, secret, err := h.sessions.Reset(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, StartSessionResponse{
		SessionID:     sess.SessionID,
		SessionSecret: secret,
		Stage:         sess.Stage,
		Greeting:      qualify.Greeting(),
		Options:       qualify.StageOptions(sess.Stage),
	})
}
