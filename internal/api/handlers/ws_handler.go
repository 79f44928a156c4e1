package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/turfline/leadchat/internal/models"
	"github.com/turfline/leadchat/internal/qualify"
	"github.com/turfline/leadchat/internal/services"
	"github.com/turfline/leadchat/internal/utils"
)

// Delay between flow completion and the feedback prompt.
var feedbackDelay = 4 * time.Second

type WSHandler struct {
	sessions services.SessionService
	flow     services.QualificationService
	chat     services.ChatService
	upgrader websocket.Upgrader
}

func NewWSHandler(sessions services.SessionService, flow services.QualificationService, chat services.ChatService) *WSHandler {
	return &WSHandler{
		sessions: sessions,
		flow:     flow,
		chat:     chat,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin in prod
		},
	}
}

type wsClientMsg struct {
	Type  string `json:"type"` // message|choice|skip|reset
	Text  string `json:"text"`
	Value string `json:"value"`
}

type wsServerMsg struct {
	Type string `json:"type"` // message|chunk|done|session|error

	Text      string            `json:"text,omitempty"`
	Stage     models.Stage      `json:"stage,omitempty"`
	LeadScore *models.LeadScore `json:"lead_score,omitempty"`
	Options   []qualify.Option  `json:"options,omitempty"`

	SessionID     string `json:"session_id,omitempty"`
	SessionSecret string `json:"session_secret,omitempty"`

	Code    utils.Code `json:"code,omitempty"`
	Message string     `json:"message,omitempty"`
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeJSON(m wsServerMsg) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

func (h *WSHandler) ChatWS(c *gin.Context) {
	secret := c.Query("secret")
	sess, err := h.sessions.Authorize(c.Request.Context(), c.Param("session_id"), secret)
	if err != nil {
		writeError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote response in most cases
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The session is touched by the read loop and by the delayed feedback
	// timer; one lock keeps steps discrete.
	var sessMu sync.Mutex

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
		return nil
	})

	for {
		_, data, rerr := conn.ReadMessage()
		if rerr != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Minute))

		var msg wsClientMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = wc.writeJSON(wsServerMsg{Type: "error", Code: utils.CodeInvalidArgument, Message: "invalid json"})
			continue
		}

		switch msg.Type {
		case "message":
			sessMu.Lock()
			if qualify.FreeForm(sess.Stage) {
				h.streamReply(ctx, wc, sess, msg.Text)
			} else {
				h.step(ctx, wc, sess, &sessMu, qualify.Input{Kind: qualify.InputText, Value: msg.Text})
			}
			sessMu.Unlock()

		case "choice":
			sessMu.Lock()
			h.step(ctx, wc, sess, &sessMu, qualify.Input{Kind: qualify.InputChoice, Value: msg.Value})
			sessMu.Unlock()

		case "skip":
			sessMu.Lock()
			h.step(ctx, wc, sess, &sessMu, qualify.Input{Kind: qualify.InputSkip})
			sessMu.Unlock()

		case "reset":
			sessMu.Lock()
			oldID := sess.SessionID
			sessMu.Unlock()
			fresh, freshSecret, err := h.sessions.Reset(ctx, oldID)
			if err != nil {
				_ = wc.writeJSON(wsServerMsg{Type: "error", Code: utils.CodeInternal, Message: "failed to reset session"})
				continue
			}
			sessMu.Lock()
			sess = fresh
			sessMu.Unlock()
			_ = wc.writeJSON(wsServerMsg{
				Type:          "session",
				SessionID:     fresh.SessionID,
				SessionSecret: freshSecret,
				Stage:         fresh.Stage,
				Text:          qualify.Greeting(),
				Options:       qualify.StageOptions(fresh.Stage),
			})

		default:
			_ = wc.writeJSON(wsServerMsg{Type: "error", Code: utils.CodeInvalidArgument, Message: "unknown message type"})
		}
	}
}

// step runs one structured-flow action and pushes the canned replies. On
// completion it schedules the feedback prompt after the fixed delay.
func (h *WSHandler) step(ctx context.Context, wc *wsConn, sess *models.Session, sessMu *sync.Mutex, in qualify.Input) {
	res := h.flow.Step(ctx, sess, in)

	score := res.Score
	for _, reply := range res.Replies {
		_ = wc.writeJSON(wsServerMsg{
			Type:      "message",
			Text:      reply,
			Stage:     res.Stage,
			LeadScore: &score,
			Options:   qualify.StageOptions(res.Stage),
		})
	}

	if res.Completed {
		// the save must survive the connection closing during the delay
		fbCtx := context.WithoutCancel(ctx)
		time.AfterFunc(feedbackDelay, func() {
			sessMu.Lock()
			defer sessMu.Unlock()
			fb := h.flow.AdvanceToFeedback(fbCtx, sess)
			if fb.Rejected {
				return
			}
			fbScore := fb.Score
			for _, reply := range fb.Replies {
				_ = wc.writeJSON(wsServerMsg{
					Type:      "message",
					Text:      reply,
					Stage:     fb.Stage,
					LeadScore: &fbScore,
				})
			}
		})
	}
}

// streamReply proxies free-form text to the LLM and forwards chunks as they
// arrive. Stream failure degrades to a single fallback message.
func (h *WSHandler) streamReply(ctx context.Context, wc *wsConn, sess *models.Session, text string) {
	res := h.chat.Reply(ctx, sess, text, func(chunk string) {
		_ = wc.writeJSON(wsServerMsg{Type: "chunk", Text: chunk})
	})

	score := res.Score
	if res.Failed {
		_ = wc.writeJSON(wsServerMsg{Type: "message", Text: res.Reply, Stage: sess.Stage, LeadScore: &score})
	}
	_ = wc.writeJSON(wsServerMsg{Type: "done", Stage: sess.Stage, LeadScore: &score, Options: qualify.StageOptions(sess.Stage)})
}
