package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/turfline/leadchat/internal/models"
	"github.com/turfline/leadchat/internal/providers/llm"
	"github.com/turfline/leadchat/internal/qualify"
	pgrepo "github.com/turfline/leadchat/internal/repositories/postgres"
)

// FallbackReply is shown when the text-generation stream fails. The failed
// exchange is still persisted so a human can follow up.
const FallbackReply = "Sorry — I'm having trouble answering right now. " +
	"Give us a call at (608) 555-0199 or email hello@turflinelawn.com and we'll get right back to you."

const streamTimeout = 60 * time.Second

type ChatResult struct {
	Reply  string           `json:"reply"`
	Failed bool             `json:"failed,omitempty"` // Reply is the fallback text
	Score  models.LeadScore `json:"lead_score"`
}

// ChatService handles free-form messages outside the structured flow by
// proxying them to the streaming text-generation provider.
type ChatService interface {
	// Reply streams the assistant's answer; each chunk is handed to onChunk
	// as it arrives (onChunk may be nil for the non-streaming path). The
	// finalized exchange is persisted whether or not the stream succeeded.
	Reply(ctx context.Context, sess *models.Session, text string, onChunk func(string)) *ChatResult
}

type chatService struct {
	provider llm.Provider
	sessions SessionService
	convos   pgrepo.ConversationRepo
	alerts   AlertService
	log      *logrus.Logger
}

func NewChatService(provider llm.Provider, sessions SessionService, convos pgrepo.ConversationRepo, alerts AlertService, log *logrus.Logger) ChatService {
	return &chatService{provider: provider, sessions: sessions, convos: convos, alerts: alerts, log: log}
}

func (s *chatService) Reply(ctx context.Context, sess *models.Session, text string, onChunk func(string)) *ChatResult {
	sess.AppendUser(text)

	turns := make([]llm.Turn, 0, len(sess.Transcript))
	for _, m := range sess.Transcript {
		turns = append(turns, llm.Turn{Role: m.Role, Content: m.Text})
	}

	streamCtx, cancel := context.WithTimeout(ctx, streamTimeout)
	defer cancel()

	chunks, errs := s.provider.StreamReply(streamCtx, turns)

	var b strings.Builder
	for c := range chunks {
		b.WriteString(c)
		if onChunk != nil {
			onChunk(c)
		}
	}
	streamErr := <-errs

	reply := b.String()
	failed := streamErr != nil || strings.TrimSpace(reply) == ""
	if failed {
		if streamErr != nil {
			s.log.WithField("session_id", sess.SessionID).WithError(streamErr).Warn("llm stream failed")
		}
		reply = FallbackReply
	}

	sess.AppendAssistant(reply)
	score := qualify.Score(sess.Customer, sess.Transcript)

	logSideEffects(s.log, sess.SessionID,
		SideEffect{Op: "session.save", Err: s.sessions.Save(ctx, sess)},
		s.logExchange(ctx, sess.SessionID, models.RoleUser, text),
		s.logExchange(ctx, sess.SessionID, models.RoleAssistant, reply),
		s.alerts.MaybeAlert(ctx, sess, score),
	)

	return &ChatResult{Reply: reply, Failed: failed, Score: score}
}

func (s *chatService) logExchange(ctx context.Context, sessionID, role, content string) SideEffect {
	const op = "conversation.insert"

	row := &models.ConversationLog{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	return SideEffect{Op: op, Err: s.convos.Insert(ctx, row)}
}
