package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/turfline/leadchat/internal/models"
	"github.com/turfline/leadchat/internal/providers/alert"
	"github.com/turfline/leadchat/internal/qualify"
)

const alertDedupeTTL = 7 * 24 * time.Hour

// AlertService fires the high-value lead notification. A session qualifies
// once its score crosses the threshold or the flow completes, with at least
// one contact field captured; the alert fires at most once per session,
// enforced with a Redis SETNX guard.
type AlertService interface {
	MaybeAlert(ctx context.Context, sess *models.Session, score models.LeadScore) SideEffect
}

type alertService struct {
	rdb      *redis.Client
	notifier alert.Notifier
	log      *logrus.Logger
}

func NewAlertService(rdb *redis.Client, n alert.Notifier, log *logrus.Logger) AlertService {
	return &alertService{rdb: rdb, notifier: n, log: log}
}

func (s *alertService) MaybeAlert(ctx context.Context, sess *models.Session, score models.LeadScore) SideEffect {
	const op = "AlertService.MaybeAlert"

	qualifies := (score.Total > qualify.HighValueThreshold || sess.Stage == models.StageComplete) &&
		sess.Customer.HasContact()
	if !qualifies || s.notifier == nil {
		return SideEffect{Op: op}
	}

	first, err := s.rdb.SetNX(ctx, "lead:alerted:"+sess.SessionID, 1, alertDedupeTTL).Result()
	if err != nil {
		// can't tell whether we already fired; skip rather than duplicate
		return SideEffect{Op: op, Err: err}
	}
	if !first {
		return SideEffect{Op: op}
	}

	p := alert.Payload{
		SessionID:        sess.SessionID,
		Name:             sess.Customer.Name,
		Email:            sess.Customer.Email,
		Phone:            sess.Customer.Phone,
		Address:          sess.Customer.Address,
		ServiceInterest:  sess.Customer.ServiceInterest,
		PropertyType:     sess.Customer.PropertyType,
		Timeline:         sess.Customer.Timeline,
		PreferredContact: sess.Customer.PreferredContact,
		Score:            score,
		Transcript:       sess.Transcript,
	}
	if err := s.notifier.Notify(ctx, p); err != nil {
		return SideEffect{Op: op, Err: err}
	}

	s.log.WithFields(logrus.Fields{
		"session_id": sess.SessionID,
		"score":      score.Total,
	}).Info("high-value lead alert sent")
	return SideEffect{Op: op}
}
