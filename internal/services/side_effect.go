package services

import "github.com/sirupsen/logrus"

// SideEffect is the outcome of a fire-and-forget write (persistence, alert,
// archive, feedback insert). Failures are logged and otherwise ignored: the
// conversational flow never blocks or rolls back on a backend error.
type SideEffect struct {
	Op  string
	Err error
}

func (e SideEffect) Failed() bool { return e.Err != nil }

func logSideEffects(log *logrus.Logger, sessionID string, effects ...SideEffect) {
	for _, e := range effects {
		if e.Failed() {
			log.WithFields(logrus.Fields{
				"session_id": sessionID,
				"op":         e.Op,
			}).WithError(e.Err).Warn("side effect failed")
		}
	}
}
