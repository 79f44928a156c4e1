package alert

import (
	"context"

	"github.com/turfline/leadchat/internal/models"
)

// Payload is the flattened high-value lead sent to the sales team.
type Payload struct {
	SessionID        string           `json:"session_id"`
	Name             string           `json:"name,omitempty"`
	Email            string           `json:"email,omitempty"`
	Phone            string           `json:"phone,omitempty"`
	Address          string           `json:"address,omitempty"`
	ServiceInterest  string           `json:"service_interest,omitempty"`
	PropertyType     string           `json:"property_type,omitempty"`
	Timeline         string           `json:"timeline,omitempty"`
	PreferredContact string           `json:"preferred_contact,omitempty"`
	Score            models.LeadScore `json:"lead_score"`
	Transcript       []models.Message `json:"transcript"`
}

type Notifier interface {
	Notify(ctx context.Context, p Payload) error
}
