package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Stage is the single active step of the guided qualification conversation.
type Stage string

const (
	StageIdle              Stage = "idle"
	StagePropertyType      Stage = "property-type"
	StageLocation          Stage = "location"
	StageServiceDetails    Stage = "service-details"
	StageTimeline          Stage = "timeline"
	StageContactMethod     Stage = "contact-method"
	StageContactInfo       Stage = "contact-info"
	StageComplete          Stage = "complete"
	StageFeedback          Stage = "feedback"
	StageFeedbackSubmitted Stage = "feedback-submitted"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role      string    `bson:"role" json:"role"` // "user" | "assistant"
	Text      string    `bson:"text" json:"text"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// Customer is the incrementally filled lead record. Fields are merged in as
// the conversation progresses; a later submission never clears a field a
// prior one captured.
type Customer struct {
	Name             string `bson:"name,omitempty" json:"name,omitempty"`
	Email            string `bson:"email,omitempty" json:"email,omitempty"`
	Phone            string `bson:"phone,omitempty" json:"phone,omitempty"`
	Address          string `bson:"address,omitempty" json:"address,omitempty"`
	ServiceInterest  string `bson:"service_interest,omitempty" json:"service_interest,omitempty"`
	PropertyType     string `bson:"property_type,omitempty" json:"property_type,omitempty"`           // residential|commercial|hoa
	Timeline         string `bson:"timeline,omitempty" json:"timeline,omitempty"`                     // asap|this-week|this-month|just-pricing
	PreferredContact string `bson:"preferred_contact,omitempty" json:"preferred_contact,omitempty"` // text|call|email
}

// Merge copies the non-empty fields of in over c. Same-field overwrites are
// allowed; fields absent from in are left untouched.
func (c *Customer) Merge(in Customer) {
	if in.Name != "" {
		c.Name = in.Name
	}
	if in.Email != "" {
		c.Email = in.Email
	}
	if in.Phone != "" {
		c.Phone = in.Phone
	}
	if in.Address != "" {
		c.Address = in.Address
	}
	if in.ServiceInterest != "" {
		c.ServiceInterest = in.ServiceInterest
	}
	if in.PropertyType != "" {
		c.PropertyType = in.PropertyType
	}
	if in.Timeline != "" {
		c.Timeline = in.Timeline
	}
	if in.PreferredContact != "" {
		c.PreferredContact = in.PreferredContact
	}
}

// HasContact reports whether at least one direct contact field is captured.
func (c Customer) HasContact() bool {
	return c.Name != "" || c.Email != "" || c.Phone != ""
}

type Session struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID string             `bson:"session_id" json:"session_id"` // uuid v4

	// bcrypt hash of the session secret; the plaintext is returned once at
	// mint time and presented by the client on every later write. Never
	// serialize a Session directly in an API response.
	SecretHash string `bson:"secret_hash" json:"secret_hash,omitempty"`

	Stage      Stage     `bson:"stage" json:"stage"`
	Transcript []Message `bson:"transcript" json:"transcript"`
	Customer   Customer  `bson:"customer" json:"customer"`

	// Rating chosen in the feedback stage, held until the optional comment
	// is submitted or skipped. 0 = none chosen yet.
	PendingRating int `bson:"pending_rating,omitempty" json:"pending_rating,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// AppendUser appends a user message to the transcript.
func (s *Session) AppendUser(text string) {
	s.Transcript = append(s.Transcript, Message{Role: RoleUser, Text: text, Timestamp: time.Now().UTC()})
}

// AppendAssistant appends an assistant message to the transcript.
func (s *Session) AppendAssistant(text string) {
	s.Transcript = append(s.Transcript, Message{Role: RoleAssistant, Text: text, Timestamp: time.Now().UTC()})
}
