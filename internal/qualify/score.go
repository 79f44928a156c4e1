package qualify

import (
	"strings"

	"github.com/turfline/leadchat/internal/models"
)

// Component caps. ContactInfo's raw sum is 35 (name+email+phone+address) but
// the component is capped at 30.
const (
	maxServiceInterest = 30
	maxContactInfo     = 30
	HighValueThreshold = 50
)

var serviceKeywords = []string{
	"mowing", "gutter", "cleanup", "mulch", "weeding",
	"fertiliz", "herbicide", "snow", "commercial", "hoa",
}

var urgencyKeywords = []string{
	"asap", "urgent", "soon", "today", "this week", "immediately", "emergency",
}

// Score computes the lead score from scratch on every call. It is a pure
// function of (customer, transcript); Total is always the sum of the four
// components.
func Score(c models.Customer, transcript []models.Message) models.LeadScore {
	var s models.LeadScore

	switch {
	case c.ServiceInterest != "":
		s.ServiceInterest = maxServiceInterest
	case transcriptContainsAny(transcript, serviceKeywords):
		s.ServiceInterest = 15
	}

	// An urgency keyword anywhere in the transcript short-circuits to the
	// asap tier; keyword and timeline are never summed.
	switch {
	case transcriptContainsAny(transcript, urgencyKeywords) || c.Timeline == "asap":
		s.Urgency = 25
	case c.Timeline == "this-week":
		s.Urgency = 20
	case c.Timeline == "this-month":
		s.Urgency = 10
	}

	if c.Name != "" {
		s.ContactInfo += 10
	}
	if c.Email != "" {
		s.ContactInfo += 10
	}
	if c.Phone != "" {
		s.ContactInfo += 10
	}
	if c.Address != "" {
		s.ContactInfo += 5
	}
	if s.ContactInfo > maxContactInfo {
		s.ContactInfo = maxContactInfo
	}

	switch c.PropertyType {
	case "commercial", "hoa":
		s.Budget = 15
	case "residential":
		s.Budget = 10
	}

	s.Total = s.ServiceInterest + s.Urgency + s.ContactInfo + s.Budget
	return s
}

func transcriptContainsAny(transcript []models.Message, keywords []string) bool {
	for _, m := range transcript {
		text := strings.ToLower(m.Text)
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				return true
			}
		}
	}
	return false
}
