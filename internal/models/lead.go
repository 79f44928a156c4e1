package models

import (
	"time"

	"gorm.io/datatypes"
)

// LeadScore is the 0-100 heuristic estimate of a lead's sales value. It is
// always derived from (Customer, Transcript) and never stored on its own.
type LeadScore struct {
	ServiceInterest int `json:"service_interest"`
	Urgency         int `json:"urgency"`
	ContactInfo     int `json:"contact_info"`
	Budget          int `json:"budget"`
	Total           int `json:"total"`
}

// LeadRecord is the finalized lead written to Postgres when the qualification
// flow completes or first crosses the high-value threshold.
type LeadRecord struct {
	ID        string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SessionID string `gorm:"column:session_id;type:uuid;uniqueIndex" json:"session_id"`

	Name             string `gorm:"column:name;type:text" json:"name"`
	Email            string `gorm:"column:email;type:text" json:"email"`
	Phone            string `gorm:"column:phone;type:text" json:"phone"`
	Address          string `gorm:"column:address;type:text" json:"address"`
	ServiceInterest  string `gorm:"column:service_interest;type:text" json:"service_interest"`
	PropertyType     string `gorm:"column:property_type;type:text" json:"property_type"`
	Timeline         string `gorm:"column:timeline;type:text" json:"timeline"`
	PreferredContact string `gorm:"column:preferred_contact;type:text" json:"preferred_contact"`

	ScoreTotal     int            `gorm:"column:score_total;index" json:"score_total"`
	ScoreBreakdown datatypes.JSON `gorm:"column:score_breakdown;type:jsonb" json:"score_breakdown"`
	Transcript     datatypes.JSON `gorm:"column:transcript;type:jsonb" json:"transcript"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;index" json:"created_at"`
}

func (LeadRecord) TableName() string { return "leads" }
