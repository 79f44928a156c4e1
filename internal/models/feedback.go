package models

import "time"

// Feedback is the end-of-flow rating. Insert only; no read path.
type Feedback struct {
	ID           string    `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SessionID    string    `gorm:"column:session_id;type:uuid;index" json:"session_id"`
	Rating       int       `gorm:"column:rating" json:"rating"` // 1..5
	FeedbackText string    `gorm:"column:feedback_text;type:text" json:"feedback_text,omitempty"`
	CreatedAt    time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (Feedback) TableName() string { return "feedback" }
