package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// TimeBlock is one scheduled event inside a timetable. Times are 24-hour
// "H:MM"/"HH:MM" text; absent values stay nil so "no time" is
// distinguishable from an empty string.
type TimeBlock struct {
	Day       string  `json:"day"`
	Name      string  `json:"name"`
	StartTime *string `json:"startTime,omitempty"`
	EndTime   *string `json:"endTime,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

// TimeBlockList is the full ordered block sequence, stored as a single
// JSON column on the timetable row and returned deserialized in API
// responses.
type TimeBlockList []TimeBlock

// Value serializes the list for the database column.
func (l TimeBlockList) Value() (driver.Value, error) {
	if l == nil {
		l = TimeBlockList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshal timeblocks failed: %w", err)
	}
	return string(b), nil
}

// Scan deserializes the JSON column back into the list.
func (l *TimeBlockList) Scan(src interface{}) error {
	if src == nil {
		*l = TimeBlockList{}
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported timeblocks column type %T", src)
	}
	if len(raw) == 0 {
		*l = TimeBlockList{}
		return nil
	}
	if err := json.Unmarshal(raw, l); err != nil {
		return fmt.Errorf("unmarshal timeblocks failed: %w", err)
	}
	return nil
}

// Timetable is the structured extraction result. It is created either by
// the pipeline or by an explicit save-as, and only ever rewritten whole:
// one update replaces the block sequence and metadata together.
// Validated reflects the validator verdict for Timeblocks at last write.
type Timetable struct {
	ID          string        `gorm:"primaryKey;size:36" json:"id"`
	DocumentID  *string       `gorm:"size:36;index" json:"document_id"`
	TeacherName *string       `gorm:"size:128" json:"teacher_name,omitempty"`
	ClassName   *string       `gorm:"size:128" json:"class_name,omitempty"`
	Term        *string       `gorm:"size:64" json:"term,omitempty"`
	Year        *int          `json:"year,omitempty"`
	SavedName   *string       `gorm:"size:256" json:"saved_name,omitempty"`
	Timeblocks  TimeBlockList `gorm:"type:json" json:"timeblocks"`
	Confidence  float64       `gorm:"not null;default:0" json:"confidence"`
	Validated   bool          `gorm:"not null;default:false" json:"validated"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
