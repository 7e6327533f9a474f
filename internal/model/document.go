package model

import "time"

// DocumentStatus is the closed set of lifecycle states a Document moves
// through. Values are stable over the wire.
type DocumentStatus string

const (
	StatusUploaded         DocumentStatus = "uploaded"
	StatusProcessing       DocumentStatus = "processing"
	StatusProcessingAI     DocumentStatus = "processing_ai"
	StatusCompleted        DocumentStatus = "completed"
	StatusValidationFailed DocumentStatus = "validation_failed"
	StatusFailed           DocumentStatus = "failed"
)

// statusTransitions is the full transition table. Terminal states
// (completed, validation_failed, failed) have no outgoing edges.
var statusTransitions = map[DocumentStatus][]DocumentStatus{
	StatusUploaded:     {StatusProcessing},
	StatusProcessing:   {StatusProcessingAI, StatusCompleted, StatusFailed},
	StatusProcessingAI: {StatusCompleted, StatusValidationFailed, StatusFailed},
}

// CanTransition reports whether the lifecycle permits moving from s to next.
func (s DocumentStatus) CanTransition(next DocumentStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition leaves s.
func (s DocumentStatus) Terminal() bool {
	return len(statusTransitions[s]) == 0
}

// MediaKind is the declared kind of an uploaded file.
type MediaKind string

const (
	MediaImage   MediaKind = "image"
	MediaPDF     MediaKind = "pdf"
	MediaUnknown MediaKind = "unknown"
)

// Document is an uploaded timetable file tracked through the extraction
// pipeline. StoragePath is the locator owned by the object store; the
// record never outlives the backing file except on storage failure.
type Document struct {
	ID               string         `gorm:"primaryKey;size:36" json:"id"`
	OriginalFilename string         `gorm:"size:256;not null" json:"original_filename"`
	StoragePath      string         `gorm:"size:512;not null" json:"storage_path"`
	MediaKind        MediaKind      `gorm:"size:16;not null" json:"media_kind"`
	SizeBytes        int64          `gorm:"not null" json:"size_bytes"`
	Status           DocumentStatus `gorm:"size:32;not null;index" json:"status"`
	ErrorDetail      *string        `gorm:"type:text" json:"error_detail,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}
