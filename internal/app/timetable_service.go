package app

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"

	"learning-yogi/internal/model"
	"learning-yogi/internal/timetable"
)

// TimetableRepo is the persistence contract for timetable records.
// Persistence is the sole source of truth; its errors always propagate.
type TimetableRepo interface {
	Create(tt *model.Timetable) error
	GetByDocumentID(documentID string) (*model.Timetable, error)
	List(limit, offset int) ([]model.Timetable, error)
	Save(tt *model.Timetable) error
	DeleteByDocumentID(documentID string) error
}

// TimetableCacheStore fronts persistence on the per-document read path.
// Every error from it is logged and swallowed: user-visible behavior
// must be identical whether or not the cache is healthy.
type TimetableCacheStore interface {
	Get(ctx context.Context, documentID string) (*model.Timetable, bool, error)
	Set(ctx context.Context, documentID string, tt *model.Timetable) error
	Delete(ctx context.Context, documentID string) error
}

// TimetableService mediates all reads and edits of persisted timetables,
// keeping the cache never staler than the last acknowledged write.
type TimetableService struct {
	repo  TimetableRepo
	cache TimetableCacheStore
}

func NewTimetableService(repo TimetableRepo, cache TimetableCacheStore) *TimetableService {
	return &TimetableService{repo: repo, cache: cache}
}

// GetByDocument is the read-through path: cache hit returns verbatim, a
// miss reads persistence and populates the cache before returning.
func (s *TimetableService) GetByDocument(ctx context.Context, documentID string) (*model.Timetable, error) {
	if documentID == "" {
		return nil, ErrInvalidInput
	}

	if s.cache != nil {
		cached, hit, err := s.cache.Get(ctx, documentID)
		if err != nil {
			log.Printf("timetable cache read for document %s failed: %v", documentID, err)
		} else if hit {
			return cached, nil
		}
	}

	tt, err := s.repo.GetByDocumentID(documentID)
	if err != nil {
		return nil, err
	}
	if tt == nil {
		return nil, ErrTimetableNotFound
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, documentID, tt); err != nil {
			log.Printf("timetable cache populate for document %s failed: %v", documentID, err)
		}
	}
	return tt, nil
}

// List always reads persistence; the per-key cache is bypassed.
func (s *TimetableService) List(limit, offset int) ([]model.Timetable, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(limit, offset)
}

// UpdateInput replaces the full block sequence and metadata together.
type UpdateInput struct {
	TeacherName *string
	ClassName   *string
	Term        *string
	Year        *int
	SavedName   *string
	Timeblocks  model.TimeBlockList
}

// Update is write-through: persistence commits first, then the cache
// entry is deleted and the new value set, so a racing reader sees either
// the old committed value or the new one, never a half-applied write.
func (s *TimetableService) Update(ctx context.Context, documentID string, input UpdateInput) (*model.Timetable, error) {
	if documentID == "" {
		return nil, ErrInvalidInput
	}

	result := timetable.Validate(input.Timeblocks)
	if !result.Valid {
		return nil, &ValidationError{Reasons: result.Errors}
	}

	tt, err := s.repo.GetByDocumentID(documentID)
	if err != nil {
		return nil, err
	}
	if tt == nil {
		return nil, ErrTimetableNotFound
	}

	tt.TeacherName = input.TeacherName
	tt.ClassName = input.ClassName
	tt.Term = input.Term
	tt.Year = input.Year
	tt.SavedName = input.SavedName
	tt.Timeblocks = input.Timeblocks
	tt.Validated = true

	if err := s.repo.Save(tt); err != nil {
		return nil, err
	}

	if s.cache != nil {
		// Delete then set, not set-only. Failures are non-fatal:
		// persistence already holds the new value.
		if err := s.cache.Delete(ctx, documentID); err != nil {
			log.Printf("timetable cache delete for document %s failed: %v", documentID, err)
		}
		if err := s.cache.Set(ctx, documentID, tt); err != nil {
			log.Printf("timetable cache set for document %s failed: %v", documentID, err)
		}
	}
	return tt, nil
}

// SaveAsInput creates a user-named copy with a fresh identity.
type SaveAsInput struct {
	SavedName   string
	DocumentID  *string
	TeacherName *string
	ClassName   *string
	Term        *string
	Year        *int
	Timeblocks  model.TimeBlockList
}

// CreateSaveAs persists a brand-new timetable. It never touches another
// timetable's cache entry and is not proactively cached itself; it
// becomes cacheable the next time it is read.
func (s *TimetableService) CreateSaveAs(ctx context.Context, input SaveAsInput) (*model.Timetable, error) {
	if strings.TrimSpace(input.SavedName) == "" {
		return nil, ErrInvalidInput
	}

	result := timetable.Validate(input.Timeblocks)
	if !result.Valid {
		return nil, &ValidationError{Reasons: result.Errors}
	}

	savedName := strings.TrimSpace(input.SavedName)
	tt := &model.Timetable{
		ID:          uuid.NewString(),
		DocumentID:  input.DocumentID,
		TeacherName: input.TeacherName,
		ClassName:   input.ClassName,
		Term:        input.Term,
		Year:        input.Year,
		SavedName:   &savedName,
		Timeblocks:  input.Timeblocks,
		Validated:   true,
	}
	if err := s.repo.Create(tt); err != nil {
		return nil, err
	}
	return tt, nil
}
