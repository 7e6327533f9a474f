package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"learning-yogi/internal/model"
)

// fakeCache records the order of operations so write-through ordering
// can be asserted.
type fakeCache struct {
	entries map[string]*model.Timetable
	ops     []string
	getErr  error
	setErr  error
	delErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]*model.Timetable{}}
}

func (c *fakeCache) Get(ctx context.Context, documentID string) (*model.Timetable, bool, error) {
	c.ops = append(c.ops, "get")
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	tt, ok := c.entries[documentID]
	return tt, ok, nil
}

func (c *fakeCache) Set(ctx context.Context, documentID string, tt *model.Timetable) error {
	c.ops = append(c.ops, "set")
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[documentID] = tt
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, documentID string) error {
	c.ops = append(c.ops, "delete")
	if c.delErr != nil {
		return c.delErr
	}
	delete(c.entries, documentID)
	return nil
}

func validBlocks() model.TimeBlockList {
	return model.TimeBlockList{
		{Day: "Monday", Name: "Math", StartTime: strPtr("09:00"), EndTime: strPtr("10:00")},
	}
}

func storedTimetable(documentID string) *model.Timetable {
	docID := documentID
	return &model.Timetable{
		ID:         "tt-" + documentID,
		DocumentID: &docID,
		Timeblocks: validBlocks(),
		Confidence: 0.41,
		Validated:  false,
	}
}

func TestTimetableService_GetByDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("cache hit skips persistence", func(t *testing.T) {
		repo := new(mockTimetableRepo)
		cache := newFakeCache()
		cached := storedTimetable("doc-1")
		cache.entries["doc-1"] = cached
		svc := NewTimetableService(repo, cache)

		got, err := svc.GetByDocument(ctx, "doc-1")
		assert.NoError(t, err)
		assert.Equal(t, cached, got)
		repo.AssertNotCalled(t, "GetByDocumentID", mock.Anything)
	})

	t.Run("cache miss populates cache", func(t *testing.T) {
		repo := new(mockTimetableRepo)
		cache := newFakeCache()
		tt := storedTimetable("doc-2")
		repo.On("GetByDocumentID", "doc-2").Return(tt, nil)
		svc := NewTimetableService(repo, cache)

		got, err := svc.GetByDocument(ctx, "doc-2")
		assert.NoError(t, err)
		assert.Equal(t, tt, got)
		assert.Equal(t, tt, cache.entries["doc-2"])
		assert.Equal(t, []string{"get", "set"}, cache.ops)
	})

	t.Run("cache error falls through to persistence", func(t *testing.T) {
		repo := new(mockTimetableRepo)
		cache := newFakeCache()
		cache.getErr = errors.New("redis down")
		cache.setErr = errors.New("redis down")
		tt := storedTimetable("doc-3")
		repo.On("GetByDocumentID", "doc-3").Return(tt, nil)
		svc := NewTimetableService(repo, cache)

		got, err := svc.GetByDocument(ctx, "doc-3")
		assert.NoError(t, err)
		assert.Equal(t, tt, got)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(mockTimetableRepo)
		repo.On("GetByDocumentID", "missing").Return(nil, nil)
		svc := NewTimetableService(repo, newFakeCache())

		_, err := svc.GetByDocument(ctx, "missing")
		assert.ErrorIs(t, err, ErrTimetableNotFound)
	})

	t.Run("empty id rejected", func(t *testing.T) {
		svc := NewTimetableService(new(mockTimetableRepo), newFakeCache())
		_, err := svc.GetByDocument(ctx, "")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestTimetableService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("persists then refreshes cache delete before set", func(t *testing.T) {
		repo := new(mockTimetableRepo)
		cache := newFakeCache()
		existing := storedTimetable("doc-1")
		cache.entries["doc-1"] = existing
		repo.On("GetByDocumentID", "doc-1").Return(existing, nil)
		repo.On("Save", mock.MatchedBy(func(tt *model.Timetable) bool {
			return tt.Validated && tt.TeacherName != nil && *tt.TeacherName == "Ms. Reyes"
		})).Return(nil)
		svc := NewTimetableService(repo, cache)

		got, err := svc.Update(ctx, "doc-1", UpdateInput{
			TeacherName: strPtr("Ms. Reyes"),
			Timeblocks:  validBlocks(),
		})
		assert.NoError(t, err)
		assert.True(t, got.Validated)
		assert.Equal(t, []string{"delete", "set"}, cache.ops)
		assert.Equal(t, got, cache.entries["doc-1"])
		repo.AssertExpectations(t)
	})

	t.Run("invalid payload rejected before persistence", func(t *testing.T) {
		repo := new(mockTimetableRepo)
		svc := NewTimetableService(repo, newFakeCache())

		_, err := svc.Update(ctx, "doc-1", UpdateInput{Timeblocks: model.TimeBlockList{}})
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
		assert.Equal(t, []string{"timetable contains no time blocks"}, verr.Reasons)
		repo.AssertNotCalled(t, "GetByDocumentID", mock.Anything)
		repo.AssertNotCalled(t, "Save", mock.Anything)
	})

	t.Run("persistence error leaves cache untouched", func(t *testing.T) {
		repo := new(mockTimetableRepo)
		cache := newFakeCache()
		existing := storedTimetable("doc-1")
		repo.On("GetByDocumentID", "doc-1").Return(existing, nil)
		repo.On("Save", mock.Anything).Return(errors.New("db down"))
		svc := NewTimetableService(repo, cache)

		_, err := svc.Update(ctx, "doc-1", UpdateInput{Timeblocks: validBlocks()})
		assert.EqualError(t, err, "db down")
		assert.Empty(t, cache.ops)
	})

	t.Run("cache failure is non-fatal", func(t *testing.T) {
		repo := new(mockTimetableRepo)
		cache := newFakeCache()
		cache.delErr = errors.New("redis down")
		cache.setErr = errors.New("redis down")
		existing := storedTimetable("doc-1")
		repo.On("GetByDocumentID", "doc-1").Return(existing, nil)
		repo.On("Save", mock.Anything).Return(nil)
		svc := NewTimetableService(repo, cache)

		got, err := svc.Update(ctx, "doc-1", UpdateInput{Timeblocks: validBlocks()})
		assert.NoError(t, err)
		assert.True(t, got.Validated)
	})

	t.Run("unknown document", func(t *testing.T) {
		repo := new(mockTimetableRepo)
		repo.On("GetByDocumentID", "missing").Return(nil, nil)
		svc := NewTimetableService(repo, newFakeCache())

		_, err := svc.Update(ctx, "missing", UpdateInput{Timeblocks: validBlocks()})
		assert.ErrorIs(t, err, ErrTimetableNotFound)
	})
}

func TestTimetableService_CreateSaveAs(t *testing.T) {
	ctx := context.Background()

	t.Run("creates fresh identity without touching cache", func(t *testing.T) {
		repo := new(mockTimetableRepo)
		cache := newFakeCache()
		repo.On("Create", mock.MatchedBy(func(tt *model.Timetable) bool {
			return tt.ID != "" && tt.Validated &&
				tt.SavedName != nil && *tt.SavedName == "Term 1 draft" &&
				tt.DocumentID == nil
		})).Return(nil)
		svc := NewTimetableService(repo, cache)

		got, err := svc.CreateSaveAs(ctx, SaveAsInput{
			SavedName:  "  Term 1 draft  ",
			Timeblocks: validBlocks(),
		})
		assert.NoError(t, err)
		assert.NotEmpty(t, got.ID)
		assert.Empty(t, cache.ops)
		repo.AssertExpectations(t)
	})

	t.Run("copies keep the source document reference", func(t *testing.T) {
		repo := new(mockTimetableRepo)
		docID := "doc-9"
		repo.On("Create", mock.MatchedBy(func(tt *model.Timetable) bool {
			return tt.DocumentID != nil && *tt.DocumentID == "doc-9" && tt.ID != "tt-doc-9"
		})).Return(nil)
		svc := NewTimetableService(repo, newFakeCache())

		_, err := svc.CreateSaveAs(ctx, SaveAsInput{
			SavedName:  "copy",
			DocumentID: &docID,
			Timeblocks: validBlocks(),
		})
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("blank name rejected", func(t *testing.T) {
		svc := NewTimetableService(new(mockTimetableRepo), newFakeCache())
		_, err := svc.CreateSaveAs(ctx, SaveAsInput{SavedName: "   ", Timeblocks: validBlocks()})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("invalid blocks rejected", func(t *testing.T) {
		svc := NewTimetableService(new(mockTimetableRepo), newFakeCache())
		_, err := svc.CreateSaveAs(ctx, SaveAsInput{
			SavedName:  "broken",
			Timeblocks: model.TimeBlockList{{Day: "", Name: ""}},
		})
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
		assert.NotEmpty(t, verr.Reasons)
	})
}

func TestTimetableService_List(t *testing.T) {
	repo := new(mockTimetableRepo)
	repo.On("List", 20, 0).Return([]model.Timetable{*storedTimetable("doc-1")}, nil)
	svc := NewTimetableService(repo, newFakeCache())

	got, err := svc.List(0, -3)
	assert.NoError(t, err)
	assert.Len(t, got, 1)
	repo.AssertExpectations(t)
}
