package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"learning-yogi/internal/extraction"
	"learning-yogi/internal/model"
	"learning-yogi/internal/pkg/pdfcheck"
	"learning-yogi/internal/storage"
	"learning-yogi/internal/timetable"
)

// DocumentRepo is the persistence contract for document records.
type DocumentRepo interface {
	Create(doc *model.Document) error
	GetByID(id string) (*model.Document, error)
	List(limit, offset int) ([]model.Document, error)
	UpdateStatus(id string, status model.DocumentStatus, errorDetail *string) error
	Delete(id string) error
}

// ExtractionGateway is the external AI middleware contract. Every call
// is a pipeline suspension point bounded only by the transport timeout.
type ExtractionGateway interface {
	Enhance(ctx context.Context, imagePath string) (string, error)
	ProcessOCR(ctx context.Context, imagePath string) (extraction.OCRResult, error)
	QualityGate(ctx context.Context, ocr extraction.OCRResult) (extraction.QualityGateDecision, error)
	ExtractTimetable(ctx context.Context, imagePath string) (extraction.TimetableData, error)
}

// PipelineScheduler hands a submitted document to an asynchronous task
// runner. When none is wired, the pipeline runs on a background
// goroutine of the same process instead.
type PipelineScheduler interface {
	Schedule(ctx context.Context, documentID string) error
}

// DocumentService drives the upload → enhancement → OCR → quality gate →
// extraction → validation lifecycle. Within one document the stages run
// strictly sequentially; across documents there is no ordering.
type DocumentService struct {
	docRepo   DocumentRepo
	ttRepo    TimetableRepo
	store     storage.Storage
	gateway   ExtractionGateway
	scheduler PipelineScheduler
}

func NewDocumentService(
	docRepo DocumentRepo,
	ttRepo TimetableRepo,
	store storage.Storage,
	gateway ExtractionGateway,
	scheduler PipelineScheduler,
) *DocumentService {
	return &DocumentService{
		docRepo:   docRepo,
		ttRepo:    ttRepo,
		store:     store,
		gateway:   gateway,
		scheduler: scheduler,
	}
}

// SubmitInput describes an uploaded file. Size is whatever the reader
// yields; the transport layer enforces the upload cap.
type SubmitInput struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

// Submit stores the file, creates the document in state uploaded, and
// schedules processing. It returns before the pipeline completes; the
// caller observes progress by polling document status.
func (s *DocumentService) Submit(ctx context.Context, input SubmitInput) (*model.Document, error) {
	if input.Reader == nil || strings.TrimSpace(input.Filename) == "" {
		return nil, ErrInvalidInput
	}

	data, err := io.ReadAll(input.Reader)
	if err != nil {
		return nil, fmt.Errorf("read upload failed: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrInvalidInput
	}

	kind := detectMediaKind(input.Filename, input.ContentType)
	if kind == model.MediaPDF {
		if _, err := pdfcheck.PageCount(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("%w: unreadable pdf", ErrInvalidInput)
		}
	}

	id := uuid.NewString()
	key := "documents/" + id + strings.ToLower(filepath.Ext(input.Filename))
	locator, err := s.store.Put(ctx, key, bytes.NewReader(data), storage.PutOptions{
		Size:        int64(len(data)),
		ContentType: input.ContentType,
		Metadata:    map[string]string{"original-filename": input.Filename},
	})
	if err != nil {
		return nil, fmt.Errorf("store upload failed: %w", err)
	}

	doc := &model.Document{
		ID:               id,
		OriginalFilename: input.Filename,
		StoragePath:      locator,
		MediaKind:        kind,
		SizeBytes:        int64(len(data)),
		Status:           model.StatusUploaded,
	}
	if err := s.docRepo.Create(doc); err != nil {
		// Roll the object back so storage holds no orphan.
		if delErr := s.store.Delete(ctx, locator); delErr != nil {
			log.Printf("rollback stored file %s failed: %v", locator, delErr)
		}
		return nil, err
	}

	s.schedule(doc.ID)
	return doc, nil
}

// schedule is fire-and-forget relative to the submitter. A scheduler
// failure falls back to an in-process goroutine so an accepted upload is
// never left stuck in uploaded.
func (s *DocumentService) schedule(documentID string) {
	if s.scheduler != nil {
		if err := s.scheduler.Schedule(context.Background(), documentID); err == nil {
			return
		} else {
			log.Printf("schedule pipeline for document %s failed, running in-process: %v", documentID, err)
		}
	}
	go func() {
		if err := s.RunPipeline(context.Background(), documentID); err != nil {
			log.Printf("pipeline for document %s failed: %v", documentID, err)
		}
	}()
}

// RunPipeline executes the full processing pipeline for one document.
// It is the single writer for that document's status; every transition
// is persisted before the next stage begins. Any error after the
// document leaves uploaded marks it failed with the error recorded, and
// this component never retries on its own.
func (s *DocumentService) RunPipeline(ctx context.Context, documentID string) error {
	doc, err := s.docRepo.GetByID(documentID)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrDocumentNotFound
	}
	if doc.Status != model.StatusUploaded {
		return fmt.Errorf("document %s is %s, not %s", doc.ID, doc.Status, model.StatusUploaded)
	}

	if err := s.transition(doc, model.StatusProcessing, nil); err != nil {
		return err
	}

	enhancedPath, err := s.gateway.Enhance(ctx, doc.StoragePath)
	if err != nil {
		return s.fail(doc, err)
	}

	ocr, err := s.gateway.ProcessOCR(ctx, enhancedPath)
	if err != nil {
		return s.fail(doc, err)
	}

	decision, err := s.gateway.QualityGate(ctx, ocr)
	if err != nil {
		return s.fail(doc, err)
	}
	route, err := extraction.DecideRoute(decision)
	if err != nil {
		return s.fail(doc, err)
	}
	log.Printf("document %s routed %s: %s", doc.ID, route, decision.Reason)

	if route == extraction.RouteDirect {
		return s.transition(doc, model.StatusCompleted, nil)
	}

	if err := s.transition(doc, model.StatusProcessingAI, nil); err != nil {
		return err
	}

	data, err := s.gateway.ExtractTimetable(ctx, enhancedPath)
	if err != nil {
		return s.fail(doc, err)
	}

	result := timetable.Validate(data.Timeblocks)
	tt := &model.Timetable{
		ID:          uuid.NewString(),
		DocumentID:  &doc.ID,
		TeacherName: data.Teacher,
		ClassName:   data.ClassName,
		Term:        data.Term,
		Year:        data.Year,
		Timeblocks:  data.Timeblocks,
		Confidence:  ocr.Confidence,
		Validated:   result.Valid,
	}
	if err := s.ttRepo.Create(tt); err != nil {
		return s.fail(doc, err)
	}

	if result.Valid {
		return s.transition(doc, model.StatusCompleted, nil)
	}
	detail := strings.Join(result.Errors, "; ")
	return s.transition(doc, model.StatusValidationFailed, &detail)
}

func (s *DocumentService) Get(documentID string) (*model.Document, error) {
	doc, err := s.docRepo.GetByID(documentID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

func (s *DocumentService) List(limit, offset int) ([]model.Document, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.docRepo.List(limit, offset)
}

// Delete removes the backing file first. When storage deletion fails the
// database record is left untouched and the error propagates, so the
// locator is never silently lost. A timetable extracted from the
// document goes with it.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	doc, err := s.docRepo.GetByID(documentID)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrDocumentNotFound
	}
	if err := s.store.Delete(ctx, doc.StoragePath); err != nil {
		return fmt.Errorf("delete stored file failed: %w", err)
	}
	if err := s.ttRepo.DeleteByDocumentID(documentID); err != nil {
		return err
	}
	return s.docRepo.Delete(documentID)
}

// transition persists one lifecycle step, rejecting anything the
// transition table does not list.
func (s *DocumentService) transition(doc *model.Document, next model.DocumentStatus, errorDetail *string) error {
	if !doc.Status.CanTransition(next) {
		return fmt.Errorf("illegal document transition %s -> %s", doc.Status, next)
	}
	if err := s.docRepo.UpdateStatus(doc.ID, next, errorDetail); err != nil {
		return err
	}
	doc.Status = next
	doc.ErrorDetail = errorDetail
	return nil
}

// fail records the pipeline error on the document and returns it. The
// failure is only observable by polling status; the upload call has long
// since returned.
func (s *DocumentService) fail(doc *model.Document, cause error) error {
	detail := cause.Error()
	if err := s.transition(doc, model.StatusFailed, &detail); err != nil {
		log.Printf("mark document %s failed errored: %v", doc.ID, err)
	}
	return cause
}

func detectMediaKind(filename, contentType string) model.MediaKind {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case strings.HasPrefix(ct, "image/"):
		return model.MediaImage
	case ct == "application/pdf" || ext == ".pdf":
		return model.MediaPDF
	case ext == ".jpg" || ext == ".jpeg" || ext == ".png" || ext == ".gif" || ext == ".webp":
		return model.MediaImage
	default:
		return model.MediaUnknown
	}
}
