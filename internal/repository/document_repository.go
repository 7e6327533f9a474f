package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"learning-yogi/internal/model"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(doc *model.Document) error {
	if err := r.db.Create(doc).Error; err != nil {
		return fmt.Errorf("create document failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(id string) (*model.Document, error) {
	var doc model.Document
	if err := r.db.Where("id = ?", id).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get document failed: %w", err)
	}
	return &doc, nil
}

func (r *DocumentRepository) List(limit, offset int) ([]model.Document, error) {
	var docs []model.Document
	if err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list documents failed: %w", err)
	}
	return docs, nil
}

// UpdateStatus persists a lifecycle transition. Each stage of the
// pipeline calls this before the next stage begins so a restart leaves
// the document in a recoverable state.
func (r *DocumentRepository) UpdateStatus(id string, status model.DocumentStatus, errorDetail *string) error {
	updates := map[string]interface{}{
		"status":       status,
		"error_detail": errorDetail,
	}
	if err := r.db.Model(&model.Document{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return fmt.Errorf("update document status failed: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Delete(id string) error {
	if err := r.db.Where("id = ?", id).Delete(&model.Document{}).Error; err != nil {
		return fmt.Errorf("delete document failed: %w", err)
	}
	return nil
}
