package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"learning-yogi/internal/model"
)

type TimetableRepository struct {
	db *gorm.DB
}

func NewTimetableRepository(db *gorm.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

func (r *TimetableRepository) Create(tt *model.Timetable) error {
	if err := r.db.Create(tt).Error; err != nil {
		return fmt.Errorf("create timetable failed: %w", err)
	}
	return nil
}

func (r *TimetableRepository) GetByDocumentID(documentID string) (*model.Timetable, error) {
	var tt model.Timetable
	if err := r.db.Where("document_id = ?", documentID).First(&tt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get timetable by document failed: %w", err)
	}
	return &tt, nil
}

func (r *TimetableRepository) List(limit, offset int) ([]model.Timetable, error) {
	var list []model.Timetable
	if err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list timetables failed: %w", err)
	}
	return list, nil
}

// Save rewrites the full row. Timetables are never partially patched;
// one update replaces the block sequence and metadata together.
func (r *TimetableRepository) Save(tt *model.Timetable) error {
	if err := r.db.Save(tt).Error; err != nil {
		return fmt.Errorf("save timetable failed: %w", err)
	}
	return nil
}

func (r *TimetableRepository) DeleteByDocumentID(documentID string) error {
	if err := r.db.Where("document_id = ?", documentID).Delete(&model.Timetable{}).Error; err != nil {
		return fmt.Errorf("delete timetable by document failed: %w", err)
	}
	return nil
}
