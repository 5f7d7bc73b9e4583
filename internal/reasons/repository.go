package reasons

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, reason *Reason) error
	GetByID(ctx context.Context, id uuid.UUID) (*Reason, error)
	GetByCode(ctx context.Context, code string) (*Reason, error)
	List(ctx context.Context, activeOnly bool) ([]Reason, error)
	Update(ctx context.Context, reason *Reason) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, reason *Reason) error {
	return r.db.WithContext(ctx).Create(reason).Error
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Reason, error) {
	var reason Reason
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&reason).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reason, nil
}

func (r *gormRepository) GetByCode(ctx context.Context, code string) (*Reason, error) {
	var reason Reason
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&reason).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reason, nil
}

func (r *gormRepository) List(ctx context.Context, activeOnly bool) ([]Reason, error) {
	var list []Reason
	query := r.db.WithContext(ctx).Order("code")
	if activeOnly {
		query = query.Where("active = ?", true)
	}
	if err := query.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *gormRepository) Update(ctx context.Context, reason *Reason) error {
	return r.db.WithContext(ctx).Save(reason).Error
}

func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&Reason{}, "id = ?", id).Error
}
