package pharmacies

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Filter narrows List results.
type Filter struct {
	State string
	City  string
}

type Repository interface {
	Create(ctx context.Context, pharmacy *Pharmacy) error
	GetByID(ctx context.Context, id uuid.UUID) (*Pharmacy, error)
	GetByCNPJ(ctx context.Context, cnpj string) (*Pharmacy, error)
	List(ctx context.Context, filter Filter) ([]Pharmacy, error)
	Update(ctx context.Context, pharmacy *Pharmacy) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, pharmacy *Pharmacy) error {
	return r.db.WithContext(ctx).Create(pharmacy).Error
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*Pharmacy, error) {
	var pharmacy Pharmacy
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&pharmacy).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pharmacy, nil
}

func (r *gormRepository) GetByCNPJ(ctx context.Context, cnpj string) (*Pharmacy, error) {
	var pharmacy Pharmacy
	err := r.db.WithContext(ctx).Where("cnpj = ?", cnpj).First(&pharmacy).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pharmacy, nil
}

func (r *gormRepository) List(ctx context.Context, filter Filter) ([]Pharmacy, error) {
	var list []Pharmacy
	query := r.db.WithContext(ctx).Order("corporate_name")
	if filter.State != "" {
		query = query.Where("state = ?", filter.State)
	}
	if filter.City != "" {
		query = query.Where("city = ?", filter.City)
	}
	if err := query.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *gormRepository) Update(ctx context.Context, pharmacy *Pharmacy) error {
	return r.db.WithContext(ctx).Save(pharmacy).Error
}

func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&Pharmacy{}, "id = ?", id).Error
}
