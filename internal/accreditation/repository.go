package accreditation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, record *AccreditationRecord) error
	GetByPharmacyID(ctx context.Context, pharmacyID uuid.UUID) (*AccreditationRecord, error)
	UpdateVersioned(ctx context.Context, record *AccreditationRecord, expectedVersion int64) error
	List(ctx context.Context, status *Status) ([]AccreditationRecord, error)

	CreateTransition(ctx context.Context, transition *AccreditationTransition) error
	ListTransitions(ctx context.Context, pharmacyID uuid.UUID) ([]AccreditationTransition, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, record *AccreditationRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *gormRepository) GetByPharmacyID(ctx context.Context, pharmacyID uuid.UUID) (*AccreditationRecord, error) {
	var record AccreditationRecord
	err := r.db.WithContext(ctx).Where("pharmacy_id = ?", pharmacyID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateVersioned persists the record only if its stored version still equals
// expectedVersion. Zero affected rows means another writer won the race.
func (r *gormRepository) UpdateVersioned(ctx context.Context, record *AccreditationRecord, expectedVersion int64) error {
	res := r.db.WithContext(ctx).
		Model(&AccreditationRecord{}).
		Where("pharmacy_id = ? AND version = ?", record.PharmacyID, expectedVersion).
		Updates(map[string]any{
			"status":             record.Status,
			"reason_code":        record.ReasonCode,
			"snapshot":           record.Snapshot,
			"machine_version":    record.MachineVersion,
			"version":            expectedVersion + 1,
			"updated_at":         record.UpdatedAt,
			"updated_by_user_id": record.UpdatedByUserID,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleWrite
	}
	record.Version = expectedVersion + 1
	return nil
}

func (r *gormRepository) List(ctx context.Context, status *Status) ([]AccreditationRecord, error) {
	var records []AccreditationRecord
	query := r.db.WithContext(ctx).Order("updated_at DESC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *gormRepository) CreateTransition(ctx context.Context, transition *AccreditationTransition) error {
	if transition.ChangedAt.IsZero() {
		transition.ChangedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(transition).Error
}

func (r *gormRepository) ListTransitions(ctx context.Context, pharmacyID uuid.UUID) ([]AccreditationTransition, error) {
	var transitions []AccreditationTransition
	err := r.db.WithContext(ctx).
		Where("pharmacy_id = ?", pharmacyID).
		Order("changed_at DESC").
		Find(&transitions).Error
	if err != nil {
		return nil, err
	}
	return transitions, nil
}
