package accreditation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReasonLookup resolves a reason code against the domain reason table.
// Implementations return (nil, nil) for a code that does not exist.
type ReasonLookup interface {
	GetByCode(ctx context.Context, code string) (*Reason, error)
}

// Notifier receives successful status changes. Delivery is best effort and
// must not fail the transition.
type Notifier interface {
	NotifyStatusChanged(event StatusChangedEvent)
}

type CreateRequest struct {
	PharmacyID    uuid.UUID
	InitialStatus Status // defaults to ACTIVE
	ActorID       uuid.UUID
}

type UpdateStatusRequest struct {
	PharmacyID   uuid.UUID
	TargetStatus Status
	ReasonCode   *string
	ActorID      uuid.UUID
}

// TransitionsQuery selects the (status, reason) pair to match rules against:
// either a pharmacy's persisted pair or an explicit one, never both.
type TransitionsQuery struct {
	PharmacyID    *uuid.UUID
	CurrentStatus *Status
	CurrentReason *string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*AccreditationRecord, error)
	GetCurrentStatus(ctx context.Context, pharmacyID uuid.UUID) (*StatusView, error)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*AccreditationRecord, error)
	CanTransition(ctx context.Context, pharmacyID uuid.UUID, target Status, reasonCode *string) (bool, error)
	CheckReaccreditationGracePeriod(ctx context.Context, pharmacyID uuid.UUID) (*GracePeriodResult, error)
	GetPossibleTransitions(ctx context.Context, query TransitionsQuery) (*PossibleTransitionsView, error)
	ListRecords(ctx context.Context, status *Status) ([]AccreditationRecord, error)
	GetHistory(ctx context.Context, pharmacyID uuid.UUID) ([]AccreditationTransition, error)
}

type accreditationService struct {
	repo     Repository
	reasons  ReasonLookup
	rules    *RuleTable
	notifier Notifier
	logger   *zap.Logger
}

func NewService(repo Repository, reasons ReasonLookup, notifier Notifier, logger *zap.Logger) Service {
	return &accreditationService{
		repo:     repo,
		reasons:  reasons,
		rules:    NewRuleTable(),
		notifier: notifier,
		logger:   logger,
	}
}

func (s *accreditationService) Create(ctx context.Context, req CreateRequest) (*AccreditationRecord, error) {
	existing, err := s.repo.GetByPharmacyID(ctx, req.PharmacyID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrRecordExists
	}

	status := req.InitialStatus
	if status == "" {
		status = StatusActive
	}

	now := time.Now()
	engine := NewEngine(s.rules)
	engine.Start(&WorkflowContext{
		PharmacyID: req.PharmacyID,
		Status:     status,
		UpdatedAt:  now,
		UserID:     req.ActorID,
	})

	snapshot, err := json.Marshal(engine.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	record := &AccreditationRecord{
		PharmacyID:      req.PharmacyID,
		Status:          status,
		Snapshot:        snapshot,
		MachineVersion:  MachineVersion,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
		UpdatedByUserID: req.ActorID,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("accreditation record created",
		zap.String("pharmacy_id", req.PharmacyID.String()),
		zap.String("status", string(status)))
	return record, nil
}

func (s *accreditationService) GetCurrentStatus(ctx context.Context, pharmacyID uuid.UUID) (*StatusView, error) {
	record, err := s.repo.GetByPharmacyID(ctx, pharmacyID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrRecordNotFound
	}

	view := &StatusView{
		Status:     record.Status,
		ReasonCode: record.ReasonCode,
		UpdatedAt:  record.UpdatedAt,
	}
	if record.ReasonCode != nil {
		reason, err := s.reasons.GetByCode(ctx, *record.ReasonCode)
		if err != nil {
			return nil, err
		}
		if reason != nil {
			view.ReasonDescription = reason.Description
		}
	}
	return view, nil
}

func (s *accreditationService) UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*AccreditationRecord, error) {
	record, err := s.repo.GetByPharmacyID(ctx, req.PharmacyID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrRecordNotFound
	}
	readVersion := record.Version

	// Resolve the reason before any engine evaluation, so an unknown code
	// fails fast as a validation problem rather than a rejected transition.
	if req.ReasonCode != nil {
		reason, err := s.reasons.GetByCode(ctx, *req.ReasonCode)
		if err != nil {
			return nil, err
		}
		if reason == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownReason, *req.ReasonCode)
		}
	}

	wctx := s.restoreContext(record)
	event := UpdateStatusEvent{
		Status:     req.TargetStatus,
		ReasonCode: req.ReasonCode,
		UserID:     req.ActorID,
		OccurredAt: time.Now(),
	}

	engine := NewEngine(s.rules)
	engine.Start(wctx)
	if !engine.Send(event) {
		// Comparing statuses is not enough here: a rejected move to the
		// current status would look like a success and re-persist stale
		// state with a bumped version.
		return nil, &TransitionError{
			FromStatus: record.Status,
			FromReason: record.ReasonCode,
			ToStatus:   req.TargetStatus,
			ToReason:   req.ReasonCode,
		}
	}

	snapshot := engine.Snapshot()
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	fromStatus := record.Status
	record.Status = snapshot.Status
	record.ReasonCode = snapshot.ReasonCode
	record.Snapshot = raw
	record.MachineVersion = MachineVersion
	record.UpdatedAt = snapshot.UpdatedAt
	record.UpdatedByUserID = snapshot.UserID

	if err := s.repo.UpdateVersioned(ctx, record, readVersion); err != nil {
		return nil, err
	}

	transition := &AccreditationTransition{
		PharmacyID: record.PharmacyID,
		FromStatus: fromStatus,
		ToStatus:   record.Status,
		ReasonCode: record.ReasonCode,
		ChangedAt:  record.UpdatedAt,
		ChangedBy:  record.UpdatedByUserID,
	}
	if err := s.repo.CreateTransition(ctx, transition); err != nil {
		s.logger.Warn("failed to record transition history",
			zap.String("pharmacy_id", record.PharmacyID.String()),
			zap.Error(err))
	}

	if s.notifier != nil {
		s.notifier.NotifyStatusChanged(StatusChangedEvent{
			PharmacyID: record.PharmacyID,
			FromStatus: fromStatus,
			ToStatus:   record.Status,
			ReasonCode: record.ReasonCode,
			ChangedBy:  record.UpdatedByUserID,
			ChangedAt:  record.UpdatedAt,
		})
	}

	s.logger.Info("accreditation status updated",
		zap.String("pharmacy_id", record.PharmacyID.String()),
		zap.String("from", string(fromStatus)),
		zap.String("to", string(record.Status)),
		zap.Int64("version", record.Version))
	return record, nil
}

// CanTransition is a side-effect-free probe. A missing record or a no-op
// (same status and reason as stored) answers false rather than erroring.
func (s *accreditationService) CanTransition(ctx context.Context, pharmacyID uuid.UUID, target Status, reasonCode *string) (bool, error) {
	record, err := s.repo.GetByPharmacyID(ctx, pharmacyID)
	if err != nil {
		return false, err
	}
	if record == nil {
		return false, nil
	}
	if record.Status == target && equalReason(record.ReasonCode, reasonCode) {
		return false, nil
	}
	if reasonCode != nil {
		reason, err := s.reasons.GetByCode(ctx, *reasonCode)
		if err != nil {
			return false, err
		}
		if reason == nil {
			return false, nil
		}
	}

	engine := NewEngine(s.rules)
	engine.Start(s.restoreContext(record))
	accepted := engine.Send(UpdateStatusEvent{
		Status:     target,
		ReasonCode: reasonCode,
		OccurredAt: time.Now(),
	})
	return accepted, nil
}

func (s *accreditationService) CheckReaccreditationGracePeriod(ctx context.Context, pharmacyID uuid.UUID) (*GracePeriodResult, error) {
	record, err := s.repo.GetByPharmacyID(ctx, pharmacyID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrRecordNotFound
	}
	updatedAt := record.UpdatedAt
	result := CheckGracePeriod(record.ReasonCode, &updatedAt, time.Now())
	return &result, nil
}

func (s *accreditationService) GetPossibleTransitions(ctx context.Context, query TransitionsQuery) (*PossibleTransitionsView, error) {
	if (query.PharmacyID == nil) == (query.CurrentStatus == nil) {
		return nil, ErrInvalidQuery
	}

	status := query.CurrentStatus
	reason := query.CurrentReason
	if query.PharmacyID != nil {
		record, err := s.repo.GetByPharmacyID(ctx, *query.PharmacyID)
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, ErrRecordNotFound
		}
		status = &record.Status
		reason = record.ReasonCode
	}

	return &PossibleTransitionsView{
		CurrentStatus: *status,
		CurrentReason: reason,
		Transitions:   s.rules.PossibleTransitionsFor(*status, reason),
	}, nil
}

func (s *accreditationService) ListRecords(ctx context.Context, status *Status) ([]AccreditationRecord, error) {
	return s.repo.List(ctx, status)
}

func (s *accreditationService) GetHistory(ctx context.Context, pharmacyID uuid.UUID) ([]AccreditationTransition, error) {
	record, err := s.repo.GetByPharmacyID(ctx, pharmacyID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrRecordNotFound
	}
	return s.repo.ListTransitions(ctx, pharmacyID)
}

// restoreContext rebuilds the workflow context from the stored snapshot, or
// from the record's flattened columns when no usable snapshot exists. A
// snapshot written by a different rule revision is not trusted; the columns
// are the migration path.
func (s *accreditationService) restoreContext(record *AccreditationRecord) *WorkflowContext {
	if len(record.Snapshot) > 0 {
		var snapshot Snapshot
		if err := json.Unmarshal(record.Snapshot, &snapshot); err == nil &&
			snapshot.MachineVersion == MachineVersion {
			return &WorkflowContext{
				PharmacyID: record.PharmacyID,
				Status:     snapshot.Status,
				ReasonCode: snapshot.ReasonCode,
				UpdatedAt:  snapshot.UpdatedAt,
				UserID:     snapshot.UserID,
			}
		}
		s.logger.Warn("discarding unreadable or outdated snapshot",
			zap.String("pharmacy_id", record.PharmacyID.String()),
			zap.String("machine_version", record.MachineVersion))
	}
	return &WorkflowContext{
		PharmacyID: record.PharmacyID,
		Status:     record.Status,
		ReasonCode: record.ReasonCode,
		UpdatedAt:  record.UpdatedAt,
		UserID:     record.UpdatedByUserID,
	}
}

func equalReason(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
