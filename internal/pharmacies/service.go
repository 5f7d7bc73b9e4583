package pharmacies

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"redepharma/pharmacy-portal/pharmacy-portal-backend/internal/accreditation"
)

var (
	ErrNotFound  = errors.New("pharmacy not found")
	ErrCNPJTaken = errors.New("a pharmacy with this CNPJ already exists")
)

type CreatePharmacyRequest struct {
	CNPJ          string
	CorporateName string
	TradeName     string
	Email         string
	Phone         string
	City          string
	State         string
	ActorID       uuid.UUID
}

type UpdatePharmacyRequest struct {
	TradeName *string
	Email     *string
	Phone     *string
	City      *string
	State     *string
}

type Service interface {
	Create(ctx context.Context, req CreatePharmacyRequest) (*Pharmacy, error)
	Get(ctx context.Context, id uuid.UUID) (*Pharmacy, error)
	List(ctx context.Context, filter Filter) ([]Pharmacy, error)
	Update(ctx context.Context, id uuid.UUID, req UpdatePharmacyRequest) (*Pharmacy, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type pharmacyService struct {
	repo          Repository
	accreditation accreditation.Service
	logger        *zap.Logger
}

func NewService(repo Repository, accreditationService accreditation.Service, logger *zap.Logger) Service {
	return &pharmacyService{
		repo:          repo,
		accreditation: accreditationService,
		logger:        logger,
	}
}

// Create registers the pharmacy and opens its accreditation record, so every
// pharmacy enters the registry with a tracked regulatory standing.
func (s *pharmacyService) Create(ctx context.Context, req CreatePharmacyRequest) (*Pharmacy, error) {
	existing, err := s.repo.GetByCNPJ(ctx, req.CNPJ)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrCNPJTaken
	}

	pharmacy := &Pharmacy{
		CNPJ:          req.CNPJ,
		CorporateName: req.CorporateName,
		TradeName:     req.TradeName,
		Email:         req.Email,
		Phone:         req.Phone,
		City:          req.City,
		State:         req.State,
	}
	if err := s.repo.Create(ctx, pharmacy); err != nil {
		return nil, err
	}

	_, err = s.accreditation.Create(ctx, accreditation.CreateRequest{
		PharmacyID: pharmacy.ID,
		ActorID:    req.ActorID,
	})
	if err != nil && !errors.Is(err, accreditation.ErrRecordExists) {
		s.logger.Error("failed to open accreditation record for new pharmacy",
			zap.String("pharmacy_id", pharmacy.ID.String()),
			zap.Error(err))
		// A pharmacy without an accreditation record must not stay in the
		// registry; its unique CNPJ would also block any retry.
		if delErr := s.repo.Delete(ctx, pharmacy.ID); delErr != nil {
			s.logger.Error("failed to remove pharmacy after accreditation failure",
				zap.String("pharmacy_id", pharmacy.ID.String()),
				zap.Error(delErr))
		}
		return nil, err
	}

	return pharmacy, nil
}

func (s *pharmacyService) Get(ctx context.Context, id uuid.UUID) (*Pharmacy, error) {
	pharmacy, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pharmacy == nil {
		return nil, ErrNotFound
	}
	return pharmacy, nil
}

func (s *pharmacyService) List(ctx context.Context, filter Filter) ([]Pharmacy, error) {
	return s.repo.List(ctx, filter)
}

func (s *pharmacyService) Update(ctx context.Context, id uuid.UUID, req UpdatePharmacyRequest) (*Pharmacy, error) {
	pharmacy, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pharmacy == nil {
		return nil, ErrNotFound
	}

	if req.TradeName != nil {
		pharmacy.TradeName = *req.TradeName
	}
	if req.Email != nil {
		pharmacy.Email = *req.Email
	}
	if req.Phone != nil {
		pharmacy.Phone = *req.Phone
	}
	if req.City != nil {
		pharmacy.City = *req.City
	}
	if req.State != nil {
		pharmacy.State = *req.State
	}

	if err := s.repo.Update(ctx, pharmacy); err != nil {
		return nil, err
	}
	return pharmacy, nil
}

func (s *pharmacyService) Delete(ctx context.Context, id uuid.UUID) error {
	pharmacy, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if pharmacy == nil {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}
