package pharmacies

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"redepharma/pharmacy-portal/pharmacy-portal-backend/internal/accreditation"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, pharmacy *Pharmacy) error {
	args := m.Called(ctx, pharmacy)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*Pharmacy, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Pharmacy), args.Error(1)
}

func (m *MockRepository) GetByCNPJ(ctx context.Context, cnpj string) (*Pharmacy, error) {
	args := m.Called(ctx, cnpj)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Pharmacy), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, filter Filter) ([]Pharmacy, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]Pharmacy), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, pharmacy *Pharmacy) error {
	args := m.Called(ctx, pharmacy)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockAccreditationService is a mock implementation of accreditation.Service
type MockAccreditationService struct {
	mock.Mock
}

func (m *MockAccreditationService) Create(ctx context.Context, req accreditation.CreateRequest) (*accreditation.AccreditationRecord, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accreditation.AccreditationRecord), args.Error(1)
}

func (m *MockAccreditationService) GetCurrentStatus(ctx context.Context, pharmacyID uuid.UUID) (*accreditation.StatusView, error) {
	args := m.Called(ctx, pharmacyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accreditation.StatusView), args.Error(1)
}

func (m *MockAccreditationService) UpdateStatus(ctx context.Context, req accreditation.UpdateStatusRequest) (*accreditation.AccreditationRecord, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accreditation.AccreditationRecord), args.Error(1)
}

func (m *MockAccreditationService) CanTransition(ctx context.Context, pharmacyID uuid.UUID, target accreditation.Status, reasonCode *string) (bool, error) {
	args := m.Called(ctx, pharmacyID, target, reasonCode)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccreditationService) CheckReaccreditationGracePeriod(ctx context.Context, pharmacyID uuid.UUID) (*accreditation.GracePeriodResult, error) {
	args := m.Called(ctx, pharmacyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accreditation.GracePeriodResult), args.Error(1)
}

func (m *MockAccreditationService) GetPossibleTransitions(ctx context.Context, query accreditation.TransitionsQuery) (*accreditation.PossibleTransitionsView, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accreditation.PossibleTransitionsView), args.Error(1)
}

func (m *MockAccreditationService) ListRecords(ctx context.Context, status *accreditation.Status) ([]accreditation.AccreditationRecord, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]accreditation.AccreditationRecord), args.Error(1)
}

func (m *MockAccreditationService) GetHistory(ctx context.Context, pharmacyID uuid.UUID) ([]accreditation.AccreditationTransition, error) {
	args := m.Called(ctx, pharmacyID)
	return args.Get(0).([]accreditation.AccreditationTransition), args.Error(1)
}

func TestCreateOpensAccreditationRecord(t *testing.T) {
	mockRepo := new(MockRepository)
	mockAccreditation := new(MockAccreditationService)
	service := NewService(mockRepo, mockAccreditation, zap.NewNop())

	ctx := context.Background()
	actor := uuid.New()

	mockRepo.On("GetByCNPJ", ctx, "12345678000190").Return(nil, nil)
	mockRepo.On("Create", ctx, mock.AnythingOfType("*pharmacies.Pharmacy")).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*Pharmacy).ID = uuid.New()
	})
	mockAccreditation.On("Create", ctx, mock.AnythingOfType("accreditation.CreateRequest")).
		Return(&accreditation.AccreditationRecord{Version: 1}, nil)

	pharmacy, err := service.Create(ctx, CreatePharmacyRequest{
		CNPJ:          "12345678000190",
		CorporateName: "Farmacia Central Ltda",
		ActorID:       actor,
	})

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, pharmacy.ID)
	mockAccreditation.AssertExpectations(t)
}

func TestCreateDuplicateCNPJ(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, new(MockAccreditationService), zap.NewNop())

	ctx := context.Background()
	mockRepo.On("GetByCNPJ", ctx, "12345678000190").Return(&Pharmacy{CNPJ: "12345678000190"}, nil)

	_, err := service.Create(ctx, CreatePharmacyRequest{
		CNPJ:          "12345678000190",
		CorporateName: "Farmacia Central Ltda",
	})

	assert.ErrorIs(t, err, ErrCNPJTaken)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// TestCreateRollsBackWhenAccreditationFails checks that a pharmacy row does
// not survive a failed accreditation record creation: the row is removed so a
// retry with the same CNPJ can succeed.
func TestCreateRollsBackWhenAccreditationFails(t *testing.T) {
	mockRepo := new(MockRepository)
	mockAccreditation := new(MockAccreditationService)
	service := NewService(mockRepo, mockAccreditation, zap.NewNop())

	ctx := context.Background()
	storageErr := errors.New("insert failed")

	var createdID uuid.UUID
	mockRepo.On("GetByCNPJ", ctx, "12345678000190").Return(nil, nil)
	mockRepo.On("Create", ctx, mock.AnythingOfType("*pharmacies.Pharmacy")).Return(nil).Run(func(args mock.Arguments) {
		pharmacy := args.Get(1).(*Pharmacy)
		pharmacy.ID = uuid.New()
		createdID = pharmacy.ID
	})
	mockAccreditation.On("Create", ctx, mock.AnythingOfType("accreditation.CreateRequest")).
		Return(nil, storageErr)
	mockRepo.On("Delete", ctx, mock.MatchedBy(func(id uuid.UUID) bool { return id == createdID })).
		Return(nil)

	_, err := service.Create(ctx, CreatePharmacyRequest{
		CNPJ:          "12345678000190",
		CorporateName: "Farmacia Central Ltda",
	})

	assert.ErrorIs(t, err, storageErr)
	mockRepo.AssertExpectations(t)
}
