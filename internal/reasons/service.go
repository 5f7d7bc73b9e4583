package reasons

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"redepharma/pharmacy-portal/pharmacy-portal-backend/internal/accreditation"
)

var ErrCodeTaken = errors.New("reason code already exists")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, reason *Reason) error {
	existing, err := s.repo.GetByCode(ctx, reason.Code)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrCodeTaken
	}
	return s.repo.Create(ctx, reason)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Reason, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]Reason, error) {
	return s.repo.List(ctx, activeOnly)
}

func (s *Service) Update(ctx context.Context, reason *Reason) error {
	return s.repo.Update(ctx, reason)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// Lookup adapts the reason table to the narrow read interface the
// accreditation core consumes.
type Lookup struct {
	repo Repository
}

func NewLookup(repo Repository) *Lookup {
	return &Lookup{repo: repo}
}

func (l *Lookup) GetByCode(ctx context.Context, code string) (*accreditation.Reason, error) {
	reason, err := l.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if reason == nil || !reason.Active {
		return nil, nil
	}
	return &accreditation.Reason{Code: reason.Code, Description: reason.Description}, nil
}

// Seed inserts the reason codes the transition matrix references, so a fresh
// database can accept transitions without manual setup.
func Seed(db *gorm.DB) error {
	seed := []Reason{
		{Code: accreditation.ReasonDescredenciamentoAPedido, Description: "Descredenciamento a pedido da farmácia"},
		{Code: accreditation.ReasonNaoRenovacaoRTA, Description: "Não renovação do registro do responsável técnico (RTA)"},
		{Code: accreditation.ReasonNaoHomologacao, Description: "Não homologação do credenciamento"},
		{Code: accreditation.ReasonDivergenciaCadastral, Description: "Divergência cadastral identificada"},
		{Code: accreditation.ReasonIrregularidade, Description: "Descredenciamento por irregularidades"},
		{Code: accreditation.ReasonFusaoIncorporacao, Description: "Fusão ou incorporação da empresa"},
		{Code: accreditation.ReasonBaixaCNPJ, Description: "Baixa do CNPJ"},
		{Code: accreditation.ReasonRecredenciamento, Description: "Recredenciamento"},
		{Code: accreditation.ReasonRegularidade, Description: "Regularização cadastral comprovada"},
	}
	for _, reason := range seed {
		reason.Active = true
		var existing Reason
		err := db.Where("code = ?", reason.Code).Attrs(reason).FirstOrCreate(&existing).Error
		if err != nil {
			return err
		}
	}
	return nil
}
