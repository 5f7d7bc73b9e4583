package accreditation

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Status is the regulatory standing of a pharmacy.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// MachineVersion tags snapshots with the revision of the transition rules
// that produced them. Bump it whenever the rule table or engine states change
// so old snapshots can be migrated instead of misread.
const MachineVersion = "accreditation-status.v2"

// Disaccreditation reason codes (ACTIVE -> INACTIVE).
const (
	ReasonDescredenciamentoAPedido = "DESCREDENCIAMENTO_A_PEDIDO"
	ReasonNaoRenovacaoRTA          = "NAO_RENOVACAO_RTA"
	ReasonNaoHomologacao           = "NAO_HOMOLOGACAO"
	ReasonDivergenciaCadastral     = "DIVERGENCIA_CADASTRAL"
	ReasonIrregularidade           = "DESCREDENCIAMENTO_IRREGULARIDADE"
	ReasonFusaoIncorporacao        = "FUSAO_INCORPORACAO"
	ReasonBaixaCNPJ                = "BAIXA_CNPJ"
)

// Re-accreditation reason codes (INACTIVE -> ACTIVE).
const (
	ReasonRecredenciamento = "RECREDENCIAMENTO"
	ReasonRegularidade     = "REGULARIDADE"
)

// AccreditationRecord is the durable row for a pharmacy's accreditation.
// The flattened status/reason_code columns are a queryable projection of the
// snapshot and must always agree with it.
type AccreditationRecord struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PharmacyID      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"pharmacy_id"`
	Status          Status         `gorm:"not null" json:"status"`
	ReasonCode      *string        `json:"reason_code"`
	Snapshot        datatypes.JSON `json:"snapshot"`
	MachineVersion  string         `gorm:"not null" json:"machine_version"`
	Version         int64          `gorm:"not null;default:1" json:"version"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	UpdatedByUserID uuid.UUID      `gorm:"type:uuid" json:"updated_by_user_id"`
}

// AccreditationTransition records one successful status change.
type AccreditationTransition struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PharmacyID uuid.UUID `gorm:"type:uuid;not null;index" json:"pharmacy_id"`
	FromStatus Status    `gorm:"not null" json:"from_status"`
	ToStatus   Status    `gorm:"not null" json:"to_status"`
	ReasonCode *string   `json:"reason_code"`
	ChangedAt  time.Time `json:"changed_at"`
	ChangedBy  uuid.UUID `gorm:"type:uuid;not null" json:"changed_by"`
}

// Snapshot is the serialized workflow context persisted on the record. It is
// the resumable state: a request deserializes it, drives the engine through
// one event and writes the replacement back.
type Snapshot struct {
	MachineVersion string    `json:"machine_version"`
	Status         Status    `json:"status"`
	ReasonCode     *string   `json:"reason_code"`
	UpdatedAt      time.Time `json:"updated_at"`
	UserID         uuid.UUID `json:"user_id"`
}

// WorkflowContext is the in-memory state the engine mutates. It lives for one
// request only.
type WorkflowContext struct {
	PharmacyID uuid.UUID
	Status     Status
	ReasonCode *string
	UpdatedAt  time.Time
	UserID     uuid.UUID
}

// UpdateStatusEvent asks the engine to move the context to a new status.
type UpdateStatusEvent struct {
	Status     Status
	ReasonCode *string
	UserID     uuid.UUID
	OccurredAt time.Time
}

// Reason is the narrow view of a domain reason the core consumes.
type Reason struct {
	Code        string
	Description string
}

// StatusView is the read model returned by GetCurrentStatus.
type StatusView struct {
	Status            Status    `json:"status"`
	ReasonCode        *string   `json:"reason_code"`
	ReasonDescription string    `json:"reason_description,omitempty"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// PossibleTransition groups the reason codes that may accompany a move to one
// target status.
type PossibleTransition struct {
	ToStatus           Status   `json:"to_status"`
	AllowedReasonCodes []string `json:"allowed_reason_codes"`
}

// PossibleTransitionsView is the read model returned by GetPossibleTransitions.
type PossibleTransitionsView struct {
	CurrentStatus Status               `json:"current_status"`
	CurrentReason *string              `json:"current_reason"`
	Transitions   []PossibleTransition `json:"transitions"`
}

// StatusChangedEvent is published to the notifier after a persisted transition.
type StatusChangedEvent struct {
	PharmacyID uuid.UUID `json:"pharmacy_id"`
	FromStatus Status    `json:"from_status"`
	ToStatus   Status    `json:"to_status"`
	ReasonCode *string   `json:"reason_code"`
	ChangedBy  uuid.UUID `json:"changed_by"`
	ChangedAt  time.Time `json:"changed_at"`
}
