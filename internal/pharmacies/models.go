package pharmacies

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Pharmacy is a regulated establishment in the registry.
type Pharmacy struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CNPJ          string         `gorm:"uniqueIndex;not null" json:"cnpj"`
	CorporateName string         `gorm:"not null" json:"corporate_name"`
	TradeName     string         `json:"trade_name"`
	Email         string         `json:"email"`
	Phone         string         `json:"phone"`
	City          string         `json:"city"`
	State         string         `json:"state"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
