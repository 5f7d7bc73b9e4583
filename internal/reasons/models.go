package reasons

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reason is a domain reason for an accreditation status. The code is the
// stable business key the transition matrix is written against; the surrogate
// id exists only for storage.
type Reason struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code        string         `gorm:"uniqueIndex;not null" json:"code"`
	Description string         `gorm:"not null" json:"description"`
	Active      bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
