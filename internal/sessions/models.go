package sessions

import (
	"time"

	"cineseat/internal/layout"

	"github.com/google/uuid"
)

// Session is one screening of a movie in an auditorium. The auditorium shape
// is stored as the declarative layout it was created with; the concrete seat
// rows live in the inventory package and are provisioned from it exactly once.
type Session struct {
	ID             uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	MovieTitle     string        `gorm:"not null"`
	Auditorium     string        `gorm:"not null"`
	StartsAt       time.Time     `gorm:"not null;index"`
	BasePrice      float64       `gorm:"not null"`
	VIPPrice       float64       `gorm:"not null"`
	Layout         layout.Layout `gorm:"type:jsonb;not null"`
	SeatsGenerated bool          `gorm:"default:false"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Session) TableName() string {
	return "sessions"
}

// Prices returns the session's price tiers in the form the expander consumes.
func (s *Session) Prices() layout.Prices {
	return layout.Prices{Base: s.BasePrice, VIP: s.VIPPrice}
}
