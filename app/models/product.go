package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalogue item. Deletion only sets IsDeleted; order lines
// keep pointing at the row.
type Product struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"size:255;not null"`
	Description *string         `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock       int             `gorm:"not null;default:0"`
	IsDeleted   bool            `gorm:"not null;default:false;index"`
	UserID      uint            `gorm:"not null;index"`
	User        *User           `gorm:"constraint:OnDelete:CASCADE"`
	CategoryID  *uint           `gorm:"index"`
	Category    *Category       `gorm:"constraint:OnDelete:SET NULL"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p *Product) OwnerID() uint       { return p.UserID }
func (p *Product) IsSoftDeleted() bool { return p.IsDeleted }
