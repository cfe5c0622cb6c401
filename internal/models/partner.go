package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PartnerStatus string

const (
	PartnerPending  PartnerStatus = "pending"
	PartnerAccepted PartnerStatus = "accepted"
	PartnerBlocked  PartnerStatus = "blocked"
)

// GooningPartner is a single row per unordered pair of users. UserID is the
// requester and PartnerID the target; PairKey enforces one row per pair.
type GooningPartner struct {
	ID        string        `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID    string        `json:"userId" gorm:"type:varchar(191);not null;index"`
	User      *User         `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	PartnerID string        `json:"partnerId" gorm:"type:varchar(191);not null;index"`
	Partner   *User         `json:"-" gorm:"foreignKey:PartnerID;constraint:OnDelete:CASCADE"`
	Status    PartnerStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	PairKey   string        `json:"-" gorm:"type:varchar(400);not null;uniqueIndex"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func (p *GooningPartner) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.PairKey == "" {
		p.PairKey = PairKey(p.UserID, p.PartnerID)
	}
	return nil
}

// PairKey returns an order-independent key for two user ids.
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// PartnerRequest is the body of /api/partners/request and /api/partners/accept
type PartnerRequest struct {
	PartnerID string `json:"partnerId" validate:"required"`
}
