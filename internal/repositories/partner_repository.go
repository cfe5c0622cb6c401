package repositories

import (
	"context"
	"errors"

	"github.com/anonto42/gooners/backend/internal/models"
	"gorm.io/gorm"
)

// PartnerRepository defines the interface for partner (friend) relations
type PartnerRepository interface {
	SendPartnerRequest(ctx context.Context, userID, partnerID string) (*models.GooningPartner, *models.Notification, error)
	AcceptPartnerRequest(ctx context.Context, userID, partnerID string) error
	GetPartners(ctx context.Context, userID string) ([]models.User, error)
	GetPendingRequests(ctx context.Context, userID string) ([]models.GooningPartner, error)
}

// PostgresPartnerRepository implements PartnerRepository for PostgreSQL
type PostgresPartnerRepository struct {
	db *gorm.DB
}

// NewPostgresPartnerRepository creates a new PostgresPartnerRepository
func NewPostgresPartnerRepository(db *gorm.DB) *PostgresPartnerRepository {
	return &PostgresPartnerRepository{db: db}
}

// SendPartnerRequest creates a pending relation from userID to partnerID and
// notifies the target. Only one relation may exist per pair, in either direction.
func (r *PostgresPartnerRepository) SendPartnerRequest(ctx context.Context, userID, partnerID string) (*models.GooningPartner, *models.Notification, error) {
	if userID == partnerID {
		return nil, nil, ErrSelfRelation
	}

	relation := &models.GooningPartner{
		UserID:    userID,
		PartnerID: partnerID,
		Status:    models.PartnerPending,
	}
	var notification *models.Notification
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var target models.User
		err := tx.Select("id").Take(&target, "id = ?", partnerID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}

		if err := tx.Create(relation).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrPartnerRequestExists
			}
			return err
		}

		notification = &models.Notification{
			UserID:     partnerID,
			FromUserID: &userID,
			Type:       models.NotificationFollow,
			Message:    "sent you a partner request",
		}
		return tx.Create(notification).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return relation, notification, nil
}

// AcceptPartnerRequest accepts the pending request partnerID sent to userID
func (r *PostgresPartnerRepository) AcceptPartnerRequest(ctx context.Context, userID, partnerID string) error {
	res := r.db.WithContext(ctx).Model(&models.GooningPartner{}).
		Where("user_id = ? AND partner_id = ? AND status = ?", partnerID, userID, models.PartnerPending).
		Update("status", models.PartnerAccepted)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPartnerRequestNotFound
	}
	return nil
}

// GetPartners returns everyone linked to userID by an accepted relation,
// whichever side sent the request.
func (r *PostgresPartnerRepository) GetPartners(ctx context.Context, userID string) ([]models.User, error) {
	db := r.db.WithContext(ctx)
	sent := db.Model(&models.GooningPartner{}).Select("partner_id").Where("user_id = ? AND status = ?", userID, models.PartnerAccepted)
	received := db.Model(&models.GooningPartner{}).Select("user_id").Where("partner_id = ? AND status = ?", userID, models.PartnerAccepted)

	var partners []models.User
	if err := db.Where("id IN (?) OR id IN (?)", sent, received).Order("username ASC").Find(&partners).Error; err != nil {
		return nil, err
	}
	return partners, nil
}

// GetPendingRequests returns requests waiting on userID, with the requester loaded
func (r *PostgresPartnerRepository) GetPendingRequests(ctx context.Context, userID string) ([]models.GooningPartner, error) {
	var requests []models.GooningPartner
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("partner_id = ? AND status = ?", userID, models.PartnerPending).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}
