package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Gkimbo/cleaningCompany-sub025/internal/database"
	"github.com/Gkimbo/cleaningCompany-sub025/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CleanerClientRepository interface {
	Create(ctx context.Context, cc *models.CleanerClient) error
	Save(ctx context.Context, cc *models.CleanerClient) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.CleanerClient, error)
	GetByToken(ctx context.Context, token string) (*models.CleanerClient, error)
	TokenExists(ctx context.Context, token string) (bool, error)
	FindLive(ctx context.Context, cleanerID uuid.UUID, email string) (*models.CleanerClient, error)
	ListByCleaner(ctx context.Context, cleanerID uuid.UUID, status *models.CleanerClientStatus) ([]models.CleanerClient, error)
	UpdateStatusCAS(ctx context.Context, tx *gorm.DB, id uuid.UUID, from, to models.CleanerClientStatus, updates map[string]any) (bool, error)
	StampAccepted(ctx context.Context, tx *gorm.DB, id uuid.UUID, at time.Time) error
}

type cleanerClientRepository struct {
	db  database.DB
	log logger.Logger
}

func NewCleanerClientRepository(db database.DB) CleanerClientRepository {
	return &cleanerClientRepository{
		db:  db,
		log: logger.New("cleanerClientRepository"),
	}
}

func (r *cleanerClientRepository) Create(ctx context.Context, cc *models.CleanerClient) error {
	log := r.log.Function("Create")

	if err := r.db.SQLWithContext(ctx).Create(cc).Error; err != nil {
		return log.Err("failed to create cleaner client", err, "cleanerID", cc.CleanerID)
	}

	return nil
}

func (r *cleanerClientRepository) Save(ctx context.Context, cc *models.CleanerClient) error {
	log := r.log.Function("Save")

	if err := r.db.SQLWithContext(ctx).Save(cc).Error; err != nil {
		return log.Err("failed to save cleaner client", err, "id", cc.ID)
	}

	return nil
}

func (r *cleanerClientRepository) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*models.CleanerClient, error) {
	log := r.log.Function("GetByID")

	var cc models.CleanerClient
	if err := r.db.SQLWithContext(ctx).First(&cc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, log.Err("failed to get cleaner client by id", err, "id", id)
	}

	return &cc, nil
}

func (r *cleanerClientRepository) GetByToken(
	ctx context.Context,
	token string,
) (*models.CleanerClient, error) {
	log := r.log.Function("GetByToken")

	var cc models.CleanerClient
	err := r.db.SQLWithContext(ctx).
		Preload("Cleaner").
		First(&cc, "invite_token = ?", token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, log.Err("failed to get cleaner client by token", err)
	}

	return &cc, nil
}

func (r *cleanerClientRepository) TokenExists(ctx context.Context, token string) (bool, error) {
	log := r.log.Function("TokenExists")

	var count int64
	err := r.db.SQLWithContext(ctx).
		Model(&models.CleanerClient{}).
		Where("invite_token = ?", token).
		Count(&count).Error
	if err != nil {
		return false, log.Err("failed to check token existence", err)
	}

	return count > 0, nil
}

// FindLive returns a pending or active relationship for the cleaner/email
// pair, or gorm.ErrRecordNotFound.
func (r *cleanerClientRepository) FindLive(
	ctx context.Context,
	cleanerID uuid.UUID,
	email string,
) (*models.CleanerClient, error) {
	log := r.log.Function("FindLive")

	var cc models.CleanerClient
	err := r.db.SQLWithContext(ctx).
		Where("cleaner_id = ? AND invited_email = ? AND status IN ?",
			cleanerID,
			models.NormalizeEmail(email),
			[]models.CleanerClientStatus{models.StatusPendingInvite, models.StatusActive},
		).
		First(&cc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, log.Err("failed to find live invitation", err, "cleanerID", cleanerID)
	}

	return &cc, nil
}

// ListByCleaner orders active relationships first, then newest invitations.
func (r *cleanerClientRepository) ListByCleaner(
	ctx context.Context,
	cleanerID uuid.UUID,
	status *models.CleanerClientStatus,
) ([]models.CleanerClient, error) {
	log := r.log.Function("ListByCleaner")

	query := r.db.SQLWithContext(ctx).
		Preload("Client").
		Preload("Home").
		Where("cleaner_id = ?", cleanerID)

	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var ccs []models.CleanerClient
	err := query.
		Order("CASE WHEN status = 'active' THEN 0 ELSE 1 END, invited_at DESC").
		Find(&ccs).Error
	if err != nil {
		return nil, log.Err("failed to list cleaner clients", err, "cleanerID", cleanerID)
	}

	return ccs, nil
}

// UpdateStatusCAS flips the status only when the row is still in the
// expected starting status. Returns false when another writer got there
// first, which is how concurrent acceptances of one token lose cleanly.
func (r *cleanerClientRepository) UpdateStatusCAS(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
	from, to models.CleanerClientStatus,
	updates map[string]any,
) (bool, error) {
	log := r.log.Function("UpdateStatusCAS")

	if !from.CanTransitionTo(to) {
		log.Warn("invalid status transition", "from", from, "to", to, "id", id)
		return false, fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, from, to)
	}

	db := tx
	if db == nil {
		db = r.db.SQLWithContext(ctx)
	}

	if updates == nil {
		updates = map[string]any{}
	}
	updates["status"] = to

	result := db.Model(&models.CleanerClient{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, log.Err("failed to update status", result.Error, "id", id)
	}

	return result.RowsAffected == 1, nil
}

// StampAccepted records acceptance time without touching status or
// linkage. Used when a cancelled invitation's token is redeemed.
func (r *cleanerClientRepository) StampAccepted(
	ctx context.Context,
	tx *gorm.DB,
	id uuid.UUID,
	at time.Time,
) error {
	log := r.log.Function("StampAccepted")

	db := tx
	if db == nil {
		db = r.db.SQLWithContext(ctx)
	}

	err := db.Model(&models.CleanerClient{}).
		Where("id = ?", id).
		Update("accepted_at", at).Error
	if err != nil {
		return log.Err("failed to stamp accepted at", err, "id", id)
	}

	return nil
}
