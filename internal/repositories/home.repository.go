package repositories

import (
	"context"

	"github.com/Gkimbo/cleaningCompany-sub025/internal/database"
	"github.com/Gkimbo/cleaningCompany-sub025/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type HomeRepository interface {
	CreateHome(ctx context.Context, tx *gorm.DB, home *models.UserHome) error
	CreateBill(ctx context.Context, tx *gorm.DB, bill *models.UserBill) error
	AdjustBillBalance(ctx context.Context, tx *gorm.DB, userID uuid.UUID, delta decimal.Decimal) error
}

type homeRepository struct {
	db  database.DB
	log logger.Logger
}

func NewHomeRepository(db database.DB) HomeRepository {
	return &homeRepository{
		db:  db,
		log: logger.New("homeRepository"),
	}
}

func (r *homeRepository) CreateHome(ctx context.Context, tx *gorm.DB, home *models.UserHome) error {
	log := r.log.Function("CreateHome")

	db := tx
	if db == nil {
		db = r.db.SQLWithContext(ctx)
	}

	if err := db.Create(home).Error; err != nil {
		return log.Err("failed to create home", err, "userID", home.UserID)
	}

	return nil
}

func (r *homeRepository) CreateBill(ctx context.Context, tx *gorm.DB, bill *models.UserBill) error {
	log := r.log.Function("CreateBill")

	db := tx
	if db == nil {
		db = r.db.SQLWithContext(ctx)
	}

	if err := db.Create(bill).Error; err != nil {
		return log.Err("failed to create bill", err, "userID", bill.UserID)
	}

	return nil
}

// AdjustBillBalance applies a signed delta to the user's outstanding
// balance. A negative delta credits the bill.
func (r *homeRepository) AdjustBillBalance(
	ctx context.Context,
	tx *gorm.DB,
	userID uuid.UUID,
	delta decimal.Decimal,
) error {
	log := r.log.Function("AdjustBillBalance")

	db := tx
	if db == nil {
		db = r.db.SQLWithContext(ctx)
	}

	result := db.Model(&models.UserBill{}).
		Where("user_id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", delta))
	if result.Error != nil {
		return log.Err("failed to adjust bill balance", result.Error, "userID", userID)
	}

	return nil
}
