package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Gkimbo/cleaningCompany-sub025/internal/database"
	"github.com/Gkimbo/cleaningCompany-sub025/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	USER_CACHE_EXPIRY = 7 * 24 * time.Hour
	USER_CACHE_PREFIX = "user:"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmailAndType(ctx context.Context, email string, accountType models.AccountType) (*models.User, error)
	ListByEmail(ctx context.Context, email string) ([]models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	Update(ctx context.Context, user *models.User) error
}

type userRepository struct {
	db  database.DB
	log logger.Logger
}

func NewUserRepository(db database.DB) UserRepository {
	return &userRepository{
		db:  db,
		log: logger.New("userRepository"),
	}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	log := r.log.Function("GetByID")

	var user models.User
	if err := r.getCacheByID(ctx, id, &user); err == nil {
		return &user, nil
	}

	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, log.Err("failed to parse userID", err, "userID", id)
	}

	if err := r.db.SQLWithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, log.Err("failed to get user by id", err, "id", id)
	}

	if err := r.addUserToCache(ctx, &user); err != nil {
		log.Warn("failed to add user to cache", "userID", id, "error", err)
	}

	return &user, nil
}

func (r *userRepository) GetByEmailAndType(
	ctx context.Context,
	email string,
	accountType models.AccountType,
) (*models.User, error) {
	log := r.log.Function("GetByEmailAndType")

	var user models.User
	err := r.db.SQLWithContext(ctx).
		First(&user, "email = ? AND account_type = ?", models.NormalizeEmail(email), accountType).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, log.Err("failed to get user by email and type", err, "email", email)
	}

	return &user, nil
}

func (r *userRepository) ListByEmail(ctx context.Context, email string) ([]models.User, error) {
	log := r.log.Function("ListByEmail")

	var users []models.User
	err := r.db.SQLWithContext(ctx).
		Where("email = ?", models.NormalizeEmail(email)).
		Order("account_type asc").
		Find(&users).Error
	if err != nil {
		return nil, log.Err("failed to list users by email", err, "email", email)
	}

	return users, nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	log := r.log.Function("ExistsByEmail")

	var count int64
	err := r.db.SQLWithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", models.NormalizeEmail(email)).
		Count(&count).Error
	if err != nil {
		return false, log.Err("failed to count users by email", err, "email", email)
	}

	return count > 0, nil
}

// Create inserts a user, optionally inside a caller-owned transaction.
func (r *userRepository) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	log := r.log.Function("Create")

	db := tx
	if db == nil {
		db = r.db.SQLWithContext(ctx)
	}

	if err := db.Create(user).Error; err != nil {
		return log.Err("failed to create user", err, "email", user.Email)
	}

	return nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	log := r.log.Function("Update")

	if err := r.db.SQLWithContext(ctx).Save(user).Error; err != nil {
		return log.Err("failed to update user", err, "userID", user.ID)
	}

	if err := r.clearUserCache(ctx, user); err != nil {
		log.Warn("failed to clear user cache after update", "userID", user.ID, "error", err)
	}

	return nil
}

func (r *userRepository) getCacheByID(ctx context.Context, userID string, user *models.User) error {
	cacheKey := USER_CACHE_PREFIX + userID
	found, err := database.NewCacheBuilder(r.db.Cache.User, cacheKey).WithContext(ctx).Get(user)
	if err != nil {
		return r.log.Function("getCacheByID").
			Err("failed to get user from cache", err, "userID", userID)
	}

	if !found {
		return r.log.Function("getCacheByID").
			Error("user not found in cache", "userID", userID)
	}

	return nil
}

func (r *userRepository) addUserToCache(ctx context.Context, user *models.User) error {
	cacheKey := USER_CACHE_PREFIX + user.ID.String()
	if err := database.NewCacheBuilder(r.db.Cache.User, cacheKey).
		WithStruct(user).
		WithTTL(USER_CACHE_EXPIRY).
		WithContext(ctx).
		Set(); err != nil {
		return r.log.Function("addUserToCache").
			Err("failed to add user to cache", err, "userID", user.ID)
	}
	return nil
}

func (r *userRepository) clearUserCache(ctx context.Context, user *models.User) error {
	cacheKey := USER_CACHE_PREFIX + user.ID.String()
	if err := database.NewCacheBuilder(r.db.Cache.User, cacheKey).WithContext(ctx).Delete(); err != nil {
		r.log.Function("clearUserCache").
			Warn("failed to clear user cache", "userID", user.ID, "error", err)
	}
	return nil
}
