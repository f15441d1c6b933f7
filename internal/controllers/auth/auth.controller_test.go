package authController

import (
	"context"
	"testing"

	"github.com/Gkimbo/cleaningCompany-sub025/config"
	"github.com/Gkimbo/cleaningCompany-sub025/internal/models"
	"github.com/Gkimbo/cleaningCompany-sub025/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	users []*models.User
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range f.users {
		if u.ID.String() == id {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByEmailAndType(_ context.Context, email string, accountType models.AccountType) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == models.NormalizeEmail(email) && u.AccountType == accountType {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) ListByEmail(_ context.Context, email string) ([]models.User, error) {
	var out []models.User
	for _, u := range f.users {
		if u.Email == models.NormalizeEmail(email) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	users, _ := f.ListByEmail(context.Background(), email)
	return len(users) > 0, nil
}

func (f *fakeUserRepo) Create(_ context.Context, _ *gorm.DB, user *models.User) error {
	user.ID = uuid.New()
	f.users = append(f.users, user)
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	for i, u := range f.users {
		if u.ID == user.ID {
			f.users[i] = user
		}
	}
	return nil
}

func testConfig() config.Config {
	return config.Config{
		JWTSecret:      "test-secret",
		JWTExpiryHours: 1,
	}
}

func newAuthFixture(t *testing.T) (*AuthController, *fakeUserRepo) {
	t.Helper()

	tokenService, err := services.NewTokenService(testConfig())
	require.NoError(t, err)

	repo := &fakeUserRepo{}
	return New(repo, tokenService), repo
}

func addUser(t *testing.T, repo *fakeUserRepo, email string, accountType models.AccountType, password string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		BaseUUIDModel: models.BaseUUIDModel{ID: uuid.New()},
		Email:         models.NormalizeEmail(email),
		AccountType:   accountType,
		PasswordHash:  string(hash),
		IsActive:      true,
	}
	repo.users = append(repo.users, user)
	return user
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("single account logs in without an account type", func(t *testing.T) {
		controller, repo := newAuthFixture(t)
		user := addUser(t, repo, "casey@example.com", models.AccountTypeCleaner, "password")

		result, err := controller.Login(ctx, models.LoginRequest{
			Login:    "Casey@Example.com",
			Password: "password",
		})
		require.NoError(t, err)
		assert.False(t, result.RequiresAccountSelection)
		assert.NotEmpty(t, result.Token)
		require.NotNil(t, result.User)
		assert.Equal(t, user.ID.String(), result.User.ID)
		assert.NotNil(t, result.User.LastLoginAt)

		// the repository holds the stamped row, not the fixture pointer
		stored, err := repo.GetByID(ctx, user.ID.String())
		require.NoError(t, err)
		assert.NotNil(t, stored.LastLoginAt)
	})

	t.Run("ambiguous email prompts account selection before checking credentials", func(t *testing.T) {
		controller, repo := newAuthFixture(t)
		addUser(t, repo, "casey@example.com", models.AccountTypeCleaner, "password")
		addUser(t, repo, "casey@example.com", models.AccountTypeHomeowner, "password")

		// deliberately wrong password: selection must come first
		result, err := controller.Login(ctx, models.LoginRequest{
			Login:    "casey@example.com",
			Password: "wrong",
		})
		require.NoError(t, err)
		assert.True(t, result.RequiresAccountSelection)
		assert.Empty(t, result.Token)
		assert.ElementsMatch(t,
			[]models.AccountType{models.AccountTypeCleaner, models.AccountTypeHomeowner},
			result.AccountTypes,
		)
	})

	t.Run("explicit account type resolves the ambiguity", func(t *testing.T) {
		controller, repo := newAuthFixture(t)
		addUser(t, repo, "casey@example.com", models.AccountTypeCleaner, "password")
		homeowner := addUser(t, repo, "casey@example.com", models.AccountTypeHomeowner, "password")

		result, err := controller.Login(ctx, models.LoginRequest{
			Login:       "casey@example.com",
			Password:    "password",
			AccountType: models.AccountTypeHomeowner,
		})
		require.NoError(t, err)
		assert.False(t, result.RequiresAccountSelection)
		require.NotNil(t, result.User)
		assert.Equal(t, homeowner.ID.String(), result.User.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		controller, repo := newAuthFixture(t)
		addUser(t, repo, "casey@example.com", models.AccountTypeCleaner, "password")

		_, err := controller.Login(ctx, models.LoginRequest{
			Login:    "casey@example.com",
			Password: "wrong",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		controller, _ := newAuthFixture(t)

		_, err := controller.Login(ctx, models.LoginRequest{
			Login:    "nobody@example.com",
			Password: "password",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("account type without a matching account", func(t *testing.T) {
		controller, repo := newAuthFixture(t)
		addUser(t, repo, "casey@example.com", models.AccountTypeCleaner, "password")

		_, err := controller.Login(ctx, models.LoginRequest{
			Login:       "casey@example.com",
			Password:    "password",
			AccountType: models.AccountTypeOwner,
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unrecognized account type", func(t *testing.T) {
		controller, _ := newAuthFixture(t)

		_, err := controller.Login(ctx, models.LoginRequest{
			Login:       "casey@example.com",
			Password:    "password",
			AccountType: models.AccountType("admin"),
		})
		assert.ErrorIs(t, err, ErrInvalidAccountType)
	})

	t.Run("deactivated account", func(t *testing.T) {
		controller, repo := newAuthFixture(t)
		user := addUser(t, repo, "casey@example.com", models.AccountTypeCleaner, "password")
		user.IsActive = false

		_, err := controller.Login(ctx, models.LoginRequest{
			Login:    "casey@example.com",
			Password: "password",
		})
		assert.ErrorIs(t, err, ErrAccountInactive)
	})
}

func TestAccountTypes(t *testing.T) {
	ctx := context.Background()

	controller, repo := newAuthFixture(t)
	addUser(t, repo, "casey@example.com", models.AccountTypeCleaner, "password")
	addUser(t, repo, "casey@example.com", models.AccountTypeHomeowner, "password")

	types, err := controller.AccountTypes(ctx, "Casey@Example.com")
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]models.AccountType{models.AccountTypeCleaner, models.AccountTypeHomeowner},
		types,
	)

	types, err = controller.AccountTypes(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, types)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("hunter22")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("wrong")))
}
