package invitationController

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Gkimbo/cleaningCompany-sub025/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// In-memory fakes. The transaction executor runs the function with a nil
// tx, which every repository fake accepts.

type fakeTx struct{}

func (f *fakeTx) Execute(ctx context.Context, fn func(context.Context, *gorm.DB) error) error {
	return fn(ctx, nil)
}

type fakeCleanerClientRepo struct {
	records map[uuid.UUID]*models.CleanerClient
}

func newFakeCleanerClientRepo() *fakeCleanerClientRepo {
	return &fakeCleanerClientRepo{records: map[uuid.UUID]*models.CleanerClient{}}
}

func (f *fakeCleanerClientRepo) add(cc *models.CleanerClient) *models.CleanerClient {
	if cc.ID == uuid.Nil {
		cc.ID = uuid.New()
	}
	f.records[cc.ID] = cc
	return cc
}

func (f *fakeCleanerClientRepo) Create(_ context.Context, cc *models.CleanerClient) error {
	f.add(cc)
	return nil
}

func (f *fakeCleanerClientRepo) Save(_ context.Context, cc *models.CleanerClient) error {
	f.records[cc.ID] = cc
	return nil
}

func (f *fakeCleanerClientRepo) GetByID(_ context.Context, id uuid.UUID) (*models.CleanerClient, error) {
	cc, ok := f.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *cc
	return &copied, nil
}

func (f *fakeCleanerClientRepo) GetByToken(_ context.Context, token string) (*models.CleanerClient, error) {
	for _, cc := range f.records {
		if cc.InviteToken == token {
			copied := *cc
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCleanerClientRepo) TokenExists(_ context.Context, token string) (bool, error) {
	for _, cc := range f.records {
		if cc.InviteToken == token {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCleanerClientRepo) FindLive(_ context.Context, cleanerID uuid.UUID, email string) (*models.CleanerClient, error) {
	for _, cc := range f.records {
		if cc.CleanerID == cleanerID && cc.InvitedEmail == models.NormalizeEmail(email) &&
			(cc.Status == models.StatusPendingInvite || cc.Status == models.StatusActive) {
			copied := *cc
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCleanerClientRepo) ListByCleaner(_ context.Context, cleanerID uuid.UUID, status *models.CleanerClientStatus) ([]models.CleanerClient, error) {
	var out []models.CleanerClient
	for _, cc := range f.records {
		if cc.CleanerID != cleanerID {
			continue
		}
		if status != nil && cc.Status != *status {
			continue
		}
		out = append(out, *cc)
	}
	return out, nil
}

func (f *fakeCleanerClientRepo) UpdateStatusCAS(
	_ context.Context,
	_ *gorm.DB,
	id uuid.UUID,
	from, to models.CleanerClientStatus,
	updates map[string]any,
) (bool, error) {
	if !from.CanTransitionTo(to) {
		return false, models.ErrInvalidTransition
	}

	cc, ok := f.records[id]
	if !ok || cc.Status != from {
		return false, nil
	}

	cc.Status = to
	if clientID, ok := updates["client_id"].(uuid.UUID); ok {
		cc.ClientID = &clientID
	}
	if homeID, ok := updates["home_id"].(uuid.UUID); ok {
		cc.HomeID = &homeID
	}
	if acceptedAt, ok := updates["accepted_at"].(time.Time); ok {
		cc.AcceptedAt = &acceptedAt
	}
	return true, nil
}

func (f *fakeCleanerClientRepo) StampAccepted(_ context.Context, _ *gorm.DB, id uuid.UUID, at time.Time) error {
	cc, ok := f.records[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cc.AcceptedAt = &at
	return nil
}

type fakeUserRepo struct {
	users map[string]*models.User // keyed by email
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
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
	u, ok := f.users[models.NormalizeEmail(email)]
	if !ok || u.AccountType != accountType {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) ListByEmail(_ context.Context, email string) ([]models.User, error) {
	u, ok := f.users[models.NormalizeEmail(email)]
	if !ok {
		return nil, nil
	}
	return []models.User{*u}, nil
}

func (f *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, ok := f.users[models.NormalizeEmail(email)]
	return ok, nil
}

func (f *fakeUserRepo) Create(_ context.Context, _ *gorm.DB, user *models.User) error {
	user.ID = uuid.New()
	user.Email = models.NormalizeEmail(user.Email)
	f.users[user.Email] = user
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	f.users[user.Email] = user
	return nil
}

type fakeHomeRepo struct {
	homes       []*models.UserHome
	bills       []*models.UserBill
	adjustments map[uuid.UUID]decimal.Decimal
}

func newFakeHomeRepo() *fakeHomeRepo {
	return &fakeHomeRepo{adjustments: map[uuid.UUID]decimal.Decimal{}}
}

func (f *fakeHomeRepo) CreateHome(_ context.Context, _ *gorm.DB, home *models.UserHome) error {
	home.ID = uuid.New()
	f.homes = append(f.homes, home)
	return nil
}

func (f *fakeHomeRepo) CreateBill(_ context.Context, _ *gorm.DB, bill *models.UserBill) error {
	bill.ID = uuid.New()
	f.bills = append(f.bills, bill)
	return nil
}

func (f *fakeHomeRepo) AdjustBillBalance(_ context.Context, _ *gorm.DB, userID uuid.UUID, delta decimal.Decimal) error {
	f.adjustments[userID] = f.adjustments[userID].Add(delta)
	return nil
}

type fakeAppointmentRepo struct {
	future         []models.UserAppointment
	deactivatedFor []uuid.UUID
	deletedIDs     []uuid.UUID
}

func (f *fakeAppointmentRepo) DeactivateSchedules(_ context.Context, _ *gorm.DB, cleanerClientID uuid.UUID) (int64, error) {
	f.deactivatedFor = append(f.deactivatedFor, cleanerClientID)
	return 1, nil
}

func (f *fakeAppointmentRepo) ListFutureAppointments(_ context.Context, _ *gorm.DB, _ uuid.UUID, _ time.Time) ([]models.UserAppointment, error) {
	return f.future, nil
}

func (f *fakeAppointmentRepo) DeleteAppointmentsCascade(_ context.Context, _ *gorm.DB, ids []uuid.UUID) error {
	f.deletedIDs = append(f.deletedIDs, ids...)
	return nil
}

func plainHash(password string) (string, error) {
	return "hashed:" + password, nil
}

type controllerFixture struct {
	controller  *InvitationController
	cleanerRepo *fakeCleanerClientRepo
	userRepo    *fakeUserRepo
	homeRepo    *fakeHomeRepo
	apptRepo    *fakeAppointmentRepo
}

func newFixture() *controllerFixture {
	cleanerRepo := newFakeCleanerClientRepo()
	userRepo := newFakeUserRepo()
	homeRepo := newFakeHomeRepo()
	apptRepo := &fakeAppointmentRepo{}

	return &controllerFixture{
		controller:  New(cleanerRepo, userRepo, homeRepo, apptRepo, &fakeTx{}),
		cleanerRepo: cleanerRepo,
		userRepo:    userRepo,
		homeRepo:    homeRepo,
		apptRepo:    apptRepo,
	}
}

func pendingInvitation(f *controllerFixture, cleanerID uuid.UUID) *models.CleanerClient {
	return f.cleanerRepo.add(&models.CleanerClient{
		CleanerID:    cleanerID,
		Status:       models.StatusPendingInvite,
		InviteToken:  "9f3cbb0a4ed04aa2b6c1de58a7f10c33",
		InvitedEmail: "newclient@example.com",
		InvitedName:  "Noa Newclient",
		InvitedAddress: []byte(
			`{"street":"45 Milk St","city":"Boston","state":"MA","zipcode":"02109"}`,
		),
		InvitedAt: time.Now().UTC(),
	})
}

func TestCreateInvitation(t *testing.T) {
	ctx := context.Background()
	cleanerID := uuid.New()

	t.Run("creates a pending invitation with a 32 char token", func(t *testing.T) {
		f := newFixture()
		notes := "gate code 1234"
		cc, err := f.controller.CreateInvitation(ctx, CreateInvitationParams{
			CleanerID: cleanerID,
			Email:     "  NewClient@Example.com ",
			Name:      "Noa Newclient",
			Notes:     &notes,
		})
		require.NoError(t, err)
		assert.Equal(t, models.StatusPendingInvite, cc.Status)
		assert.Len(t, cc.InviteToken, models.InviteTokenLength)
		assert.Equal(t, "newclient@example.com", cc.InvitedEmail)
		assert.True(t, cc.AutoPayEnabled)
		assert.True(t, cc.AutoScheduleEnabled)
		assert.False(t, cc.InvitedAt.IsZero())
	})

	t.Run("rejects a duplicate pending invitation", func(t *testing.T) {
		f := newFixture()
		pendingInvitation(f, cleanerID)

		_, err := f.controller.CreateInvitation(ctx, CreateInvitationParams{
			CleanerID: cleanerID,
			Email:     "newclient@example.com",
			Name:      "Noa Newclient",
		})
		assert.ErrorIs(t, err, ErrDuplicateInvitation)
	})

	t.Run("rejects an already linked client", func(t *testing.T) {
		f := newFixture()
		cc := pendingInvitation(f, cleanerID)
		cc.Status = models.StatusActive

		_, err := f.controller.CreateInvitation(ctx, CreateInvitationParams{
			CleanerID: cleanerID,
			Email:     "newclient@example.com",
			Name:      "Noa Newclient",
		})
		assert.ErrorIs(t, err, ErrAlreadyLinked)
	})

	t.Run("allows re-inviting after a decline", func(t *testing.T) {
		f := newFixture()
		cc := pendingInvitation(f, cleanerID)
		cc.Status = models.StatusDeclined

		fresh, err := f.controller.CreateInvitation(ctx, CreateInvitationParams{
			CleanerID: cleanerID,
			Email:     "newclient@example.com",
			Name:      "Noa Newclient",
		})
		require.NoError(t, err)
		assert.NotEqual(t, cc.InviteToken, fresh.InviteToken)
	})
}

func TestValidateInviteToken(t *testing.T) {
	ctx := context.Background()
	cleanerID := uuid.New()

	t.Run("wrong length short circuits to not found", func(t *testing.T) {
		f := newFixture()
		validation, err := f.controller.ValidateInviteToken(ctx, "short")
		require.NoError(t, err)
		assert.Nil(t, validation)

		validation, err = f.controller.ValidateInviteToken(ctx, strings.Repeat("a", 33))
		require.NoError(t, err)
		assert.Nil(t, validation)
	})

	t.Run("unknown token of the right length is not found", func(t *testing.T) {
		f := newFixture()
		validation, err := f.controller.ValidateInviteToken(ctx, strings.Repeat("a", 32))
		require.NoError(t, err)
		assert.Nil(t, validation)
	})

	t.Run("pending invitation carries no annotations", func(t *testing.T) {
		f := newFixture()
		cc := pendingInvitation(f, cleanerID)

		validation, err := f.controller.ValidateInviteToken(ctx, cc.InviteToken)
		require.NoError(t, err)
		require.NotNil(t, validation)
		assert.False(t, validation.IsCancelled)
		assert.False(t, validation.IsAlreadyAccepted)
		assert.False(t, validation.IsExpired)
	})

	t.Run("status annotations", func(t *testing.T) {
		testCases := []struct {
			status            models.CleanerClientStatus
			isCancelled       bool
			isAlreadyAccepted bool
			isExpired         bool
		}{
			{models.StatusCancelled, true, false, false},
			{models.StatusActive, false, true, false},
			{models.StatusInactive, false, true, false},
			{models.StatusDeclined, false, false, true},
		}

		for _, tc := range testCases {
			t.Run(string(tc.status), func(t *testing.T) {
				f := newFixture()
				cc := pendingInvitation(f, cleanerID)
				cc.Status = tc.status

				validation, err := f.controller.ValidateInviteToken(ctx, cc.InviteToken)
				require.NoError(t, err)
				require.NotNil(t, validation)
				assert.Equal(t, tc.isCancelled, validation.IsCancelled)
				assert.Equal(t, tc.isAlreadyAccepted, validation.IsAlreadyAccepted)
				assert.Equal(t, tc.isExpired, validation.IsExpired)
			})
		}
	})
}

func TestAcceptInvitation(t *testing.T) {
	ctx := context.Background()
	cleanerID := uuid.New()

	t.Run("creates account, bill, home and links the relationship", func(t *testing.T) {
		f := newFixture()
		cc := pendingInvitation(f, cleanerID)

		result, err := f.controller.AcceptInvitation(ctx, cc.InviteToken, AcceptInvitationRequest{
			Password: "hunter22",
		}, plainHash)
		require.NoError(t, err)

		assert.Equal(t, "Noa", result.User.FirstName)
		assert.Equal(t, "Newclient", result.User.LastName)
		assert.Equal(t, models.AccountTypeHomeowner, result.User.AccountType)
		assert.Equal(t, "hashed:hunter22", result.User.PasswordHash)

		require.Len(t, f.homeRepo.bills, 1)
		assert.True(t, f.homeRepo.bills[0].Balance.IsZero())

		require.NotNil(t, result.Home)
		assert.Equal(t, "45 Milk St", result.Home.Street)
		require.NotNil(t, result.Home.PreferredCleanerID)
		assert.Equal(t, cleanerID, *result.Home.PreferredCleanerID)

		stored := f.cleanerRepo.records[cc.ID]
		assert.Equal(t, models.StatusActive, stored.Status)
		require.NotNil(t, stored.ClientID)
		assert.Equal(t, result.User.ID, *stored.ClientID)
		assert.NotNil(t, stored.AcceptedAt)
	})

	t.Run("address corrections are merged into the home", func(t *testing.T) {
		f := newFixture()
		cc := pendingInvitation(f, cleanerID)

		result, err := f.controller.AcceptInvitation(ctx, cc.InviteToken, AcceptInvitationRequest{
			Password:           "hunter22",
			AddressCorrections: &models.Address{Street: "46 Milk St", Unit: "3A"},
		}, plainHash)
		require.NoError(t, err)

		require.NotNil(t, result.Home)
		assert.Equal(t, "46 Milk St", result.Home.Street)
		require.NotNil(t, result.Home.Unit)
		assert.Equal(t, "3A", *result.Home.Unit)
		assert.Equal(t, "Boston", result.Home.City)
	})

	t.Run("no home without a usable address", func(t *testing.T) {
		f := newFixture()
		cc := pendingInvitation(f, cleanerID)
		cc.InvitedAddress = nil

		result, err := f.controller.AcceptInvitation(ctx, cc.InviteToken, AcceptInvitationRequest{
			Password: "hunter22",
		}, plainHash)
		require.NoError(t, err)
		assert.Nil(t, result.Home)
		assert.Empty(t, f.homeRepo.homes)
	})

	t.Run("cancelled invitation creates the account but stays severed", func(t *testing.T) {
		f := newFixture()
		cc := pendingInvitation(f, cleanerID)
		cc.Status = models.StatusCancelled

		result, err := f.controller.AcceptInvitation(ctx, cc.InviteToken, AcceptInvitationRequest{
			Password: "hunter22",
		}, plainHash)
		require.NoError(t, err)

		require.NotNil(t, result.Home)
		assert.Nil(t, result.Home.PreferredCleanerID)

		stored := f.cleanerRepo.records[cc.ID]
		assert.Equal(t, models.StatusCancelled, stored.Status)
		assert.Nil(t, stored.ClientID)
		assert.NotNil(t, stored.AcceptedAt)
	})

	t.Run("existing account is rejected", func(t *testing.T) {
		f := newFixture()
		cc := pendingInvitation(f, cleanerID)
		require.NoError(t, f.userRepo.Create(ctx, nil, &models.User{
			Email:       "newclient@example.com",
			AccountType: models.AccountTypeHomeowner,
		}))

		_, err := f.controller.AcceptInvitation(ctx, cc.InviteToken, AcceptInvitationRequest{
			Password: "hunter22",
		}, plainHash)
		assert.ErrorIs(t, err, ErrAccountExists)
	})

	t.Run("already accepted token is rejected", func(t *testing.T) {
		f := newFixture()
		cc := pendingInvitation(f, cleanerID)
		cc.Status = models.StatusActive

		_, err := f.controller.AcceptInvitation(ctx, cc.InviteToken, AcceptInvitationRequest{
			Password: "hunter22",
		}, plainHash)
		assert.ErrorIs(t, err, ErrAlreadyAccepted)
	})

	t.Run("declined token is rejected", func(t *testing.T) {
		f := newFixture()
		cc := pendingInvitation(f, cleanerID)
		cc.Status = models.StatusDeclined

		_, err := f.controller.AcceptInvitation(ctx, cc.InviteToken, AcceptInvitationRequest{
			Password: "hunter22",
		}, plainHash)
		assert.ErrorIs(t, err, ErrDeclined)
	})

	t.Run("unknown token is rejected", func(t *testing.T) {
		f := newFixture()
		_, err := f.controller.AcceptInvitation(ctx, strings.Repeat("b", 32), AcceptInvitationRequest{
			Password: "hunter22",
		}, plainHash)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestDeclineInvitation(t *testing.T) {
	ctx := context.Background()
	cleanerID := uuid.New()

	t.Run("declines a pending invitation", func(t *testing.T) {
		f := newFixture()
		cc := pendingInvitation(f, cleanerID)

		require.NoError(t, f.controller.DeclineInvitation(ctx, cc.InviteToken))
		assert.Equal(t, models.StatusDeclined, f.cleanerRepo.records[cc.ID].Status)
	})

	t.Run("only pending invitations can be declined", func(t *testing.T) {
		for _, status := range []models.CleanerClientStatus{
			models.StatusActive, models.StatusCancelled, models.StatusDeclined,
		} {
			f := newFixture()
			cc := pendingInvitation(f, cleanerID)
			cc.Status = status

			err := f.controller.DeclineInvitation(ctx, cc.InviteToken)
			assert.ErrorIs(t, err, ErrNotFound, "status %s", status)
		}
	})
}

func TestResendInvitation(t *testing.T) {
	ctx := context.Background()
	cleanerID := uuid.New()

	t.Run("stamps the reminder on a pending invitation", func(t *testing.T) {
		f := newFixture()
		cc := pendingInvitation(f, cleanerID)

		resent, err := f.controller.ResendInvitation(ctx, cc.ID, cleanerID)
		require.NoError(t, err)
		assert.NotNil(t, resent.LastInviteReminderAt)
	})

	t.Run("foreign ownership reads as not found", func(t *testing.T) {
		f := newFixture()
		cc := pendingInvitation(f, cleanerID)

		_, err := f.controller.ResendInvitation(ctx, cc.ID, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("non-pending invitations cannot be resent", func(t *testing.T) {
		f := newFixture()
		cc := pendingInvitation(f, cleanerID)
		cc.Status = models.StatusActive

		_, err := f.controller.ResendInvitation(ctx, cc.ID, cleanerID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestCancelOrDeactivate(t *testing.T) {
	ctx := context.Background()
	cleanerID := uuid.New()

	t.Run("pending invitation is cancelled", func(t *testing.T) {
		f := newFixture()
		cc := pendingInvitation(f, cleanerID)

		result, err := f.controller.CancelOrDeactivate(ctx, cc.ID, cleanerID)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "Invitation cancelled", result.Message)
		assert.Zero(t, result.CancelledAppointments)
		assert.Equal(t, models.StatusCancelled, f.cleanerRepo.records[cc.ID].Status)
	})

	t.Run("active relationship winds down future work and credits the bill", func(t *testing.T) {
		f := newFixture()
		clientID := uuid.New()
		cc := pendingInvitation(f, cleanerID)
		cc.Status = models.StatusActive
		cc.ClientID = &clientID

		f.apptRepo.future = []models.UserAppointment{
			{BaseUUIDModel: models.BaseUUIDModel{ID: uuid.New()}, Price: decimal.NewFromInt(120)},
			{BaseUUIDModel: models.BaseUUIDModel{ID: uuid.New()}, Price: decimal.NewFromInt(135)},
		}

		result, err := f.controller.CancelOrDeactivate(ctx, cc.ID, cleanerID)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "Client relationship deactivated", result.Message)
		assert.Equal(t, 2, result.CancelledAppointments)

		assert.Equal(t, models.StatusInactive, f.cleanerRepo.records[cc.ID].Status)
		assert.Equal(t, []uuid.UUID{cc.ID}, f.apptRepo.deactivatedFor)
		assert.Len(t, f.apptRepo.deletedIDs, 2)
		assert.True(t, f.homeRepo.adjustments[clientID].Equal(decimal.NewFromInt(-255)))
	})

	t.Run("active relationship with no future work adjusts nothing", func(t *testing.T) {
		f := newFixture()
		clientID := uuid.New()
		cc := pendingInvitation(f, cleanerID)
		cc.Status = models.StatusActive
		cc.ClientID = &clientID

		result, err := f.controller.CancelOrDeactivate(ctx, cc.ID, cleanerID)
		require.NoError(t, err)
		assert.Zero(t, result.CancelledAppointments)
		assert.Empty(t, f.homeRepo.adjustments)
	})

	t.Run("foreign ownership reads as not found", func(t *testing.T) {
		f := newFixture()
		cc := pendingInvitation(f, cleanerID)

		_, err := f.controller.CancelOrDeactivate(ctx, cc.ID, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("terminal statuses read as not found", func(t *testing.T) {
		for _, status := range []models.CleanerClientStatus{
			models.StatusInactive, models.StatusDeclined, models.StatusCancelled,
		} {
			f := newFixture()
			cc := pendingInvitation(f, cleanerID)
			cc.Status = status

			_, err := f.controller.CancelOrDeactivate(ctx, cc.ID, cleanerID)
			assert.ErrorIs(t, err, ErrNotFound, "status %s", status)
		}
	})
}

func TestGenerateInviteToken(t *testing.T) {
	f := newFixture()

	token, err := f.controller.generateInviteToken(context.Background())
	require.NoError(t, err)
	assert.Len(t, token, models.InviteTokenLength)

	// hex alphabet only
	for _, r := range token {
		assert.Contains(t, "0123456789abcdef", string(r))
	}
}
