package users

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/harborlane/importdesk-backend/pkg/config"
	"github.com/harborlane/importdesk-backend/pkg/db/models"
	"github.com/harborlane/importdesk-backend/pkg/enums"
	pkgerrors "github.com/harborlane/importdesk-backend/pkg/errors"
	"github.com/harborlane/importdesk-backend/pkg/security"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	created   *models.User
	createErr error
	byID      map[uuid.UUID]*models.User
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	user.ID = uuid.New()
	f.created = user
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newUsersFixture(t *testing.T) (Service, *fakeUserRepo) {
	t.Helper()
	repo := &fakeUserRepo{byID: map[uuid.UUID]*models.User{}}
	svc, err := NewService(repo, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, repo
}

func TestCreateCustomer(t *testing.T) {
	svc, repo := newUsersFixture(t)

	phone := "+81-90-1234-5678"
	result, err := svc.CreateCustomer(context.Background(), CreateCustomerInput{
		Email:       "  Buyer@Example.COM ",
		FullName:    "Kofi Mensah",
		Phone:       &phone,
		ActorUserID: uuid.New(),
		ActorRole:   enums.UserRoleStaff,
	})
	if err != nil {
		t.Fatalf("CreateCustomer: %v", err)
	}

	if result.User.Email != "buyer@example.com" {
		t.Fatalf("email not normalized: %q", result.User.Email)
	}
	if result.User.Role != enums.UserRoleCustomer {
		t.Fatalf("expected customer role, got %s", result.User.Role)
	}
	if !result.User.IsActive {
		t.Fatalf("new account should be active")
	}
	if len(result.TempPassword) != tempPasswordLength {
		t.Fatalf("temp password length = %d", len(result.TempPassword))
	}
	if repo.created == nil {
		t.Fatalf("user was not persisted")
	}
	ok, err := security.VerifyPassword(result.TempPassword, repo.created.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("temp password does not verify against stored hash (ok=%v err=%v)", ok, err)
	}
}

func TestCreateCustomerRequiresStaff(t *testing.T) {
	svc, _ := newUsersFixture(t)

	_, err := svc.CreateCustomer(context.Background(), CreateCustomerInput{
		Email:     "buyer@example.com",
		FullName:  "Kofi Mensah",
		ActorRole: enums.UserRoleCustomer,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCreateCustomerValidation(t *testing.T) {
	svc, _ := newUsersFixture(t)

	cases := []struct {
		name  string
		input CreateCustomerInput
	}{
		{"empty email", CreateCustomerInput{FullName: "Kofi Mensah", ActorRole: enums.UserRoleStaff}},
		{"malformed email", CreateCustomerInput{Email: "not-an-email", FullName: "Kofi Mensah", ActorRole: enums.UserRoleStaff}},
		{"empty name", CreateCustomerInput{Email: "buyer@example.com", FullName: "   ", ActorRole: enums.UserRoleStaff}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateCustomer(context.Background(), tc.input)
			if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateCustomerDuplicateEmail(t *testing.T) {
	svc, repo := newUsersFixture(t)
	repo.createErr = errors.New(`ERROR: duplicate key value violates unique constraint "users_email_key"`)

	_, err := svc.CreateCustomer(context.Background(), CreateCustomerInput{
		Email:     "buyer@example.com",
		FullName:  "Kofi Mensah",
		ActorRole: enums.UserRoleAdmin,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestGetUser(t *testing.T) {
	svc, repo := newUsersFixture(t)

	id := uuid.New()
	repo.byID[id] = &models.User{ID: id, Email: "buyer@example.com", FullName: "Kofi Mensah", Role: enums.UserRoleCustomer, IsActive: true}

	dto, err := svc.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if dto.ID != id || dto.Email != "buyer@example.com" {
		t.Fatalf("unexpected dto: %+v", dto)
	}

	if _, err := svc.Get(context.Background(), uuid.New()); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
