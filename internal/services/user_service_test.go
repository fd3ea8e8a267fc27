package services

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"storeratings/internal/apperr"
	"storeratings/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

func newUserService(t *testing.T, ratingsAvailable bool) (*UserService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	svc := NewUserService(db, zerolog.Nop(), ratingsAvailable)
	return svc, mock, func() { db.Close() }
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, mock, done := newUserService(t, true)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users WHERE email = ?")).
		WithArgs("alice@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	_, err := svc.Register(&models.RegisterRequest{
		FullName: "Alice",
		Email:    "alice@x.com",
		Password: "Secret!pw",
		Address:  "addr",
	})
	if !errors.Is(err, apperr.ErrDuplicateEmail) {
		t.Errorf("Register() error = %v, want ErrDuplicateEmail", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestRegisterDefaultsUnknownRole(t *testing.T) {
	svc, mock, done := newUserService(t, true)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users WHERE email = ?")).
		WithArgs("bob@x.com").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (fullName, email, password, address, role) VALUES (?, ?, ?, ?, ?)")).
		WithArgs("Bob", "bob@x.com", sqlmock.AnyArg(), "addr", "Normal User").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectQuery("SELECT id, fullName, email, password, address, role, createdAt FROM users WHERE id").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "fullName", "email", "password", "address", "role", "createdAt"}).
			AddRow(3, "Bob", "bob@x.com", "hash", "addr", "Normal User", time.Now()))

	user, err := svc.Register(&models.RegisterRequest{
		FullName: "Bob",
		Email:    "bob@x.com",
		Password: "Secret!pw",
		Address:  "addr",
		Role:     "wizard",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Role != models.RoleNormalUser {
		t.Errorf("Role = %q, want Normal User", user.Role)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestAuthenticateInvalidRoleFilter(t *testing.T) {
	svc, mock, done := newUserService(t, true)
	defer done()

	_, err := svc.Authenticate(&models.LoginRequest{
		Email:    "alice@x.com",
		Password: "pw",
		Role:     "wizard",
	})
	if !errors.Is(err, apperr.ErrInvalidRole) {
		t.Errorf("Authenticate() error = %v, want ErrInvalidRole", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("database should not be touched for an invalid role: %v", err)
	}
}

func TestAuthenticateRoleFilterNoMatch(t *testing.T) {
	svc, mock, done := newUserService(t, true)
	defer done()

	mock.ExpectQuery("SELECT id, fullName, email, password, address, role, createdAt FROM users WHERE email = \\? AND role = \\?").
		WithArgs("alice@x.com", "Admin").
		WillReturnError(sql.ErrNoRows)

	_, err := svc.Authenticate(&models.LoginRequest{
		Email:    "alice@x.com",
		Password: "correct-password",
		Role:     "admin",
	})
	if !errors.Is(err, apperr.ErrUserNotFound) {
		t.Errorf("Authenticate() error = %v, want ErrUserNotFound", err)
	}
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc, mock, done := newUserService(t, true)
	defer done()

	hash, _ := bcrypt.GenerateFromPassword([]byte("right-password"), bcrypt.MinCost)
	mock.ExpectQuery("SELECT id, fullName, email, password, address, role, createdAt FROM users WHERE email = \\?").
		WithArgs("alice@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "fullName", "email", "password", "address", "role", "createdAt"}).
			AddRow(1, "Alice", "alice@x.com", string(hash), "addr", "Normal User", time.Now()))

	_, err := svc.Authenticate(&models.LoginRequest{Email: "alice@x.com", Password: "wrong-password"})
	if !errors.Is(err, apperr.ErrInvalidCredentials) {
		t.Errorf("Authenticate() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthenticateSuccess(t *testing.T) {
	svc, mock, done := newUserService(t, true)
	defer done()

	hash, _ := bcrypt.GenerateFromPassword([]byte("right-password"), bcrypt.MinCost)
	mock.ExpectQuery("SELECT id, fullName, email, password, address, role, createdAt FROM users WHERE email = \\?").
		WithArgs("alice@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "fullName", "email", "password", "address", "role", "createdAt"}).
			AddRow(1, "Alice", "alice@x.com", string(hash), "addr", "Normal User", time.Now()))

	user, err := svc.Authenticate(&models.LoginRequest{Email: "alice@x.com", Password: "right-password"})
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if user.ID != 1 || user.Role != models.RoleNormalUser {
		t.Errorf("unexpected user: %+v", user)
	}
}

func TestChangePasswordWeak(t *testing.T) {
	svc, mock, done := newUserService(t, true)
	defer done()

	err := svc.ChangePassword(1, "current", "short")
	if !errors.Is(err, apperr.ErrWeakPassword) {
		t.Errorf("ChangePassword() error = %v, want ErrWeakPassword", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("database should not be touched for a weak password: %v", err)
	}
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	svc, mock, done := newUserService(t, true)
	defer done()

	hash, _ := bcrypt.GenerateFromPassword([]byte("the-real-one"), bcrypt.MinCost)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT password FROM users WHERE id = ?")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"password"}).AddRow(string(hash)))

	err := svc.ChangePassword(1, "not-the-one", "NewPass!1")
	if !errors.Is(err, apperr.ErrInvalidCredentials) {
		t.Errorf("ChangePassword() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestResetPasswordExpiredToken(t *testing.T) {
	svc, mock, done := newUserService(t, true)
	defer done()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users WHERE resetToken = ? AND resetTokenExpiry > NOW()")).
		WithArgs("stale-token").
		WillReturnError(sql.ErrNoRows)

	err := svc.ResetPassword("stale-token", "NewPass!1")
	if !errors.Is(err, apperr.ErrInvalidResetToken) {
		t.Errorf("ResetPassword() error = %v, want ErrInvalidResetToken", err)
	}
}

func TestDeleteUserSelf(t *testing.T) {
	svc, mock, done := newUserService(t, true)
	defer done()

	mock.ExpectQuery("SELECT id, fullName, email, password, address, role, createdAt FROM users WHERE id").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "fullName", "email", "password", "address", "role", "createdAt"}).
			AddRow(5, "Admin Alice", "admin@x.com", "hash", "addr", "Admin", time.Now()))

	err := svc.DeleteUser(5, 5)
	if !errors.Is(err, apperr.ErrSelfDelete) {
		t.Errorf("DeleteUser() error = %v, want ErrSelfDelete", err)
	}
}

func TestDeleteUserLastAdmin(t *testing.T) {
	svc, mock, done := newUserService(t, true)
	defer done()

	mock.ExpectQuery("SELECT id, fullName, email, password, address, role, createdAt FROM users WHERE id").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "fullName", "email", "password", "address", "role", "createdAt"}).
			AddRow(5, "Admin Alice", "admin@x.com", "hash", "addr", "Admin", time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE role = 'Admin'")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	err := svc.DeleteUser(5, 9)
	if !errors.Is(err, apperr.ErrLastAdmin) {
		t.Errorf("DeleteUser() error = %v, want ErrLastAdmin", err)
	}
}

func TestDeleteUserOwnsStore(t *testing.T) {
	svc, mock, done := newUserService(t, true)
	defer done()

	mock.ExpectQuery("SELECT id, fullName, email, password, address, role, createdAt FROM users WHERE id").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "fullName", "email", "password", "address", "role", "createdAt"}).
			AddRow(5, "Olive Owner", "olive@x.com", "hash", "addr", "Owner", time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM stores WHERE ownerId = ?")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(2))

	err := svc.DeleteUser(5, 9)
	if !errors.Is(err, apperr.ErrUserOwnsStore) {
		t.Errorf("DeleteUser() error = %v, want ErrUserOwnsStore", err)
	}
}

func TestDeleteUserCascadesRatings(t *testing.T) {
	svc, mock, done := newUserService(t, true)
	defer done()

	mock.ExpectQuery("SELECT id, fullName, email, password, address, role, createdAt FROM users WHERE id").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "fullName", "email", "password", "address", "role", "createdAt"}).
			AddRow(5, "Norma User", "norma@x.com", "hash", "addr", "Normal User", time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM stores WHERE ownerId = ?")).
		WithArgs(5).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM ratings WHERE user_id = ?")).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = ?")).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := svc.DeleteUser(5, 9); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestListUsersUnknownSortFallsBack(t *testing.T) {
	svc, mock, done := newUserService(t, true)
	defer done()

	mock.ExpectQuery("ORDER BY u.fullName ASC").
		WillReturnRows(sqlmock.NewRows([]string{"id", "fullName", "email", "address", "role", "createdAt", "average_rating"}))

	_, err := svc.ListUsers(&models.UserFilter{SortBy: "; DROP TABLE users", SortOrder: "sideways"})
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestListUsersOwnerAverage(t *testing.T) {
	svc, mock, done := newUserService(t, true)
	defer done()

	rows := sqlmock.NewRows([]string{"id", "fullName", "email", "address", "role", "createdAt", "average_rating"}).
		AddRow(1, "Olive Owner", "olive@x.com", "addr", "Owner", time.Now(), 4.0).
		AddRow(2, "Norma User", "norma@x.com", "addr", "Normal User", time.Now(), nil)
	mock.ExpectQuery("LEFT JOIN ratings r ON r.store_id = s.id").WillReturnRows(rows)

	users, err := svc.ListUsers(&models.UserFilter{SortBy: "fullName"})
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("len(users) = %d, want 2", len(users))
	}
	if users[0].AverageRating == nil || *users[0].AverageRating != 4.0 {
		t.Errorf("owner average = %v, want 4.0", users[0].AverageRating)
	}
	if users[1].AverageRating != nil {
		t.Errorf("normal user average = %v, want nil", *users[1].AverageRating)
	}
}

func TestListUsersWithoutRatingsRelation(t *testing.T) {
	svc, mock, done := newUserService(t, false)
	defer done()

	// The degraded query must not touch the ratings relation and must not
	// honor an average_rating sort.
	mock.ExpectQuery(`SELECT u.id, u.fullName, u.email, u.address, u.role, u.createdAt,\s+NULL AS average_rating\s+FROM users u\s+ORDER BY u.fullName ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "fullName", "email", "address", "role", "createdAt", "average_rating"}).
			AddRow(1, "Olive Owner", "olive@x.com", "addr", "Owner", time.Now(), nil))

	users, err := svc.ListUsers(&models.UserFilter{SortBy: "average_rating"})
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 1 || users[0].AverageRating != nil {
		t.Errorf("degraded listing should report nil averages, got %+v", users)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	svc, mock, done := newUserService(t, true)
	defer done()

	err := svc.CreateUser(&models.AdminUserRequest{
		Name: "X", Email: "x@x.com", Password: "Secret!pw", Address: "addr", Role: "wizard",
	})
	if !errors.Is(err, apperr.ErrInvalidRole) {
		t.Errorf("CreateUser() error = %v, want ErrInvalidRole", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("database should not be touched for an invalid role: %v", err)
	}
}
