package services

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"storeratings/internal/apperr"
	"storeratings/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	db               *sql.DB
	logger           zerolog.Logger
	ratingsAvailable bool
}

func NewUserService(db *sql.DB, logger zerolog.Logger, ratingsAvailable bool) *UserService {
	return &UserService{
		db:               db,
		logger:           logger,
		ratingsAvailable: ratingsAvailable,
	}
}

// Register creates an account. An omitted or unrecognized role defaults to
// Normal User; only the admin user-creation path rejects bad roles.
func (s *UserService) Register(req *models.RegisterRequest) (*models.User, error) {
	role := models.RoleNormalUser
	if r, ok := models.NormalizeRole(req.Role); ok {
		role = r
	}

	var existingID int
	err := s.db.QueryRow("SELECT id FROM users WHERE email = ?", req.Email).Scan(&existingID)
	if err == nil {
		return nil, apperr.ErrDuplicateEmail
	} else if err != sql.ErrNoRows {
		s.logger.Error().Err(err).Msg("Error checking existing user")
		return nil, fmt.Errorf("database error: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error hashing password")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	result, err := s.db.Exec(
		"INSERT INTO users (fullName, email, password, address, role) VALUES (?, ?, ?, ?, ?)",
		req.FullName, req.Email, string(hashedPassword), req.Address, string(role),
	)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, apperr.ErrDuplicateEmail
		}
		s.logger.Error().Err(err).Msg("Error creating user")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	userID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get user ID: %w", err)
	}

	user, err := s.GetUserByID(int(userID))
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int("user_id", user.ID).Str("email", user.Email).Msg("User registered successfully")
	return user, nil
}

// Authenticate verifies email/password, optionally filtered by role. An
// unrecognized role filter fails before touching the database.
func (s *UserService) Authenticate(req *models.LoginRequest) (*models.User, error) {
	query := "SELECT id, fullName, email, password, address, role, createdAt FROM users WHERE email = ?"
	params := []interface{}{req.Email}

	if req.Role != "" {
		role, ok := models.NormalizeRole(req.Role)
		if !ok {
			return nil, apperr.ErrInvalidRole
		}
		query += " AND role = ?"
		params = append(params, string(role))
	}

	var user models.User
	err := s.db.QueryRow(query, params...).Scan(
		&user.ID, &user.FullName, &user.Email, &user.PasswordHash, &user.Address, &user.Role, &user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperr.ErrUserNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Error querying user")
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn().Str("email", req.Email).Msg("Failed authentication attempt")
		return nil, apperr.ErrInvalidCredentials
	}

	return &user, nil
}

func (s *UserService) GetUserByID(userID int) (*models.User, error) {
	var user models.User
	err := s.db.QueryRow(
		"SELECT id, fullName, email, password, address, role, createdAt FROM users WHERE id = ?",
		userID,
	).Scan(
		&user.ID, &user.FullName, &user.Email, &user.PasswordHash, &user.Address, &user.Role, &user.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, apperr.ErrUserNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Int("user_id", userID).Msg("Error fetching user")
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &user, nil
}

func (s *UserService) UpdateProfile(userID int, name, address string) error {
	_, err := s.db.Exec(
		"UPDATE users SET fullName = ?, address = ? WHERE id = ?",
		name, address, userID,
	)
	if err != nil {
		s.logger.Error().Err(err).Int("user_id", userID).Msg("Error updating profile")
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

func (s *UserService) ChangePassword(userID int, currentPassword, newPassword string) error {
	if len(newPassword) < 6 {
		return apperr.ErrWeakPassword
	}

	var passwordHash string
	err := s.db.QueryRow("SELECT password FROM users WHERE id = ?", userID).Scan(&passwordHash)
	if err == sql.ErrNoRows {
		return apperr.ErrUserNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Int("user_id", userID).Msg("Error fetching password hash")
		return fmt.Errorf("database error: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(currentPassword)); err != nil {
		return apperr.ErrInvalidCredentials
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = s.db.Exec("UPDATE users SET password = ? WHERE id = ?", string(newHash), userID)
	if err != nil {
		s.logger.Error().Err(err).Int("user_id", userID).Msg("Error updating password")
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info().Int("user_id", userID).Msg("Password changed")
	return nil
}

// StoreResetToken persists a password-reset token for the account behind
// email. Callers respond generically regardless of the outcome so that
// the endpoint does not reveal which addresses exist.
func (s *UserService) StoreResetToken(email, token string, expiry time.Time) error {
	var userID int
	err := s.db.QueryRow("SELECT id FROM users WHERE email = ?", email).Scan(&userID)
	if err == sql.ErrNoRows {
		return apperr.ErrUserNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Error looking up user for password reset")
		return fmt.Errorf("database error: %w", err)
	}

	_, err = s.db.Exec(
		"UPDATE users SET resetToken = ?, resetTokenExpiry = ? WHERE id = ?",
		token, expiry, userID,
	)
	if err != nil {
		s.logger.Error().Err(err).Int("user_id", userID).Msg("Error storing reset token")
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	return nil
}

func (s *UserService) ResetPassword(token, newPassword string) error {
	if len(newPassword) < 6 {
		return apperr.ErrWeakPassword
	}

	var userID int
	err := s.db.QueryRow(
		"SELECT id FROM users WHERE resetToken = ? AND resetTokenExpiry > NOW()",
		token,
	).Scan(&userID)
	if err == sql.ErrNoRows {
		return apperr.ErrInvalidResetToken
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Error looking up reset token")
		return fmt.Errorf("database error: %w", err)
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = s.db.Exec(
		"UPDATE users SET password = ?, resetToken = NULL, resetTokenExpiry = NULL WHERE id = ?",
		string(newHash), userID,
	)
	if err != nil {
		s.logger.Error().Err(err).Int("user_id", userID).Msg("Error resetting password")
		return fmt.Errorf("failed to reset password: %w", err)
	}

	s.logger.Info().Int("user_id", userID).Msg("Password reset completed")
	return nil
}

var userSortColumns = map[string]string{
	"fullName":       "u.fullName",
	"email":          "u.email",
	"address":        "u.address",
	"role":           "u.role",
	"created_at":     "u.createdAt",
	"average_rating": "average_rating",
}

// ListUsers returns the admin user listing with optional search and role
// filters. Unknown sort fields fall back to fullName ascending; unknown
// sort orders fall back to ascending. Owner rows carry their store's
// average rating, everyone else null.
func (s *UserService) ListUsers(filter *models.UserFilter) ([]*models.UserListItem, error) {
	var query string
	if s.ratingsAvailable {
		query = `
			SELECT u.id, u.fullName, u.email, u.address, u.role, u.createdAt,
				CASE WHEN u.role = 'Owner' THEN ROUND(AVG(r.rating), 2) ELSE NULL END AS average_rating
			FROM users u
			LEFT JOIN stores s ON s.ownerId = u.id
			LEFT JOIN ratings r ON r.store_id = s.id`
	} else {
		query = `
			SELECT u.id, u.fullName, u.email, u.address, u.role, u.createdAt,
				NULL AS average_rating
			FROM users u`
	}

	var where []string
	var params []interface{}

	if filter.Search != "" {
		where = append(where, "(u.fullName LIKE ? OR u.email LIKE ? OR u.address LIKE ?)")
		pattern := "%" + filter.Search + "%"
		params = append(params, pattern, pattern, pattern)
	}
	if filter.Role != "" {
		if role, ok := models.NormalizeRole(filter.Role); ok {
			where = append(where, "u.role = ?")
			params = append(params, string(role))
		}
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	if s.ratingsAvailable {
		query += " GROUP BY u.id, u.fullName, u.email, u.address, u.role, u.createdAt"
	}

	sortColumn, ok := userSortColumns[filter.SortBy]
	if !ok || (!s.ratingsAvailable && filter.SortBy == "average_rating") {
		sortColumn = "u.fullName"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", sortColumn, orderKeyword(filter.SortOrder))

	rows, err := s.db.Query(query, params...)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error listing users")
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	var users []*models.UserListItem
	for rows.Next() {
		var item models.UserListItem
		var avg sql.NullFloat64

		err := rows.Scan(&item.ID, &item.FullName, &item.Email, &item.Address, &item.Role, &item.CreatedAt, &avg)
		if err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		if avg.Valid {
			item.AverageRating = &avg.Float64
		}

		users = append(users, &item)
	}

	return users, rows.Err()
}

// GetUserDetail returns one user with the Owner-only average rating.
func (s *UserService) GetUserDetail(userID int) (*models.UserListItem, error) {
	var query string
	if s.ratingsAvailable {
		query = `
			SELECT u.id, u.fullName, u.email, u.address, u.role, u.createdAt,
				CASE WHEN u.role = 'Owner' THEN ROUND(AVG(r.rating), 2) ELSE NULL END AS average_rating
			FROM users u
			LEFT JOIN stores s ON s.ownerId = u.id
			LEFT JOIN ratings r ON r.store_id = s.id
			WHERE u.id = ?
			GROUP BY u.id, u.fullName, u.email, u.address, u.role, u.createdAt`
	} else {
		query = `
			SELECT u.id, u.fullName, u.email, u.address, u.role, u.createdAt,
				NULL AS average_rating
			FROM users u
			WHERE u.id = ?`
	}

	var item models.UserListItem
	var avg sql.NullFloat64

	err := s.db.QueryRow(query, userID).Scan(
		&item.ID, &item.FullName, &item.Email, &item.Address, &item.Role, &item.CreatedAt, &avg,
	)
	if err == sql.ErrNoRows {
		return nil, apperr.ErrUserNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Int("user_id", userID).Msg("Error fetching user detail")
		return nil, fmt.Errorf("database error: %w", err)
	}
	if avg.Valid {
		item.AverageRating = &avg.Float64
	}

	return &item, nil
}

// CreateUser is the admin user-creation path; unlike Register it rejects
// unrecognized roles.
func (s *UserService) CreateUser(req *models.AdminUserRequest) error {
	role, ok := models.NormalizeRole(req.Role)
	if !ok {
		return apperr.ErrInvalidRole
	}

	var existingID int
	err := s.db.QueryRow("SELECT id FROM users WHERE email = ?", req.Email).Scan(&existingID)
	if err == nil {
		return apperr.ErrDuplicateEmail
	} else if err != sql.ErrNoRows {
		s.logger.Error().Err(err).Msg("Error checking existing user")
		return fmt.Errorf("database error: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	_, err = s.db.Exec(
		"INSERT INTO users (fullName, email, password, address, role) VALUES (?, ?, ?, ?, ?)",
		req.Name, req.Email, string(hashedPassword), req.Address, string(role),
	)
	if err != nil {
		if isDuplicateKey(err) {
			return apperr.ErrDuplicateEmail
		}
		s.logger.Error().Err(err).Msg("Error creating user")
		return fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info().Str("email", req.Email).Str("role", string(role)).Msg("User created by admin")
	return nil
}

// UpdateUser is the admin user-update path. Password is never updated here.
func (s *UserService) UpdateUser(userID int, req *models.AdminUserRequest) error {
	role, ok := models.NormalizeRole(req.Role)
	if !ok {
		return apperr.ErrInvalidRole
	}

	existing, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	if req.Email != existing.Email {
		var otherID int
		err := s.db.QueryRow("SELECT id FROM users WHERE email = ? AND id != ?", req.Email, userID).Scan(&otherID)
		if err == nil {
			return apperr.ErrDuplicateEmail
		} else if err != sql.ErrNoRows {
			s.logger.Error().Err(err).Msg("Error checking email uniqueness")
			return fmt.Errorf("database error: %w", err)
		}
	}

	_, err = s.db.Exec(
		"UPDATE users SET fullName = ?, email = ?, address = ?, role = ? WHERE id = ?",
		req.Name, req.Email, req.Address, string(role), userID,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return apperr.ErrDuplicateEmail
		}
		s.logger.Error().Err(err).Int("user_id", userID).Msg("Error updating user")
		return fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info().Int("user_id", userID).Msg("User updated by admin")
	return nil
}

// DeleteUser removes an account and its ratings. Deletion is rejected for
// the acting admin themself, for the last remaining admin, and for users
// who still own a store.
func (s *UserService) DeleteUser(userID, actingAdminID int) error {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return err
	}

	if user.ID == actingAdminID {
		return apperr.ErrSelfDelete
	}

	if user.Role == models.RoleAdmin {
		var adminCount int
		err := s.db.QueryRow("SELECT COUNT(*) FROM users WHERE role = 'Admin'").Scan(&adminCount)
		if err != nil {
			s.logger.Error().Err(err).Msg("Error counting admins")
			return fmt.Errorf("database error: %w", err)
		}
		if adminCount <= 1 {
			return apperr.ErrLastAdmin
		}
	}

	var storeID int
	err = s.db.QueryRow("SELECT id FROM stores WHERE ownerId = ?", userID).Scan(&storeID)
	if err == nil {
		return apperr.ErrUserOwnsStore
	} else if err != sql.ErrNoRows {
		s.logger.Error().Err(err).Msg("Error checking owned stores")
		return fmt.Errorf("database error: %w", err)
	}

	if s.ratingsAvailable {
		if _, err := s.db.Exec("DELETE FROM ratings WHERE user_id = ?", userID); err != nil {
			s.logger.Error().Err(err).Int("user_id", userID).Msg("Error deleting user ratings")
			return fmt.Errorf("failed to delete user ratings: %w", err)
		}
	}

	if _, err := s.db.Exec("DELETE FROM users WHERE id = ?", userID); err != nil {
		s.logger.Error().Err(err).Int("user_id", userID).Msg("Error deleting user")
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info().Int("user_id", userID).Int("admin_id", actingAdminID).Msg("User deleted")
	return nil
}

func (s *UserService) CountUsers() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error counting users")
		return 0, fmt.Errorf("database error: %w", err)
	}
	return count, nil
}
