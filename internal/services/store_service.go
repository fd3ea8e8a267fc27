package services

import (
	"database/sql"
	"fmt"

	"storeratings/internal/apperr"
	"storeratings/internal/models"

	"github.com/rs/zerolog"
)

type StoreService struct {
	db               *sql.DB
	logger           zerolog.Logger
	ratingsAvailable bool
}

func NewStoreService(db *sql.DB, logger zerolog.Logger, ratingsAvailable bool) *StoreService {
	return &StoreService{
		db:               db,
		logger:           logger,
		ratingsAvailable: ratingsAvailable,
	}
}

const storeColumns = "id, storeName, ownerName, email, phone, address, description, establishedYear, website, ownerId, createdAt, updatedAt"

func scanStore(row *sql.Row) (*models.Store, error) {
	var store models.Store
	var description, website sql.NullString
	var establishedYear sql.NullInt64

	err := row.Scan(
		&store.ID, &store.StoreName, &store.OwnerName, &store.Email, &store.Phone, &store.Address,
		&description, &establishedYear, &website, &store.OwnerID, &store.CreatedAt, &store.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		store.Description = &description.String
	}
	if establishedYear.Valid {
		year := int(establishedYear.Int64)
		store.EstablishedYear = &year
	}
	if website.Valid {
		store.Website = &website.String
	}

	return &store, nil
}

// GetProfileByOwner returns the store owned by ownerID.
func (s *StoreService) GetProfileByOwner(ownerID int) (*models.Store, error) {
	row := s.db.QueryRow("SELECT "+storeColumns+" FROM stores WHERE ownerId = ?", ownerID)
	store, err := scanStore(row)
	if err == sql.ErrNoRows {
		return nil, apperr.ErrStoreNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Int("owner_id", ownerID).Msg("Error fetching store profile")
		return nil, fmt.Errorf("database error: %w", err)
	}
	return store, nil
}

// UpsertProfile creates or updates the owner's store profile. An owner has
// at most one store, so the upsert is keyed by ownerId. Returns true when
// a new store was created.
func (s *StoreService) UpsertProfile(ownerID int, req *models.StoreProfileRequest) (bool, error) {
	var existingID int
	err := s.db.QueryRow("SELECT id FROM stores WHERE ownerId = ?", ownerID).Scan(&existingID)
	if err != nil && err != sql.ErrNoRows {
		s.logger.Error().Err(err).Int("owner_id", ownerID).Msg("Error checking existing store")
		return false, fmt.Errorf("database error: %w", err)
	}

	if err == nil {
		_, err = s.db.Exec(
			`UPDATE stores SET storeName = ?, ownerName = ?, email = ?, phone = ?, address = ?,
				description = ?, establishedYear = ?, website = ?, updatedAt = NOW()
			WHERE ownerId = ?`,
			req.StoreName, req.OwnerName, req.Email, req.Phone, req.Address,
			req.Description, req.EstablishedYear, req.Website, ownerID,
		)
		if err != nil {
			if isDuplicateKey(err) {
				return false, apperr.ErrDuplicateStoreEmail
			}
			s.logger.Error().Err(err).Int("owner_id", ownerID).Msg("Error updating store profile")
			return false, fmt.Errorf("failed to update store profile: %w", err)
		}
		s.logger.Info().Int("owner_id", ownerID).Msg("Store profile updated")
		return false, nil
	}

	_, err = s.db.Exec(
		`INSERT INTO stores (storeName, ownerName, email, phone, address, description, establishedYear, website, ownerId)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.StoreName, req.OwnerName, req.Email, req.Phone, req.Address,
		req.Description, req.EstablishedYear, req.Website, ownerID,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return false, apperr.ErrDuplicateStoreEmail
		}
		s.logger.Error().Err(err).Int("owner_id", ownerID).Msg("Error creating store profile")
		return false, fmt.Errorf("failed to create store profile: %w", err)
	}

	s.logger.Info().Int("owner_id", ownerID).Msg("Store profile created")
	return true, nil
}

// DeleteProfile removes the owner's store and its ratings.
func (s *StoreService) DeleteProfile(ownerID int) error {
	var storeID int
	err := s.db.QueryRow("SELECT id FROM stores WHERE ownerId = ?", ownerID).Scan(&storeID)
	if err == sql.ErrNoRows {
		return apperr.ErrStoreNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Int("owner_id", ownerID).Msg("Error fetching store for delete")
		return fmt.Errorf("database error: %w", err)
	}

	return s.deleteStore(storeID)
}

func (s *StoreService) deleteStore(storeID int) error {
	if s.ratingsAvailable {
		if _, err := s.db.Exec("DELETE FROM ratings WHERE store_id = ?", storeID); err != nil {
			s.logger.Error().Err(err).Int("store_id", storeID).Msg("Error deleting store ratings")
			return fmt.Errorf("failed to delete store ratings: %w", err)
		}
	}

	if _, err := s.db.Exec("DELETE FROM stores WHERE id = ?", storeID); err != nil {
		s.logger.Error().Err(err).Int("store_id", storeID).Msg("Error deleting store")
		return fmt.Errorf("failed to delete store: %w", err)
	}

	s.logger.Info().Int("store_id", storeID).Msg("Store deleted")
	return nil
}

// ListPublic returns all stores with aggregated ratings for browsing,
// ordered by store name. When userID is non-nil each row carries that
// user's own rating of the store. Without the ratings relation every
// aggregate degrades to zero and user ratings to null.
func (s *StoreService) ListPublic(userID *int) ([]*models.StoreSummary, error) {
	var rows *sql.Rows
	var err error

	if s.ratingsAvailable {
		query := `
			SELECT s.id, s.storeName AS name, s.email, s.address, s.description, s.createdAt,
				u.fullName AS owner_name,
				COALESCE(ROUND(AVG(r.rating), 2), 0) AS average_rating,
				COUNT(r.id) AS total_ratings,
				(SELECT rating FROM ratings WHERE store_id = s.id AND user_id = ?) AS user_rating
			FROM stores s
			JOIN users u ON s.ownerId = u.id
			LEFT JOIN ratings r ON s.id = r.store_id
			GROUP BY s.id, s.storeName, s.email, s.address, s.description, s.createdAt, u.fullName
			ORDER BY s.storeName ASC`
		var id interface{}
		if userID != nil {
			id = *userID
		}
		rows, err = s.db.Query(query, id)
	} else {
		query := `
			SELECT s.id, s.storeName AS name, s.email, s.address, s.description, s.createdAt,
				u.fullName AS owner_name,
				0 AS average_rating, 0 AS total_ratings, NULL AS user_rating
			FROM stores s
			JOIN users u ON s.ownerId = u.id
			ORDER BY s.storeName ASC`
		rows, err = s.db.Query(query)
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Error listing public stores")
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	var stores []*models.StoreSummary
	for rows.Next() {
		var item models.StoreSummary
		var description sql.NullString
		var userRating sql.NullInt64

		err := rows.Scan(
			&item.ID, &item.Name, &item.Email, &item.Address, &description, &item.CreatedAt,
			&item.OwnerName, &item.AverageRating, &item.TotalRatings, &userRating,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning store row: %w", err)
		}

		if description.Valid {
			item.Description = &description.String
		}
		if userRating.Valid {
			val := int(userRating.Int64)
			item.UserRating = &val
		}

		stores = append(stores, &item)
	}

	return stores, rows.Err()
}

var storeSortColumns = map[string]string{
	"name":           "s.storeName",
	"email":          "s.email",
	"address":        "s.address",
	"created_at":     "s.createdAt",
	"average_rating": "average_rating",
	"total_ratings":  "total_ratings",
}

// ListStores returns the admin store listing with search across store
// name, email, address and owner name. Unknown sort fields fall back to
// name ascending.
func (s *StoreService) ListStores(filter *models.StoreFilter) ([]*models.AdminStoreRow, error) {
	var query string
	if s.ratingsAvailable {
		query = `
			SELECT s.id, s.storeName AS name, s.email, s.address, s.createdAt,
				u.fullName AS owner_name, u.email AS owner_email,
				COALESCE(ROUND(AVG(r.rating), 2), 0) AS average_rating, COUNT(r.id) AS total_ratings
			FROM stores s
			LEFT JOIN users u ON s.ownerId = u.id
			LEFT JOIN ratings r ON s.id = r.store_id`
	} else {
		query = `
			SELECT s.id, s.storeName AS name, s.email, s.address, s.createdAt,
				u.fullName AS owner_name, u.email AS owner_email,
				0 AS average_rating, 0 AS total_ratings
			FROM stores s
			LEFT JOIN users u ON s.ownerId = u.id`
	}

	var params []interface{}
	if filter.Search != "" {
		query += " WHERE (s.storeName LIKE ? OR s.email LIKE ? OR s.address LIKE ? OR u.fullName LIKE ?)"
		pattern := "%" + filter.Search + "%"
		params = append(params, pattern, pattern, pattern, pattern)
	}

	query += " GROUP BY s.id, s.storeName, s.email, s.address, s.createdAt, u.fullName, u.email"

	sortColumn, ok := storeSortColumns[filter.SortBy]
	if !ok || (!s.ratingsAvailable && (filter.SortBy == "average_rating" || filter.SortBy == "total_ratings")) {
		sortColumn = "s.storeName"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", sortColumn, orderKeyword(filter.SortOrder))

	rows, err := s.db.Query(query, params...)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error listing stores")
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	var stores []*models.AdminStoreRow
	for rows.Next() {
		var item models.AdminStoreRow
		var ownerName, ownerEmail sql.NullString

		err := rows.Scan(
			&item.ID, &item.Name, &item.Email, &item.Address, &item.CreatedAt,
			&ownerName, &ownerEmail, &item.AverageRating, &item.TotalRatings,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning store row: %w", err)
		}
		item.OwnerName = ownerName.String
		item.OwnerEmail = ownerEmail.String

		stores = append(stores, &item)
	}

	return stores, rows.Err()
}

// CreateStore is the admin creation path: the store is created on behalf
// of an existing Owner user. One store per owner is enforced here as well
// as in the self-service flow.
func (s *StoreService) CreateStore(req *models.AdminStoreRequest) error {
	var ownerName string
	var ownerRole models.Role
	err := s.db.QueryRow("SELECT fullName, role FROM users WHERE id = ?", req.OwnerID).Scan(&ownerName, &ownerRole)
	if err == sql.ErrNoRows {
		return apperr.ErrUserNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Int("owner_id", req.OwnerID).Msg("Error fetching owner")
		return fmt.Errorf("database error: %w", err)
	}

	if ownerRole != models.RoleOwner {
		return apperr.ErrNotAnOwner
	}

	var existingID int
	err = s.db.QueryRow("SELECT id FROM stores WHERE ownerId = ?", req.OwnerID).Scan(&existingID)
	if err == nil {
		return apperr.ErrOwnerHasStore
	} else if err != sql.ErrNoRows {
		s.logger.Error().Err(err).Msg("Error checking existing store")
		return fmt.Errorf("database error: %w", err)
	}

	// phone is NOT NULL in the schema and the admin payload has no phone
	// field; keep the placeholder until the owner fills in their profile.
	_, err = s.db.Exec(
		`INSERT INTO stores (storeName, ownerName, email, phone, address, description, establishedYear, website, ownerId)
		VALUES (?, ?, ?, 'N/A', ?, NULL, NULL, NULL, ?)`,
		req.Name, ownerName, req.Email, req.Address, req.OwnerID,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return apperr.ErrDuplicateStoreEmail
		}
		s.logger.Error().Err(err).Msg("Error creating store")
		return fmt.Errorf("failed to create store: %w", err)
	}

	s.logger.Info().Int("owner_id", req.OwnerID).Str("store", req.Name).Msg("Store created by admin")
	return nil
}

// DeleteStore is the admin deletion path; ratings cascade.
func (s *StoreService) DeleteStore(storeID int) error {
	var id int
	err := s.db.QueryRow("SELECT id FROM stores WHERE id = ?", storeID).Scan(&id)
	if err == sql.ErrNoRows {
		return apperr.ErrStoreNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Int("store_id", storeID).Msg("Error fetching store")
		return fmt.Errorf("database error: %w", err)
	}

	return s.deleteStore(storeID)
}

func (s *StoreService) CountStores() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM stores").Scan(&count)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error counting stores")
		return 0, fmt.Errorf("database error: %w", err)
	}
	return count, nil
}
