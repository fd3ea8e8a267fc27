package services

import (
	"database/sql"
	"fmt"

	"storeratings/internal/apperr"
	"storeratings/internal/models"

	"github.com/rs/zerolog"
)

type RatingService struct {
	db               *sql.DB
	logger           zerolog.Logger
	ratingsAvailable bool
}

func NewRatingService(db *sql.DB, logger zerolog.Logger, ratingsAvailable bool) *RatingService {
	return &RatingService{
		db:               db,
		logger:           logger,
		ratingsAvailable: ratingsAvailable,
	}
}

// GetUserRating returns the rating userID gave storeID, if any.
func (s *RatingService) GetUserRating(storeID, userID int) (*models.Rating, error) {
	var rating models.Rating
	err := s.db.QueryRow(
		"SELECT id, store_id, user_id, rating, created_at FROM ratings WHERE store_id = ? AND user_id = ?",
		storeID, userID,
	).Scan(&rating.ID, &rating.StoreID, &rating.UserID, &rating.Rating, &rating.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, apperr.ErrRatingNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Int("store_id", storeID).Int("user_id", userID).Msg("Error fetching rating")
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &rating, nil
}

// CreateOrUpdate submits a rating, updating in place when the user already
// rated the store. The (store_id, user_id) unique key keeps concurrent
// submissions to a single row: a duplicate-key insert means another
// request won the race, in which case we update instead. Returns true
// when a new rating row was created.
func (s *RatingService) CreateOrUpdate(storeID, userID, value int) (bool, error) {
	if value < 1 || value > 5 {
		return false, apperr.ErrInvalidRating
	}

	var id int
	err := s.db.QueryRow("SELECT id FROM stores WHERE id = ?", storeID).Scan(&id)
	if err == sql.ErrNoRows {
		return false, apperr.ErrStoreNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Int("store_id", storeID).Msg("Error checking store")
		return false, fmt.Errorf("database error: %w", err)
	}

	var existingID int
	err = s.db.QueryRow(
		"SELECT id FROM ratings WHERE store_id = ? AND user_id = ?",
		storeID, userID,
	).Scan(&existingID)
	if err != nil && err != sql.ErrNoRows {
		s.logger.Error().Err(err).Msg("Error checking existing rating")
		return false, fmt.Errorf("database error: %w", err)
	}

	if err == nil {
		return false, s.update(storeID, userID, value)
	}

	_, err = s.db.Exec(
		"INSERT INTO ratings (store_id, user_id, rating) VALUES (?, ?, ?)",
		storeID, userID, value,
	)
	if err != nil {
		if isDuplicateKey(err) {
			// Lost the insert race; the row exists now, update it.
			return false, s.update(storeID, userID, value)
		}
		s.logger.Error().Err(err).Int("store_id", storeID).Int("user_id", userID).Msg("Error creating rating")
		return false, fmt.Errorf("failed to create rating: %w", err)
	}

	s.logger.Info().Int("store_id", storeID).Int("user_id", userID).Int("rating", value).Msg("Rating created")
	return true, nil
}

func (s *RatingService) update(storeID, userID, value int) error {
	_, err := s.db.Exec(
		"UPDATE ratings SET rating = ? WHERE store_id = ? AND user_id = ?",
		value, storeID, userID,
	)
	if err != nil {
		s.logger.Error().Err(err).Int("store_id", storeID).Int("user_id", userID).Msg("Error updating rating")
		return fmt.Errorf("failed to update rating: %w", err)
	}

	s.logger.Info().Int("store_id", storeID).Int("user_id", userID).Int("rating", value).Msg("Rating updated")
	return nil
}

// Delete removes the caller's rating of a store.
func (s *RatingService) Delete(storeID, userID int) error {
	result, err := s.db.Exec(
		"DELETE FROM ratings WHERE store_id = ? AND user_id = ?",
		storeID, userID,
	)
	if err != nil {
		s.logger.Error().Err(err).Int("store_id", storeID).Int("user_id", userID).Msg("Error deleting rating")
		return fmt.Errorf("failed to delete rating: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return apperr.ErrRatingNotFound
	}

	return nil
}

// ListForStore returns all ratings of a store with rater identities,
// newest first.
func (s *RatingService) ListForStore(storeID int) ([]*models.StoreRatingEntry, error) {
	var id int
	err := s.db.QueryRow("SELECT id FROM stores WHERE id = ?", storeID).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, apperr.ErrStoreNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Int("store_id", storeID).Msg("Error checking store")
		return nil, fmt.Errorf("database error: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT r.id, r.rating, r.created_at, u.id AS user_id, u.fullName AS userName, u.email AS userEmail
		FROM ratings r
		JOIN users u ON r.user_id = u.id
		WHERE r.store_id = ?
		ORDER BY r.created_at DESC`,
		storeID,
	)
	if err != nil {
		s.logger.Error().Err(err).Int("store_id", storeID).Msg("Error listing store ratings")
		return nil, fmt.Errorf("database error: %w", err)
	}
	defer rows.Close()

	var ratings []*models.StoreRatingEntry
	for rows.Next() {
		var entry models.StoreRatingEntry
		err := rows.Scan(&entry.ID, &entry.Rating, &entry.CreatedAt, &entry.UserID, &entry.UserName, &entry.UserEmail)
		if err != nil {
			return nil, fmt.Errorf("error scanning rating row: %w", err)
		}
		ratings = append(ratings, &entry)
	}

	return ratings, rows.Err()
}

// ListForOwner returns the ratings of the store owned by ownerID.
func (s *RatingService) ListForOwner(ownerID int) ([]*models.StoreRatingEntry, error) {
	var storeID int
	err := s.db.QueryRow("SELECT id FROM stores WHERE ownerId = ?", ownerID).Scan(&storeID)
	if err == sql.ErrNoRows {
		return nil, apperr.ErrStoreNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Int("owner_id", ownerID).Msg("Error fetching owner store")
		return nil, fmt.Errorf("database error: %w", err)
	}

	return s.ListForStore(storeID)
}

// CountRatings reports the dashboard total, zero when the ratings
// relation is unavailable.
func (s *RatingService) CountRatings() (int, error) {
	if !s.ratingsAvailable {
		return 0, nil
	}

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM ratings").Scan(&count)
	if err != nil {
		s.logger.Error().Err(err).Msg("Error counting ratings")
		return 0, fmt.Errorf("database error: %w", err)
	}
	return count, nil
}
