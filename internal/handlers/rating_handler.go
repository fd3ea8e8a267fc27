package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"storeratings/internal/middleware"
	"storeratings/internal/models"
	"storeratings/internal/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type RatingHandler struct {
	ratingService *services.RatingService
	logger        zerolog.Logger
}

func NewRatingHandler(ratingService *services.RatingService, logger zerolog.Logger) *RatingHandler {
	return &RatingHandler{
		ratingService: ratingService,
		logger:        logger,
	}
}

func storeIDVar(r *http.Request) (int, bool) {
	storeID, err := strconv.Atoi(mux.Vars(r)["storeId"])
	return storeID, err == nil
}

func (h *RatingHandler) GetUserRating(w http.ResponseWriter, r *http.Request) {
	storeID, ok := storeIDVar(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid_store_id", "Invalid store ID")
		return
	}

	user, ok := middleware.GetUser(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	rating, err := h.ratingService.GetUserRating(storeID, user.ID)
	if err != nil {
		respondServiceError(w, h.logger, "rating_not_found", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"data": rating})
}

func (h *RatingHandler) CreateOrUpdate(w http.ResponseWriter, r *http.Request) {
	storeID, ok := storeIDVar(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid_store_id", "Invalid store ID")
		return
	}

	user, ok := middleware.GetUser(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	var req models.RatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	created, err := h.ratingService.CreateOrUpdate(storeID, user.ID, req.Rating)
	if err != nil {
		respondServiceError(w, h.logger, "rating_failed", err)
		return
	}

	if created {
		respondWithJSON(w, http.StatusCreated, map[string]string{
			"message": "Rating created successfully",
		})
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Rating updated successfully",
	})
}

func (h *RatingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	storeID, ok := storeIDVar(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid_store_id", "Invalid store ID")
		return
	}

	user, ok := middleware.GetUser(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	if err := h.ratingService.Delete(storeID, user.ID); err != nil {
		respondServiceError(w, h.logger, "rating_delete_failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Rating deleted successfully",
	})
}

func (h *RatingHandler) GetStoreRatings(w http.ResponseWriter, r *http.Request) {
	storeID, ok := storeIDVar(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid_store_id", "Invalid store ID")
		return
	}

	ratings, err := h.ratingService.ListForStore(storeID)
	if err != nil {
		respondServiceError(w, h.logger, "store_ratings_failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"data": ratings})
}

// OwnerRatings lists the ratings of the store owned by the caller.
func (h *RatingHandler) OwnerRatings(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	ratings, err := h.ratingService.ListForOwner(user.ID)
	if err != nil {
		respondServiceError(w, h.logger, "owner_ratings_failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{"ratings": ratings},
	})
}
