package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"storeratings/internal/middleware"
	"storeratings/internal/models"
	"storeratings/internal/services"

	"github.com/rs/zerolog"
)

// StoreHandler serves the owner self-service store profile and the public
// browsing views.
type StoreHandler struct {
	storeService *services.StoreService
	logger       zerolog.Logger
}

func NewStoreHandler(storeService *services.StoreService, logger zerolog.Logger) *StoreHandler {
	return &StoreHandler{
		storeService: storeService,
		logger:       logger,
	}
}

func (h *StoreHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	store, err := h.storeService.GetProfileByOwner(user.ID)
	if err != nil {
		respondServiceError(w, h.logger, "store_profile_not_found", err)
		return
	}

	respondWithJSON(w, http.StatusOK, store)
}

func (h *StoreHandler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	var req models.StoreProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if msg := validateStoreProfile(&req); msg != "" {
		respondWithError(w, http.StatusBadRequest, "validation_failed", msg)
		return
	}

	created, err := h.storeService.UpsertProfile(user.ID, &req)
	if err != nil {
		respondServiceError(w, h.logger, "store_profile_failed", err)
		return
	}

	if created {
		respondWithJSON(w, http.StatusCreated, map[string]string{
			"message": "Store profile created successfully",
		})
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Store profile updated successfully",
	})
}

func validateStoreProfile(req *models.StoreProfileRequest) string {
	switch {
	case req.StoreName == "" || len(req.StoreName) > 100:
		return "Store name must be between 1 and 100 characters"
	case req.OwnerName == "" || len(req.OwnerName) > 100:
		return "Owner name must be between 1 and 100 characters"
	case !validEmail(req.Email):
		return "Please provide a valid email address"
	case len(req.Phone) < 5 || len(req.Phone) > 20:
		return "Phone number must be between 5 and 20 characters"
	case len(req.Address) < 5 || len(req.Address) > 500:
		return "Address must be between 5 and 500 characters"
	case req.Description != nil && len(*req.Description) > 1000:
		return "Description must not exceed 1000 characters"
	case !validEstablishedYear(req.EstablishedYear):
		return "Please provide a valid establishment year between 1900 and current year"
	case req.Website != nil && *req.Website != "" && !strings.Contains(*req.Website, "."):
		return "Please provide a valid website URL"
	}
	return ""
}

func (h *StoreHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	if err := h.storeService.DeleteProfile(user.ID); err != nil {
		respondServiceError(w, h.logger, "store_profile_delete_failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Store profile deleted successfully",
	})
}

// PublicStores lists all stores with aggregated ratings. Anonymous view:
// user_rating is always null.
func (h *StoreHandler) PublicStores(w http.ResponseWriter, r *http.Request) {
	h.listStores(w, nil)
}

// AuthenticatedStores is the same listing for a signed-in user, with the
// caller's own rating attached to each store.
func (h *StoreHandler) AuthenticatedStores(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}
	h.listStores(w, &user.ID)
}

func (h *StoreHandler) listStores(w http.ResponseWriter, userID *int) {
	stores, err := h.storeService.ListPublic(userID)
	if err != nil {
		respondServiceError(w, h.logger, "list_stores_failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"data": stores,
	})
}
