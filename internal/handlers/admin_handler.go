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

// AdminHandler serves the admin surface: dashboard counts plus user and
// store CRUD with search/sort listings.
type AdminHandler struct {
	userService   *services.UserService
	storeService  *services.StoreService
	ratingService *services.RatingService
	logger        zerolog.Logger
}

func NewAdminHandler(userService *services.UserService, storeService *services.StoreService, ratingService *services.RatingService, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		userService:   userService,
		storeService:  storeService,
		ratingService: ratingService,
		logger:        logger,
	}
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	totalUsers, err := h.userService.CountUsers()
	if err != nil {
		respondServiceError(w, h.logger, "dashboard_failed", err)
		return
	}

	totalStores, err := h.storeService.CountStores()
	if err != nil {
		respondServiceError(w, h.logger, "dashboard_failed", err)
		return
	}

	totalRatings, err := h.ratingService.CountRatings()
	if err != nil {
		respondServiceError(w, h.logger, "dashboard_failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, models.DashboardStats{
		TotalUsers:   totalUsers,
		TotalStores:  totalStores,
		TotalRatings: totalRatings,
	})
}

func (h *AdminHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.UserFilter{
		Search:    q.Get("search"),
		Role:      q.Get("role"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}
	if filter.SortBy == "" {
		filter.SortBy = "fullName"
	}

	users, err := h.userService.ListUsers(&filter)
	if err != nil {
		respondServiceError(w, h.logger, "list_users_failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"users": users,
		"total": len(users),
	})
}

func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_user_id", "Invalid user ID")
		return
	}

	user, err := h.userService.GetUserDetail(userID)
	if err != nil {
		respondServiceError(w, h.logger, "user_not_found", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.AdminUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if req.Name == "" || req.Email == "" || req.Password == "" || req.Address == "" || req.Role == "" {
		respondWithError(w, http.StatusBadRequest, "validation_failed", "All fields are required")
		return
	}
	if !validEmail(req.Email) {
		respondWithError(w, http.StatusBadRequest, "validation_failed", "Invalid email format")
		return
	}
	if len(req.Password) < 6 {
		respondWithError(w, http.StatusBadRequest, "validation_failed", "Password must be at least 6 characters")
		return
	}

	if err := h.userService.CreateUser(&req); err != nil {
		respondServiceError(w, h.logger, "create_user_failed", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{
		"message": "User created successfully",
	})
}

func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_user_id", "Invalid user ID")
		return
	}

	var req models.AdminUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if req.Name == "" || req.Email == "" || req.Address == "" || req.Role == "" {
		respondWithError(w, http.StatusBadRequest, "validation_failed", "Name, email, address and role are required")
		return
	}
	if !validEmail(req.Email) {
		respondWithError(w, http.StatusBadRequest, "validation_failed", "Invalid email format")
		return
	}

	if err := h.userService.UpdateUser(userID, &req); err != nil {
		respondServiceError(w, h.logger, "update_user_failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "User updated successfully",
	})
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_user_id", "Invalid user ID")
		return
	}

	admin, ok := middleware.GetUser(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	if err := h.userService.DeleteUser(userID, admin.ID); err != nil {
		respondServiceError(w, h.logger, "delete_user_failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "User deleted successfully",
	})
}

func (h *AdminHandler) GetStores(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.StoreFilter{
		Search:    q.Get("search"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}
	if filter.SortBy == "" {
		filter.SortBy = "name"
	}

	stores, err := h.storeService.ListStores(&filter)
	if err != nil {
		respondServiceError(w, h.logger, "list_stores_failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"stores": stores,
		"total":  len(stores),
	})
}

func (h *AdminHandler) CreateStore(w http.ResponseWriter, r *http.Request) {
	var req models.AdminStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if req.Name == "" || req.Email == "" || req.Address == "" || req.OwnerID == 0 {
		respondWithError(w, http.StatusBadRequest, "validation_failed", "name, email, address and ownerId are required")
		return
	}
	if !validEmail(req.Email) {
		respondWithError(w, http.StatusBadRequest, "validation_failed", "Invalid email format")
		return
	}
	if len(req.Address) > 400 {
		respondWithError(w, http.StatusBadRequest, "validation_failed", "Address must not exceed 400 characters")
		return
	}

	if err := h.storeService.CreateStore(&req); err != nil {
		respondServiceError(w, h.logger, "create_store_failed", err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{
		"message": "Store created successfully",
	})
}

func (h *AdminHandler) DeleteStore(w http.ResponseWriter, r *http.Request) {
	storeID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_store_id", "Invalid store ID")
		return
	}

	if err := h.storeService.DeleteStore(storeID); err != nil {
		respondServiceError(w, h.logger, "delete_store_failed", err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Store deleted successfully",
	})
}
