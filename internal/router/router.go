package router

import (
	"database/sql"
	"net/http"

	"storeratings/internal/config"
	"storeratings/internal/db"
	"storeratings/internal/handlers"
	"storeratings/internal/middleware"
	"storeratings/internal/models"
	"storeratings/internal/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

func SetupRouter(database *sql.DB, cfg config.Config, logger zerolog.Logger) *mux.Router {
	// Probed once at startup; aggregation degrades to zeroed ratings when
	// the relation is missing instead of failing per query.
	ratingsAvailable := db.HasTable(database, "ratings")
	if !ratingsAvailable {
		logger.Warn().Msg("Ratings table not found, rating aggregation disabled")
	}

	authService := services.NewAuthService(cfg.JWTSecret, logger)
	userService := services.NewUserService(database, logger, ratingsAvailable)
	storeService := services.NewStoreService(database, logger, ratingsAvailable)
	ratingService := services.NewRatingService(database, logger, ratingsAvailable)

	authHandler := handlers.NewAuthHandler(userService, authService, logger, cfg.CookieSecure)
	adminHandler := handlers.NewAdminHandler(userService, storeService, ratingService, logger)
	storeHandler := handlers.NewStoreHandler(storeService, logger)
	ratingHandler := handlers.NewRatingHandler(ratingService, logger)

	r := mux.NewRouter()

	rateLimiter := middleware.NewRateLimiter(rate.Limit(10), 20)

	r.Use(middleware.ErrorHandling(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(rateLimiter.Middleware())

	authenticate := middleware.Authentication(cfg.JWTSecret, userService.GetUserByID, logger)

	api := r.PathPrefix("/api").Subrouter()

	auth := api.PathPrefix("/auth").Subrouter()
	auth.Use(middleware.RequestValidation())
	auth.HandleFunc("/register", authHandler.Register).Methods("POST")
	auth.HandleFunc("/login", authHandler.Login).Methods("POST")
	auth.HandleFunc("/user/logout", authHandler.Logout).Methods("GET")
	auth.HandleFunc("/forgot-password", authHandler.ForgotPassword).Methods("POST")
	auth.HandleFunc("/reset-password", authHandler.ResetPassword).Methods("POST")

	authSession := auth.PathPrefix("").Subrouter()
	authSession.Use(authenticate)
	authSession.HandleFunc("/me", authHandler.Me).Methods("GET")
	authSession.HandleFunc("/change-password", authHandler.ChangePassword).Methods("PUT")
	authSession.HandleFunc("/profile", authHandler.UpdateProfile).Methods("POST", "PUT")

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(authenticate)
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	admin.HandleFunc("/dashboard", adminHandler.Dashboard).Methods("GET")
	admin.HandleFunc("/users", adminHandler.GetUsers).Methods("GET")
	admin.HandleFunc("/users", adminHandler.CreateUser).Methods("POST")
	admin.HandleFunc("/users/{id}", adminHandler.GetUser).Methods("GET")
	admin.HandleFunc("/users/{id}", adminHandler.UpdateUser).Methods("PUT")
	admin.HandleFunc("/users/{id}", adminHandler.DeleteUser).Methods("DELETE")
	admin.HandleFunc("/stores", adminHandler.GetStores).Methods("GET")
	admin.HandleFunc("/stores", adminHandler.CreateStore).Methods("POST")
	admin.HandleFunc("/stores/{id}", adminHandler.DeleteStore).Methods("DELETE")

	stores := api.PathPrefix("/stores").Subrouter()
	stores.HandleFunc("/public", storeHandler.PublicStores).Methods("GET")

	storeOwner := stores.PathPrefix("/profile").Subrouter()
	storeOwner.Use(authenticate)
	storeOwner.Use(middleware.RequireRole(models.RoleOwner))
	storeOwner.HandleFunc("", storeHandler.GetProfile).Methods("GET")
	storeOwner.HandleFunc("", storeHandler.UpsertProfile).Methods("POST", "PUT")
	storeOwner.HandleFunc("", storeHandler.DeleteProfile).Methods("DELETE")

	storeAdmin := stores.PathPrefix("/all").Subrouter()
	storeAdmin.Use(authenticate)
	storeAdmin.Use(middleware.RequireRole(models.RoleAdmin))
	storeAdmin.HandleFunc("", adminHandler.GetStores).Methods("GET")

	storeSession := stores.PathPrefix("").Subrouter()
	storeSession.Use(authenticate)
	storeSession.HandleFunc("/public/authenticated", storeHandler.AuthenticatedStores).Methods("GET")

	ratings := api.PathPrefix("/ratings").Subrouter()
	ratings.Use(authenticate)
	ratings.HandleFunc("/store/{storeId}", ratingHandler.GetStoreRatings).Methods("GET")

	ratingUser := ratings.PathPrefix("").Subrouter()
	ratingUser.Use(middleware.RequireRole(models.RoleNormalUser))
	ratingUser.HandleFunc("/{storeId}", ratingHandler.GetUserRating).Methods("GET")
	ratingUser.HandleFunc("/{storeId}", ratingHandler.CreateOrUpdate).Methods("POST")
	ratingUser.HandleFunc("/{storeId}", ratingHandler.Delete).Methods("DELETE")

	owner := api.PathPrefix("/owner").Subrouter()
	owner.Use(authenticate)
	owner.Use(middleware.RequireRole(models.RoleOwner))
	owner.HandleFunc("/my-ratings", ratingHandler.OwnerRatings).Methods("GET")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return r
}
