package models

import "time"

type Store struct {
	ID              int       `json:"id"`
	StoreName       string    `json:"storeName"`
	OwnerName       string    `json:"ownerName"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Address         string    `json:"address"`
	Description     *string   `json:"description"`
	EstablishedYear *int      `json:"establishedYear"`
	Website         *string   `json:"website"`
	OwnerID         int       `json:"ownerId"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// StoreSummary is the public browsing view: store fields plus aggregated
// ratings and, for authenticated requests, the caller's own rating.
type StoreSummary struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Address       string    `json:"address"`
	Description   *string   `json:"description"`
	CreatedAt     time.Time `json:"created_at"`
	OwnerName     string    `json:"owner_name"`
	AverageRating float64   `json:"average_rating"`
	TotalRatings  int       `json:"total_ratings"`
	UserRating    *int      `json:"user_rating"`
}

// AdminStoreRow is a row of the admin store listing.
type AdminStoreRow struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Address       string    `json:"address"`
	CreatedAt     time.Time `json:"created_at"`
	OwnerName     string    `json:"owner_name"`
	OwnerEmail    string    `json:"owner_email"`
	AverageRating float64   `json:"average_rating"`
	TotalRatings  int       `json:"total_ratings"`
}

type StoreFilter struct {
	Search    string
	SortBy    string
	SortOrder string
}

// StoreProfileRequest is the owner self-service upsert payload.
type StoreProfileRequest struct {
	StoreName       string  `json:"storeName"`
	OwnerName       string  `json:"ownerName"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	Address         string  `json:"address"`
	Description     *string `json:"description"`
	EstablishedYear *int    `json:"establishedYear"`
	Website         *string `json:"website"`
}

// AdminStoreRequest is the admin store-creation payload; the store is
// created on behalf of an existing Owner user.
type AdminStoreRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	OwnerID int    `json:"ownerId"`
}
