package models

import "time"

type Rating struct {
	ID        int       `json:"id"`
	StoreID   int       `json:"store_id"`
	UserID    int       `json:"user_id"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

type RatingRequest struct {
	Rating int `json:"rating"`
}

// StoreRatingEntry is one rating of a store together with the rater's
// identity, as shown to the store owner and on the store detail view.
type StoreRatingEntry struct {
	ID        int       `json:"id"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UserID    int       `json:"user_id"`
	UserName  string    `json:"userName"`
	UserEmail string    `json:"userEmail"`
}

type DashboardStats struct {
	TotalUsers   int `json:"totalUsers"`
	TotalStores  int `json:"totalStores"`
	TotalRatings int `json:"totalRatings"`
}
