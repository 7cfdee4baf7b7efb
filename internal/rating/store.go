package rating

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"podium/internal/models"
)

const (
	// Redis key prefix and pub/sub channel
	UserRatingPrefix     = "user_rating:"
	RatingUpdatesChannel = "rating_updates"
)

// Store persists per-user ratings in Redis, keyed by user id.
type Store struct {
	ctx context.Context
	rdb *redis.Client
}

// NewStore creates a Redis-backed rating store.
func NewStore(rdb *redis.Client) *Store {
	return &Store{
		ctx: context.Background(),
		rdb: rdb,
	}
}

// UserRatingInfo contains a user's rating and completed session count.
type UserRatingInfo struct {
	UserID            string `json:"userId"`
	Rating            int    `json:"rating"`
	SessionsCompleted int    `json:"sessionsCompleted"`
}

// GetUserRating retrieves a user's rating from Redis. Unknown users read as
// DefaultRating with zero completed sessions.
func (s *Store) GetUserRating(userId string) (*UserRatingInfo, error) {
	key := fmt.Sprintf("%s%s", UserRatingPrefix, userId)

	data, err := s.rdb.HGetAll(s.ctx, key).Result()
	if err == redis.Nil || len(data) == 0 {
		return &UserRatingInfo{
			UserID:            userId,
			Rating:            DefaultRating,
			SessionsCompleted: 0,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	info := &UserRatingInfo{
		UserID: userId,
		Rating: DefaultRating,
	}

	if ratingStr, ok := data["rating"]; ok {
		if r, err := strconv.Atoi(ratingStr); err == nil {
			info.Rating = r
		}
	}

	if sessionsStr, ok := data["sessions_completed"]; ok {
		if n, err := strconv.Atoi(sessionsStr); err == nil {
			info.SessionsCompleted = n
		}
	}

	return info, nil
}

// SetUserRating stores a user's rating in Redis.
func (s *Store) SetUserRating(userId string, rating, sessionsCompleted int) error {
	key := fmt.Sprintf("%s%s", UserRatingPrefix, userId)

	err := s.rdb.HSet(s.ctx, key, map[string]interface{}{
		"rating":             rating,
		"sessions_completed": sessionsCompleted,
		"last_updated":       time.Now().Unix(),
	}).Err()

	if err != nil {
		return fmt.Errorf("failed to set user rating: %w", err)
	}

	// Ratings for inactive users expire after 90 days
	s.rdb.Expire(s.ctx, key, 90*24*time.Hour)

	return nil
}

// PublishUpdate publishes a rating update event to Redis.
func (s *Store) PublishUpdate(update *models.RatingUpdate) {
	payload, err := json.Marshal(update)
	if err != nil {
		log.Printf("[Rating] Failed to marshal rating update: %v", err)
		return
	}

	err = s.rdb.Publish(s.ctx, RatingUpdatesChannel, payload).Err()
	if err != nil {
		log.Printf("[Rating] Failed to publish rating update: %v", err)
	}
}
