package dto

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims defines the custom claims for JWT.
type AuthClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"` // "student" or "faculty"
	jwt.RegisteredClaims
}

// CreateUserRequest is the request body for registering a user.
type CreateUserRequest struct {
	DisplayName string `json:"display_name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Role        string `json:"role" validate:"required,oneof=student faculty"`
}

// UserProfileResponse defines the structure for a user's profile information.
type UserProfileResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	User        UserProfileResponse `json:"user"`
	AccessToken string              `json:"access_token"`
}

// MessageResponse represents a generic message response.
// @Description Generic message response
type MessageResponse struct {
	Message string `json:"message"`
}

// AttemptSummary is one past submission on a student's dashboard.
type AttemptSummary struct {
	QuizID      string    `json:"quiz_id"`
	Score       int       `json:"score"`
	Bucket      string    `json:"bucket"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// DashboardResponse summarizes a student's quiz history.
// @Description Student dashboard: attempt history and score distribution
type DashboardResponse struct {
	TotalAttempts int              `json:"total_attempts"`
	AverageScore  int              `json:"average_score"`
	Buckets       map[string]int   `json:"buckets"` // bucket label -> attempt count
	Attempts      []AttemptSummary `json:"attempts"`
}
