package service

import (
	"context"

	"classquiz/internal/domain"
	"classquiz/internal/dto"
	"classquiz/internal/util"
)

// UserService manages users and the student dashboard.
type UserService interface {
	// Register creates a user and issues an access token for it.
	Register(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserProfileResponse, string, error)

	// GetProfile returns a user's profile.
	GetProfile(ctx context.Context, userID string) (*dto.UserProfileResponse, error)

	// GetDashboard summarizes a student's submission history: attempt
	// count, average score and the distribution over result buckets.
	GetDashboard(ctx context.Context, userID string) (*dto.DashboardResponse, error)
}

type userService struct {
	userRepo       domain.UserRepository
	submissionRepo domain.SubmissionRepository
	tokenService   TokenService
}

// NewUserService creates a new UserService.
func NewUserService(userRepo domain.UserRepository, submissionRepo domain.SubmissionRepository, tokenService TokenService) UserService {
	return &userService{
		userRepo:       userRepo,
		submissionRepo: submissionRepo,
		tokenService:   tokenService,
	}
}

// Register implements UserService.
func (s *userService) Register(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserProfileResponse, string, error) {
	if req.Role != domain.RoleStudent && req.Role != domain.RoleFaculty {
		return nil, "", domain.NewInvalidInputError("role must be student or faculty")
	}

	user := &domain.User{
		ID:          util.NewULID(),
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Role:        req.Role,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, "", domain.NewInternalError("Failed to create user", err)
	}

	token, err := s.tokenService.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}
	return toUserProfile(user), token, nil
}

// GetProfile implements UserService.
func (s *userService) GetProfile(ctx context.Context, userID string) (*dto.UserProfileResponse, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get user", err)
	}
	if user == nil {
		return nil, domain.NewNotFoundError("User not found: " + userID)
	}
	return toUserProfile(user), nil
}

// GetDashboard implements UserService.
func (s *userService) GetDashboard(ctx context.Context, userID string) (*dto.DashboardResponse, error) {
	submissions, err := s.submissionRepo.ListSubmissionsByStudent(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list submissions", err)
	}

	resp := &dto.DashboardResponse{
		TotalAttempts: len(submissions),
		Buckets: map[string]int{
			string(domain.BucketGood):             0,
			string(domain.BucketFair):             0,
			string(domain.BucketNeedsImprovement): 0,
		},
		Attempts: make([]dto.AttemptSummary, len(submissions)),
	}

	total := 0
	for i, sub := range submissions {
		total += sub.Score
		resp.Buckets[string(sub.Bucket)]++
		resp.Attempts[i] = dto.AttemptSummary{
			QuizID:      sub.QuizID,
			Score:       sub.Score,
			Bucket:      string(sub.Bucket),
			SubmittedAt: sub.SubmittedAt,
		}
	}
	if len(submissions) > 0 {
		resp.AverageScore = total / len(submissions)
	}
	return resp, nil
}

func toUserProfile(user *domain.User) *dto.UserProfileResponse {
	return &dto.UserProfileResponse{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Role:        user.Role,
	}
}
