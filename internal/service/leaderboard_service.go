package service

import (
	"context"
	"encoding/json"

	"classquiz/internal/cache"
	"classquiz/internal/config"
	"classquiz/internal/domain"
	"classquiz/internal/dto"
	"classquiz/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// LeaderboardService ranks quiz submissions for display.
type LeaderboardService interface {
	// GetLeaderboard returns the ranked leaderboard of a quiz: score
	// descending, ties broken by earlier submission. The ranking is
	// recomputed from the stored entries on every cache miss, so it is
	// deterministic for a given set of submissions.
	GetLeaderboard(ctx context.Context, quizID string) (*dto.LeaderboardResponse, error)
}

type leaderboardService struct {
	leaderboardRepo domain.LeaderboardRepository
	quizRepo        domain.QuizRepository
	userRepo        domain.UserRepository
	cache           domain.Cache
	cacheCfg        config.CacheConfig
	group           singleflight.Group
}

// NewLeaderboardService creates a new LeaderboardService.
func NewLeaderboardService(
	leaderboardRepo domain.LeaderboardRepository,
	quizRepo domain.QuizRepository,
	userRepo domain.UserRepository,
	cacheClient domain.Cache,
	cacheCfg config.CacheConfig,
) LeaderboardService {
	return &leaderboardService{
		leaderboardRepo: leaderboardRepo,
		quizRepo:        quizRepo,
		userRepo:        userRepo,
		cache:           cacheClient,
		cacheCfg:        cacheCfg,
	}
}

// GetLeaderboard implements LeaderboardService. Concurrent requests for the
// same quiz collapse into one rebuild via singleflight; the ranked snapshot
// is then cached briefly to absorb classroom refresh storms.
func (s *leaderboardService) GetLeaderboard(ctx context.Context, quizID string) (*dto.LeaderboardResponse, error) {
	cacheKey := cache.LeaderboardKey(quizID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
			var resp dto.LeaderboardResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return &resp, nil
			}
			_ = s.cache.Delete(ctx, cacheKey)
		} else if err != domain.ErrCacheMiss {
			logger.Get().Warn("Leaderboard cache read failed", zap.Error(err))
		}
	}

	result, err, _ := s.group.Do(quizID, func() (interface{}, error) {
		return s.build(ctx, quizID)
	})
	if err != nil {
		return nil, err
	}
	return result.(*dto.LeaderboardResponse), nil
}

func (s *leaderboardService) build(ctx context.Context, quizID string) (*dto.LeaderboardResponse, error) {
	quiz, err := s.quizRepo.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}

	entries, err := s.leaderboardRepo.ListEntries(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list leaderboard entries", err)
	}

	ranked := domain.RankEntries(entries)

	// Entries recorded before a display-name change carry the old name;
	// re-resolve so the board always shows current names.
	ids := make([]string, len(ranked))
	for i, e := range ranked {
		ids[i] = e.StudentID
	}
	names, err := s.userRepo.GetDisplayNames(ctx, ids)
	if err != nil {
		logger.Get().Warn("Failed to resolve display names, using stored ones", zap.Error(err))
		names = nil
	}

	resp := &dto.LeaderboardResponse{
		QuizID:  quizID,
		Entries: make([]dto.LeaderboardEntryResponse, len(ranked)),
	}
	for i, e := range ranked {
		displayName := e.DisplayName
		if name, ok := names[e.StudentID]; ok {
			displayName = name
		}
		resp.Entries[i] = dto.LeaderboardEntryResponse{
			Rank:        e.Rank,
			StudentID:   e.StudentID,
			DisplayName: displayName,
			Score:       e.Score,
			SubmittedAt: e.SubmittedAt,
		}
	}

	if s.cache != nil {
		if data, err := json.Marshal(resp); err == nil {
			if err := s.cache.Set(ctx, cache.LeaderboardKey(quizID), string(data), s.cacheCfg.LeaderboardTTL); err != nil {
				logger.Get().Warn("Leaderboard cache write failed", zap.Error(err))
			}
		}
	}
	return resp, nil
}
