package cache

import "strings"

const (
	GlobalKeyPrefix = "classquiz"
)

// GenerateCacheKey generates a cache key for a given service, object type,
// and identifier. Additional params are joined by "_" and appended.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// LeaderboardKey is the cache key for a quiz's ranked leaderboard snapshot.
func LeaderboardKey(quizID string) string {
	return GenerateCacheKey("leaderboard", "quiz", quizID)
}

// QuestionBankKey is the cache key for a quiz's ordered question bank.
func QuestionBankKey(quizID string) string {
	return GenerateCacheKey("quiz", "questions", quizID)
}
