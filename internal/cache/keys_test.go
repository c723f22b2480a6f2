package cache

import "testing"

func TestGenerateCacheKey(t *testing.T) {
	tests := []struct {
		name        string
		serviceName string
		objectType  string
		identifier  string
		paramsKey   []string
		expectedKey string
	}{
		{
			name:        "without paramsKey",
			serviceName: "leaderboard",
			objectType:  "quiz",
			identifier:  "01HZX",
			paramsKey:   nil,
			expectedKey: "classquiz:leaderboard:quiz:01HZX",
		},
		{
			name:        "with empty paramsKey",
			serviceName: "quiz",
			objectType:  "questions",
			identifier:  "01HZX",
			paramsKey:   []string{},
			expectedKey: "classquiz:quiz:questions:01HZX",
		},
		{
			name:        "with one paramsKey",
			serviceName: "room",
			objectType:  "documents",
			identifier:  "abc",
			paramsKey:   []string{"unlocked"},
			expectedKey: "classquiz:room:documents:abc:unlocked",
		},
		{
			name:        "with multiple paramsKey",
			serviceName: "user",
			objectType:  "dashboard",
			identifier:  "xyz",
			paramsKey:   []string{"page1", "size10"},
			expectedKey: "classquiz:user:dashboard:xyz:page1_size10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actualKey := GenerateCacheKey(tt.serviceName, tt.objectType, tt.identifier, tt.paramsKey...)
			if actualKey != tt.expectedKey {
				t.Errorf("GenerateCacheKey() = %v, want %v", actualKey, tt.expectedKey)
			}
		})
	}
}

func TestWellKnownKeys(t *testing.T) {
	if got := LeaderboardKey("q1"); got != "classquiz:leaderboard:quiz:q1" {
		t.Errorf("LeaderboardKey() = %v", got)
	}
	if got := QuestionBankKey("q1"); got != "classquiz:quiz:questions:q1" {
		t.Errorf("QuestionBankKey() = %v", got)
	}
}
