package domain

import (
	"sort"
	"time"
)

// LeaderboardEntry is one ranked row of a quiz leaderboard. Entries are
// derived from submissions on every read, never stored with their rank.
type LeaderboardEntry struct {
	StudentID   string
	DisplayName string
	Score       int
	SubmittedAt time.Time
	Rank        int // 1-based, contiguous, assigned by RankEntries
}

// RankEntries orders leaderboard entries and assigns ranks: score
// descending, ties broken by earlier submission, exact timestamp ties by
// student ID so the ordering is total. The underlying store is append-only
// with no uniqueness guarantee, so entries are first de-duplicated by
// student, keeping the earliest entry: under the at-most-one-submission
// invariant a later row for the same student can only be a double write.
// Recomputing on the same input yields identical ranks.
func RankEntries(entries []LeaderboardEntry) []LeaderboardEntry {
	earliest := make(map[string]LeaderboardEntry, len(entries))
	for _, e := range entries {
		if prev, ok := earliest[e.StudentID]; ok && !e.SubmittedAt.Before(prev.SubmittedAt) {
			continue
		}
		earliest[e.StudentID] = e
	}

	ranked := make([]LeaderboardEntry, 0, len(earliest))
	for _, e := range earliest {
		ranked = append(ranked, e)
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if !ranked[i].SubmittedAt.Equal(ranked[j].SubmittedAt) {
			return ranked[i].SubmittedAt.Before(ranked[j].SubmittedAt)
		}
		return ranked[i].StudentID < ranked[j].StudentID
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
