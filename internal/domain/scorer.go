package domain

import (
	"fmt"
	"math"
)

// Bucket is the qualitative score tier.
type Bucket string

const (
	BucketGood             Bucket = "Good"
	BucketFair             Bucket = "Fair"
	BucketNeedsImprovement Bucket = "Needs Improvement"
)

// Bucket thresholds, in percent.
const (
	goodThreshold = 80
	fairThreshold = 60
)

// Score grades a finalized answer sheet against its question bank.
// percent = round(100 * correct / total), rounded half away from zero.
// Unanswered slots (UnansweredIndex) never match a correct index and
// therefore score as incorrect. Pure and deterministic.
func Score(answers []int, questions []Question) (int, Bucket, error) {
	if len(questions) == 0 {
		return 0, "", NewInvalidInputError("cannot score an empty question bank")
	}
	if len(answers) != len(questions) {
		return 0, "", NewInvalidInputError(
			fmt.Sprintf("answer count %d does not match question count %d", len(answers), len(questions)))
	}

	correct := 0
	for i, q := range questions {
		if answers[i] == q.CorrectIndex {
			correct++
		}
	}

	percent := roundHalfAwayFromZero(100 * float64(correct) / float64(len(questions)))
	return percent, BucketFor(percent), nil
}

// BucketFor maps a percentage score onto its qualitative tier.
func BucketFor(percent int) Bucket {
	switch {
	case percent >= goodThreshold:
		return BucketGood
	case percent >= fairThreshold:
		return BucketFair
	default:
		return BucketNeedsImprovement
	}
}

func roundHalfAwayFromZero(v float64) int {
	if v < 0 {
		return -int(math.Floor(-v + 0.5))
	}
	return int(math.Floor(v + 0.5))
}
