package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"classquiz/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// fixedClock is a controllable clock for deterministic session tests.
type fixedClock struct {
	t time.Time
}

func (c *fixedClock) Now() time.Time          { return c.t }
func (c *fixedClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func activeQuiz(now time.Time) *domain.Quiz {
	return &domain.Quiz{
		ID:            "quiz-1",
		Title:         "Week 3 Review",
		RoomID:        "room-1",
		CreatorID:     "faculty-1",
		QuestionCount: 2,
		StartAt:       now.Add(-time.Hour),
		EndAt:         now.Add(time.Hour),
		DurationMin:   1,
	}
}

func bankOf(n int) []domain.Question {
	questions := make([]domain.Question, n)
	for i := range questions {
		questions[i] = domain.Question{
			ID:           "q-" + string(rune('a'+i)),
			QuizID:       "quiz-1",
			Position:     i,
			Text:         "Question?",
			Options:      []string{"a", "b", "c", "d"},
			CorrectIndex: 1,
		}
	}
	return questions
}

type sessionFixture struct {
	svc             *sessionService
	quizRepo        *MockQuizRepository
	submissionRepo  *MockSubmissionRepository
	leaderboardRepo *MockLeaderboardRepository
	userRepo        *MockUserRepository
	quizService     *MockQuizService
	cache           *MockCache
	clock           *fixedClock
}

func newSessionFixture() *sessionFixture {
	f := &sessionFixture{
		quizRepo:        new(MockQuizRepository),
		submissionRepo:  new(MockSubmissionRepository),
		leaderboardRepo: new(MockLeaderboardRepository),
		userRepo:        new(MockUserRepository),
		quizService:     new(MockQuizService),
		cache:           new(MockCache),
		clock:           &fixedClock{t: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)},
	}
	f.svc = newSessionServiceWithClock(
		f.quizRepo, f.submissionRepo, f.leaderboardRepo, f.userRepo, f.quizService, f.cache, f.clock.Now)
	return f
}

func (f *sessionFixture) expectStart(quiz *domain.Quiz, bank []domain.Question) {
	f.quizRepo.On("GetQuizByID", mock.Anything, quiz.ID).Return(quiz, nil)
	f.submissionRepo.On("GetSubmission", mock.Anything, quiz.ID, "student-1").Return(nil, nil)
	f.quizService.On("GetQuestionBank", mock.Anything, quiz.ID).Return(bank, nil)
}

func TestSessionStart_Success(t *testing.T) {
	f := newSessionFixture()
	quiz := activeQuiz(f.clock.t)
	f.expectStart(quiz, bankOf(2))

	resp, err := f.svc.Start(context.Background(), quiz.ID, "student-1")

	assert.NoError(t, err)
	assert.Equal(t, string(domain.SessionInProgress), resp.State)
	assert.Equal(t, 60, resp.RemainingSeconds) // 1 minute
	assert.Equal(t, []int{-1, -1}, resp.Answers)
	assert.Len(t, resp.Questions, 2)
	for _, q := range resp.Questions {
		assert.Nil(t, q.CorrectIndex, "correct answers must stay hidden during the session")
	}
}

func TestSessionStart_OutsideWindow(t *testing.T) {
	f := newSessionFixture()

	upcoming := activeQuiz(f.clock.t)
	upcoming.StartAt = f.clock.t.Add(time.Hour)
	upcoming.EndAt = f.clock.t.Add(2 * time.Hour)
	f.quizRepo.On("GetQuizByID", mock.Anything, upcoming.ID).Return(upcoming, nil).Once()

	_, err := f.svc.Start(context.Background(), upcoming.ID, "student-1")
	assert.True(t, domain.IsCode(err, domain.ErrIneligibleToStart))

	ended := activeQuiz(f.clock.t)
	ended.StartAt = f.clock.t.Add(-2 * time.Hour)
	ended.EndAt = f.clock.t // end boundary is exclusive: at EndAt the quiz is over
	f.quizRepo.On("GetQuizByID", mock.Anything, ended.ID).Return(ended, nil).Once()

	_, err = f.svc.Start(context.Background(), ended.ID, "student-1")
	assert.True(t, domain.IsCode(err, domain.ErrIneligibleToStart))
}

func TestSessionStart_AlreadySubmitted(t *testing.T) {
	f := newSessionFixture()
	quiz := activeQuiz(f.clock.t)
	f.quizRepo.On("GetQuizByID", mock.Anything, quiz.ID).Return(quiz, nil)
	f.submissionRepo.On("GetSubmission", mock.Anything, quiz.ID, "student-1").
		Return(&domain.Submission{ID: "sub-1", QuizID: quiz.ID, StudentID: "student-1"}, nil)

	_, err := f.svc.Start(context.Background(), quiz.ID, "student-1")

	assert.True(t, domain.IsCode(err, domain.ErrIneligibleToStart))
}

func TestSessionStart_SecondSessionRejected(t *testing.T) {
	f := newSessionFixture()
	quiz := activeQuiz(f.clock.t)
	f.expectStart(quiz, bankOf(2))

	_, err := f.svc.Start(context.Background(), quiz.ID, "student-1")
	assert.NoError(t, err)

	_, err = f.svc.Start(context.Background(), quiz.ID, "student-1")
	assert.True(t, domain.IsCode(err, domain.ErrIneligibleToStart))
}

func TestSessionAnswerAndNavigate(t *testing.T) {
	f := newSessionFixture()
	quiz := activeQuiz(f.clock.t)
	f.expectStart(quiz, bankOf(2))

	started, err := f.svc.Start(context.Background(), quiz.ID, "student-1")
	assert.NoError(t, err)

	resp, err := f.svc.SelectAnswer(context.Background(), started.SessionID, "student-1", 0, 3)
	assert.NoError(t, err)
	assert.Equal(t, []int{3, -1}, resp.Answers)

	// Overwriting is legal while in progress.
	resp, err = f.svc.SelectAnswer(context.Background(), started.SessionID, "student-1", 0, 1)
	assert.NoError(t, err)
	assert.Equal(t, []int{1, -1}, resp.Answers)

	resp, err = f.svc.Navigate(context.Background(), started.SessionID, "student-1", 99)
	assert.NoError(t, err)
	assert.Equal(t, 1, resp.Current) // clamped to the last question

	_, err = f.svc.SelectAnswer(context.Background(), started.SessionID, "student-1", 0, 7)
	assert.True(t, domain.IsCode(err, domain.ErrInvalidAnswerIndex))
}

func TestSessionOwnership(t *testing.T) {
	f := newSessionFixture()
	quiz := activeQuiz(f.clock.t)
	f.expectStart(quiz, bankOf(2))

	started, err := f.svc.Start(context.Background(), quiz.ID, "student-1")
	assert.NoError(t, err)

	_, err = f.svc.SelectAnswer(context.Background(), started.SessionID, "student-2", 0, 1)
	assert.True(t, domain.IsCode(err, domain.ErrForbidden))
}

func TestSessionSubmit_PersistsAndEvicts(t *testing.T) {
	f := newSessionFixture()
	quiz := activeQuiz(f.clock.t)
	f.expectStart(quiz, bankOf(2))

	f.submissionRepo.On("CreateSubmission", mock.Anything, mock.MatchedBy(func(sub *domain.Submission) bool {
		// One of two answered correctly -> 50, Needs Improvement.
		return sub.QuizID == quiz.ID && sub.StudentID == "student-1" &&
			sub.Score == 50 && sub.Bucket == domain.BucketNeedsImprovement
	})).Return(nil)
	f.userRepo.On("GetUserByID", mock.Anything, "student-1").
		Return(&domain.User{ID: "student-1", DisplayName: "Dana"}, nil)
	f.leaderboardRepo.On("RecordEntry", mock.Anything, quiz.ID, mock.MatchedBy(func(e *domain.LeaderboardEntry) bool {
		return e.StudentID == "student-1" && e.DisplayName == "Dana" && e.Score == 50
	})).Return(nil)
	f.cache.On("Delete", mock.Anything, "classquiz:leaderboard:quiz:quiz-1").Return(nil)

	started, err := f.svc.Start(context.Background(), quiz.ID, "student-1")
	assert.NoError(t, err)

	_, err = f.svc.SelectAnswer(context.Background(), started.SessionID, "student-1", 0, 1) // correct
	assert.NoError(t, err)

	result, err := f.svc.Submit(context.Background(), started.SessionID, "student-1")
	assert.NoError(t, err)
	assert.Equal(t, 50, result.Score)
	assert.Equal(t, "Needs Improvement", result.Bucket)

	// The session is gone; answers can no longer change.
	_, err = f.svc.Get(context.Background(), started.SessionID, "student-1")
	assert.True(t, domain.IsCode(err, domain.ErrNotFound))

	f.submissionRepo.AssertExpectations(t)
	f.leaderboardRepo.AssertExpectations(t)
}

func TestSessionSubmit_StorageFailureIsRetryable(t *testing.T) {
	f := newSessionFixture()
	quiz := activeQuiz(f.clock.t)
	f.expectStart(quiz, bankOf(2))

	f.submissionRepo.On("CreateSubmission", mock.Anything, mock.Anything).
		Return(domain.NewStorageUnavailableError(errors.New("db down"))).Once()
	f.submissionRepo.On("CreateSubmission", mock.Anything, mock.Anything).
		Return(nil).Once()
	f.userRepo.On("GetUserByID", mock.Anything, "student-1").Return(nil, nil)
	f.leaderboardRepo.On("RecordEntry", mock.Anything, quiz.ID, mock.Anything).Return(nil)
	f.cache.On("Delete", mock.Anything, mock.Anything).Return(nil)

	started, err := f.svc.Start(context.Background(), quiz.ID, "student-1")
	assert.NoError(t, err)

	_, err = f.svc.Submit(context.Background(), started.SessionID, "student-1")
	assert.True(t, domain.IsCode(err, domain.ErrStorageUnavailable))

	// The finalized session survived the failed write; a retry lands it.
	result, err := f.svc.Submit(context.Background(), started.SessionID, "student-1")
	assert.NoError(t, err)
	assert.Equal(t, 0, result.Score)
	f.submissionRepo.AssertExpectations(t)
}

func TestSessionSubmit_DuplicateRowTreatedAsDone(t *testing.T) {
	f := newSessionFixture()
	quiz := activeQuiz(f.clock.t)
	f.expectStart(quiz, bankOf(2))

	// The row already exists (an earlier retry landed it): the guard trips
	// and the stored submission wins without an error to the student.
	f.submissionRepo.On("CreateSubmission", mock.Anything, mock.Anything).
		Return(domain.NewDuplicateSubmissionError(quiz.ID, "student-1"))

	started, err := f.svc.Start(context.Background(), quiz.ID, "student-1")
	assert.NoError(t, err)

	_, err = f.svc.Submit(context.Background(), started.SessionID, "student-1")
	assert.NoError(t, err)
	f.leaderboardRepo.AssertNotCalled(t, "RecordEntry", mock.Anything, mock.Anything, mock.Anything)
}

func TestSessionSubmit_DuplicateReturnsStoredRow(t *testing.T) {
	f := newSessionFixture()
	quiz := activeQuiz(f.clock.t)

	f.quizRepo.On("GetQuizByID", mock.Anything, quiz.ID).Return(quiz, nil)
	f.quizService.On("GetQuestionBank", mock.Anything, quiz.ID).Return(bankOf(2), nil)
	// No prior row at start time; the row lands concurrently before Submit.
	f.submissionRepo.On("GetSubmission", mock.Anything, quiz.ID, "student-1").
		Return(nil, nil).Once()
	f.submissionRepo.On("CreateSubmission", mock.Anything, mock.Anything).
		Return(domain.NewDuplicateSubmissionError(quiz.ID, "student-1"))
	stored := &domain.Submission{
		ID: "sub-0", QuizID: quiz.ID, StudentID: "student-1",
		Answers: []int{1, 1}, Score: 100, Bucket: domain.BucketGood,
		SubmittedAt: f.clock.t.Add(-time.Minute),
	}
	f.submissionRepo.On("GetSubmission", mock.Anything, quiz.ID, "student-1").
		Return(stored, nil).Once()

	started, err := f.svc.Start(context.Background(), quiz.ID, "student-1")
	assert.NoError(t, err)

	// The response carries the persisted row, not this attempt's local score.
	result, err := f.svc.Submit(context.Background(), started.SessionID, "student-1")
	assert.NoError(t, err)
	assert.Equal(t, 100, result.Score)
	assert.Equal(t, string(domain.BucketGood), result.Bucket)
	assert.True(t, stored.SubmittedAt.Equal(result.SubmittedAt))
	f.submissionRepo.AssertExpectations(t)
}

func TestSessionTicker_AutoSubmitsOnExpiry(t *testing.T) {
	f := newSessionFixture()
	quiz := activeQuiz(f.clock.t)
	f.expectStart(quiz, bankOf(2))

	f.submissionRepo.On("CreateSubmission", mock.Anything, mock.MatchedBy(func(sub *domain.Submission) bool {
		// Timed out with everything unanswered: zero score.
		return sub.Score == 0 && sub.Bucket == domain.BucketNeedsImprovement &&
			sub.Answers[0] == domain.UnansweredIndex && sub.Answers[1] == domain.UnansweredIndex
	})).Return(nil)
	f.userRepo.On("GetUserByID", mock.Anything, "student-1").Return(nil, nil)
	f.leaderboardRepo.On("RecordEntry", mock.Anything, quiz.ID, mock.Anything).Return(nil)
	f.cache.On("Delete", mock.Anything, mock.Anything).Return(nil)

	started, err := f.svc.Start(context.Background(), quiz.ID, "student-1")
	assert.NoError(t, err)

	// 59 ticks leave one second; the 60th expires and auto-submits.
	for i := 0; i < 59; i++ {
		f.svc.tickAll(context.Background())
	}
	resp, err := f.svc.Get(context.Background(), started.SessionID, "student-1")
	assert.NoError(t, err)
	assert.Equal(t, 1, resp.RemainingSeconds)

	f.svc.tickAll(context.Background())

	_, err = f.svc.Get(context.Background(), started.SessionID, "student-1")
	assert.True(t, domain.IsCode(err, domain.ErrNotFound), "expired session must be persisted and evicted")
	f.submissionRepo.AssertExpectations(t)
}

func TestSessionTicker_RetriesFailedPersist(t *testing.T) {
	f := newSessionFixture()
	quiz := activeQuiz(f.clock.t)
	f.expectStart(quiz, bankOf(2))

	f.submissionRepo.On("CreateSubmission", mock.Anything, mock.Anything).
		Return(domain.NewStorageUnavailableError(errors.New("db down"))).Once()
	f.submissionRepo.On("CreateSubmission", mock.Anything, mock.Anything).
		Return(nil).Once()
	f.userRepo.On("GetUserByID", mock.Anything, "student-1").Return(nil, nil)
	f.leaderboardRepo.On("RecordEntry", mock.Anything, quiz.ID, mock.Anything).Return(nil)
	f.cache.On("Delete", mock.Anything, mock.Anything).Return(nil)

	started, err := f.svc.Start(context.Background(), quiz.ID, "student-1")
	assert.NoError(t, err)

	for i := 0; i < 60; i++ {
		f.svc.tickAll(context.Background()) // 60th tick expires; persist fails
	}

	// Still registered because the write failed.
	f.svc.mu.Lock()
	_, stillThere := f.svc.sessions[started.SessionID]
	f.svc.mu.Unlock()
	assert.True(t, stillThere)

	f.svc.tickAll(context.Background()) // retry succeeds

	f.svc.mu.Lock()
	_, stillThere = f.svc.sessions[started.SessionID]
	f.svc.mu.Unlock()
	assert.False(t, stillThere)
	f.submissionRepo.AssertExpectations(t)
}
