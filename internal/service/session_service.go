package service

import (
	"context"
	"sync"
	"time"

	"classquiz/internal/cache"
	"classquiz/internal/domain"
	"classquiz/internal/dto"
	"classquiz/internal/logger"
	"classquiz/internal/util"

	"go.uber.org/zap"
)

// SessionService manages live quiz sessions. Sessions are held in memory
// only: nothing about a running attempt is persisted until it finalizes into
// a submission. A crashed server therefore loses running attempts but can
// never leave a half-finished attempt in storage.
type SessionService interface {
	// Start creates a session after the eligibility checks: the quiz window
	// must be active, the student must not have submitted already, and no
	// other session for the same (student, quiz) pair may be running.
	Start(ctx context.Context, quizID, studentID string) (*dto.SessionResponse, error)

	// Get returns the live state of a session.
	Get(ctx context.Context, sessionID, requesterID string) (*dto.SessionResponse, error)

	// SelectAnswer records or overwrites an answer.
	SelectAnswer(ctx context.Context, sessionID, requesterID string, questionIndex, optionIndex int) (*dto.SessionResponse, error)

	// Navigate moves the current position, clamped to the question range.
	Navigate(ctx context.Context, sessionID, requesterID string, index int) (*dto.SessionResponse, error)

	// Submit finalizes the session and persists the graded submission.
	// When storage is unavailable the session stays submitted in memory and
	// persistence is retried, by the ticker or by calling Submit again.
	Submit(ctx context.Context, sessionID, requesterID string) (*dto.SubmissionResponse, error)

	// RunTicker drives all running countdowns at one tick per second until
	// the context is cancelled. Expired sessions auto-submit with whatever
	// answers are recorded.
	RunTicker(ctx context.Context)
}

// sessionEntry pairs a session with its persistence state. A finalized
// session stays registered until its submission row is safely written.
type sessionEntry struct {
	session   *domain.Session
	persisted bool
	result    *domain.Submission
}

type sessionService struct {
	quizRepo        domain.QuizRepository
	submissionRepo  domain.SubmissionRepository
	leaderboardRepo domain.LeaderboardRepository
	userRepo        domain.UserRepository
	quizService     QuizService
	cache           domain.Cache
	now             func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionEntry // by session ID
	byPair   map[string]string        // quizID+"|"+studentID -> session ID
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	quizRepo domain.QuizRepository,
	submissionRepo domain.SubmissionRepository,
	leaderboardRepo domain.LeaderboardRepository,
	userRepo domain.UserRepository,
	quizService QuizService,
	cacheClient domain.Cache,
) SessionService {
	return newSessionServiceWithClock(quizRepo, submissionRepo, leaderboardRepo, userRepo, quizService, cacheClient, time.Now)
}

func newSessionServiceWithClock(
	quizRepo domain.QuizRepository,
	submissionRepo domain.SubmissionRepository,
	leaderboardRepo domain.LeaderboardRepository,
	userRepo domain.UserRepository,
	quizService QuizService,
	cacheClient domain.Cache,
	now func() time.Time,
) *sessionService {
	return &sessionService{
		quizRepo:        quizRepo,
		submissionRepo:  submissionRepo,
		leaderboardRepo: leaderboardRepo,
		userRepo:        userRepo,
		quizService:     quizService,
		cache:           cacheClient,
		now:             now,
		sessions:        make(map[string]*sessionEntry),
		byPair:          make(map[string]string),
	}
}

func pairKey(quizID, studentID string) string {
	return quizID + "|" + studentID
}

// Start implements SessionService.
func (s *sessionService) Start(ctx context.Context, quizID, studentID string) (*dto.SessionResponse, error) {
	quiz, err := s.quizRepo.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}

	// The gate is evaluated against the clock at the moment of the request.
	switch quiz.AvailabilityAt(s.now()) {
	case domain.AvailabilityUpcoming:
		return nil, domain.NewIneligibleToStartError("quiz has not started yet")
	case domain.AvailabilityEnded:
		return nil, domain.NewIneligibleToStartError("quiz has ended")
	}

	existing, err := s.submissionRepo.GetSubmission(ctx, quizID, studentID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to check prior submission", err)
	}
	if existing != nil {
		return nil, domain.NewIneligibleToStartError("student has already submitted this quiz")
	}

	questions, err := s.quizService.GetQuestionBank(ctx, quizID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, running := s.byPair[pairKey(quizID, studentID)]; running {
		return nil, domain.NewIneligibleToStartError("a session for this quiz is already running")
	}

	session, err := domain.NewSessionWithClock(util.NewULID(), quiz, questions, studentID, s.now)
	if err != nil {
		return nil, err
	}

	entry := &sessionEntry{session: session}
	s.sessions[session.ID()] = entry
	s.byPair[pairKey(quizID, studentID)] = session.ID()

	logger.Get().Info("Started quiz session",
		zap.String("session_id", session.ID()),
		zap.String("quiz_id", quizID),
		zap.String("student_id", studentID))

	return s.toSessionResponse(session, true), nil
}

// Get implements SessionService.
func (s *sessionService) Get(ctx context.Context, sessionID, requesterID string) (*dto.SessionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.lookup(sessionID, requesterID)
	if err != nil {
		return nil, err
	}
	return s.toSessionResponse(entry.session, false), nil
}

// SelectAnswer implements SessionService.
func (s *sessionService) SelectAnswer(ctx context.Context, sessionID, requesterID string, questionIndex, optionIndex int) (*dto.SessionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.lookup(sessionID, requesterID)
	if err != nil {
		return nil, err
	}
	if err := entry.session.SelectAnswer(questionIndex, optionIndex); err != nil {
		return nil, err
	}
	return s.toSessionResponse(entry.session, false), nil
}

// Navigate implements SessionService.
func (s *sessionService) Navigate(ctx context.Context, sessionID, requesterID string, index int) (*dto.SessionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.lookup(sessionID, requesterID)
	if err != nil {
		return nil, err
	}
	if _, err := entry.session.Navigate(index); err != nil {
		return nil, err
	}
	return s.toSessionResponse(entry.session, false), nil
}

// Submit implements SessionService.
func (s *sessionService) Submit(ctx context.Context, sessionID, requesterID string) (*dto.SubmissionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.lookup(sessionID, requesterID)
	if err != nil {
		return nil, err
	}

	if entry.session.State() == domain.SessionInProgress {
		if err := entry.session.Submit(); err != nil {
			return nil, err
		}
	} else if entry.persisted {
		return nil, domain.NewDuplicateSubmissionError(entry.session.QuizID(), entry.session.StudentID())
	}
	// A submitted-but-unpersisted entry falls through to a persistence retry.

	if err := s.persistLocked(ctx, entry); err != nil {
		return nil, err
	}

	result := entry.result
	s.evictLocked(entry)

	return &dto.SubmissionResponse{
		QuizID:      result.QuizID,
		Score:       result.Score,
		Bucket:      string(result.Bucket),
		SubmittedAt: result.SubmittedAt,
	}, nil
}

// RunTicker implements SessionService.
func (s *sessionService) RunTicker(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tickAll(ctx)
		}
	}
}

// tickAll advances every running countdown by one second and persists any
// session that finalized, now or on an earlier failed attempt.
func (s *sessionService) tickAll(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.sessions {
		if entry.session.State() == domain.SessionInProgress {
			if entry.session.Tick() {
				logger.Get().Info("Session expired, auto-submitting",
					zap.String("session_id", entry.session.ID()),
					zap.String("quiz_id", entry.session.QuizID()))
			}
		}
		if entry.session.State() == domain.SessionSubmitted && !entry.persisted {
			if err := s.persistLocked(ctx, entry); err != nil {
				// Storage is down; the entry stays registered and the next
				// tick retries.
				logger.Get().Warn("Failed to persist finalized session, will retry",
					zap.String("session_id", entry.session.ID()),
					zap.Error(err))
				continue
			}
			s.evictLocked(entry)
		}
	}
}

// lookup finds a registered session and checks ownership. Callers hold s.mu.
func (s *sessionService) lookup(sessionID, requesterID string) (*sessionEntry, error) {
	entry, ok := s.sessions[sessionID]
	if !ok {
		return nil, domain.NewNotFoundError("Session not found: " + sessionID)
	}
	if entry.session.StudentID() != requesterID {
		return nil, domain.NewForbiddenError("session belongs to another student")
	}
	return entry, nil
}

// persistLocked grades the finalized session and writes its submission row
// and leaderboard entry. Callers hold s.mu. Idempotent across retries: the
// create-once guard turns a double write into a no-op.
func (s *sessionService) persistLocked(ctx context.Context, entry *sessionEntry) error {
	session := entry.session

	if entry.result == nil {
		score, bucket, err := domain.Score(session.Answers(), session.Questions())
		if err != nil {
			return domain.NewInternalError("Failed to score submission", err)
		}
		entry.result = &domain.Submission{
			ID:          util.NewULID(),
			QuizID:      session.QuizID(),
			StudentID:   session.StudentID(),
			Answers:     session.Answers(),
			Score:       score,
			Bucket:      bucket,
			SubmittedAt: session.SubmittedAt(),
		}
	}

	if err := s.submissionRepo.CreateSubmission(ctx, entry.result); err != nil {
		if domain.IsCode(err, domain.ErrDuplicateSubmission) {
			// A previous retry already landed the row; the stored submission
			// wins and this attempt's result is discarded.
			if stored, getErr := s.submissionRepo.GetSubmission(ctx, entry.result.QuizID, entry.result.StudentID); getErr == nil && stored != nil {
				entry.result = stored
			}
			entry.persisted = true
			return nil
		}
		return err
	}
	entry.persisted = true

	displayName := entry.result.StudentID
	if user, err := s.userRepo.GetUserByID(ctx, entry.result.StudentID); err == nil && user != nil {
		displayName = user.DisplayName
	}

	lbEntry := &domain.LeaderboardEntry{
		StudentID:   entry.result.StudentID,
		DisplayName: displayName,
		Score:       entry.result.Score,
		SubmittedAt: entry.result.SubmittedAt,
	}
	if err := s.leaderboardRepo.RecordEntry(ctx, entry.result.QuizID, lbEntry); err != nil {
		// The submission row is the source of truth; a missed leaderboard
		// append only delays the entry until the next rebuild.
		logger.Get().Warn("Failed to record leaderboard entry",
			zap.String("quiz_id", entry.result.QuizID),
			zap.Error(err))
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, cache.LeaderboardKey(entry.result.QuizID)); err != nil {
			logger.Get().Warn("Failed to invalidate leaderboard cache", zap.Error(err))
		}
	}

	logger.Get().Info("Persisted submission",
		zap.String("quiz_id", entry.result.QuizID),
		zap.String("student_id", entry.result.StudentID),
		zap.Int("score", entry.result.Score),
		zap.String("bucket", string(entry.result.Bucket)))
	return nil
}

// evictLocked removes a fully persisted session from the registry. Callers
// hold s.mu.
func (s *sessionService) evictLocked(entry *sessionEntry) {
	delete(s.sessions, entry.session.ID())
	delete(s.byPair, pairKey(entry.session.QuizID(), entry.session.StudentID()))
}

// toSessionResponse renders the session. The correct answers stay hidden
// while the session is live; includeQuestions controls whether the question
// texts ride along (they do on Start, not on every state change).
func (s *sessionService) toSessionResponse(session *domain.Session, includeQuestions bool) *dto.SessionResponse {
	resp := &dto.SessionResponse{
		SessionID:        session.ID(),
		QuizID:           session.QuizID(),
		State:            string(session.State()),
		Current:          session.Current(),
		RemainingSeconds: session.RemainingSeconds(),
		Answers:          session.Answers(),
	}
	if includeQuestions {
		questions := session.Questions()
		resp.Questions = make([]dto.QuestionView, len(questions))
		for i, q := range questions {
			resp.Questions[i] = dto.QuestionView{
				Position: q.Position,
				Text:     q.Text,
				Options:  q.Options,
			}
		}
	}
	return resp
}
