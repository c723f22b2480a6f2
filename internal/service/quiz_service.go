package service

import (
	"context"
	"encoding/json"
	"time"

	"classquiz/internal/cache"
	"classquiz/internal/config"
	"classquiz/internal/domain"
	"classquiz/internal/dto"
	"classquiz/internal/logger"
	"classquiz/internal/util"

	"go.uber.org/zap"
)

// QuizService defines the faculty- and student-facing quiz operations.
type QuizService interface {
	// CreateQuiz generates a question bank from the document text and
	// persists the quiz atomically with its questions. The document is
	// linked to the quiz in the same transaction, which locks it until
	// the quiz deadline.
	CreateQuiz(ctx context.Context, creatorID string, req *dto.CreateQuizRequest) (*dto.QuizResponse, error)

	// ListRoomQuizzes returns the quizzes of a room with their live
	// availability, evaluated against the clock at call time.
	ListRoomQuizzes(ctx context.Context, roomID, studentID string) (*dto.QuizListResponse, error)

	// GetQuiz returns one quiz with its live availability.
	GetQuiz(ctx context.Context, quizID, studentID string) (*dto.QuizResponse, error)

	// GetQuestionBank returns the quiz's ordered questions, cached.
	GetQuestionBank(ctx context.Context, quizID string) ([]domain.Question, error)

	// GetResult returns a student's graded submission with the correct
	// answers revealed. NOT_FOUND when the student has not submitted.
	GetResult(ctx context.Context, quizID, studentID string) (*dto.SubmissionResponse, error)
}

type quizService struct {
	quizRepo       domain.QuizRepository
	submissionRepo domain.SubmissionRepository
	docRepo        domain.DocumentRepository
	roomRepo       domain.RoomRepository
	generator      domain.QuestionGenerator
	txManager      domain.TransactionManager
	cache          domain.Cache
	cacheCfg       config.CacheConfig
	now            func() time.Time
}

// NewQuizService creates a new instance of quizService.
func NewQuizService(
	quizRepo domain.QuizRepository,
	submissionRepo domain.SubmissionRepository,
	docRepo domain.DocumentRepository,
	roomRepo domain.RoomRepository,
	generator domain.QuestionGenerator,
	txManager domain.TransactionManager,
	cacheClient domain.Cache,
	cacheCfg config.CacheConfig,
) QuizService {
	return &quizService{
		quizRepo:       quizRepo,
		submissionRepo: submissionRepo,
		docRepo:        docRepo,
		roomRepo:       roomRepo,
		generator:      generator,
		txManager:      txManager,
		cache:          cacheClient,
		cacheCfg:       cacheCfg,
		now:            time.Now,
	}
}

// CreateQuiz implements QuizService.
func (s *quizService) CreateQuiz(ctx context.Context, creatorID string, req *dto.CreateQuizRequest) (*dto.QuizResponse, error) {
	room, err := s.roomRepo.GetRoomByID(ctx, req.RoomID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get room", err)
	}
	if room == nil {
		return nil, domain.NewNotFoundError("Room not found: " + req.RoomID)
	}
	if room.FacultyID != creatorID {
		return nil, domain.NewForbiddenError("Only the room's faculty can create quizzes")
	}

	doc, err := s.docRepo.GetDocumentByID(ctx, req.DocumentID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get document", err)
	}
	if doc == nil {
		return nil, domain.NewNotFoundError("Document not found: " + req.DocumentID)
	}
	if doc.RoomID != req.RoomID {
		return nil, domain.NewInvalidInputError("document does not belong to the room")
	}

	quiz := &domain.Quiz{
		ID:            util.NewULID(),
		Title:         req.Title,
		RoomID:        req.RoomID,
		DocumentID:    req.DocumentID,
		CreatorID:     creatorID,
		QuestionCount: req.QuestionCount,
		StartAt:       req.StartAt,
		EndAt:         req.EndAt,
		DurationMin:   req.DurationMin,
		CreatedAt:     s.now(),
	}
	if err := quiz.Validate(); err != nil {
		return nil, err
	}

	// Generation happens before the transaction: a failed LLM call must
	// leave no partial quiz behind.
	questions, err := s.generator.Generate(ctx, req.DocumentText, req.QuestionCount)
	if err != nil {
		return nil, err
	}
	for i := range questions {
		questions[i].QuizID = quiz.ID
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.quizRepo.CreateQuiz(txCtx, quiz, questions); err != nil {
			return err
		}
		return s.docRepo.LinkQuiz(txCtx, doc.ID, quiz.ID)
	})
	if err != nil {
		if domain.IsCode(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, domain.NewInternalError("Failed to persist quiz", err)
	}

	logger.Get().Info("Created quiz",
		zap.String("quiz_id", quiz.ID),
		zap.String("room_id", quiz.RoomID),
		zap.Int("questions", len(questions)))

	return s.toQuizResponse(quiz, false), nil
}

// ListRoomQuizzes implements QuizService.
func (s *quizService) ListRoomQuizzes(ctx context.Context, roomID, studentID string) (*dto.QuizListResponse, error) {
	quizzes, err := s.quizRepo.ListQuizzesByRoom(ctx, roomID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list quizzes", err)
	}

	resp := &dto.QuizListResponse{Quizzes: make([]dto.QuizResponse, 0, len(quizzes))}
	for _, quiz := range quizzes {
		submitted := false
		if studentID != "" {
			sub, err := s.submissionRepo.GetSubmission(ctx, quiz.ID, studentID)
			if err != nil {
				return nil, domain.NewInternalError("Failed to check submission", err)
			}
			submitted = sub != nil
		}
		resp.Quizzes = append(resp.Quizzes, *s.toQuizResponse(quiz, submitted))
	}
	return resp, nil
}

// GetQuiz implements QuizService.
func (s *quizService) GetQuiz(ctx context.Context, quizID, studentID string) (*dto.QuizResponse, error) {
	quiz, err := s.quizRepo.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}

	submitted := false
	if studentID != "" {
		sub, err := s.submissionRepo.GetSubmission(ctx, quizID, studentID)
		if err != nil {
			return nil, domain.NewInternalError("Failed to check submission", err)
		}
		submitted = sub != nil
	}
	return s.toQuizResponse(quiz, submitted), nil
}

// GetQuestionBank implements QuizService. The bank is immutable once
// generated, so it is cached aggressively.
func (s *quizService) GetQuestionBank(ctx context.Context, quizID string) ([]domain.Question, error) {
	cacheKey := cache.QuestionBankKey(quizID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
			var questions []domain.Question
			if err := json.Unmarshal([]byte(cached), &questions); err == nil {
				return questions, nil
			}
			logger.Get().Warn("Dropping corrupt question bank cache entry", zap.String("key", cacheKey))
			_ = s.cache.Delete(ctx, cacheKey)
		} else if err != domain.ErrCacheMiss {
			logger.Get().Warn("Question bank cache read failed", zap.Error(err))
		}
	}

	questions, err := s.quizRepo.GetQuestionsByQuizID(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get questions", err)
	}
	if len(questions) == 0 {
		return nil, domain.NewQuizNotFoundError(quizID)
	}

	if s.cache != nil {
		if data, err := json.Marshal(questions); err == nil {
			if err := s.cache.Set(ctx, cacheKey, string(data), s.cacheCfg.QuestionBankTTL); err != nil {
				logger.Get().Warn("Question bank cache write failed", zap.Error(err))
			}
		}
	}
	return questions, nil
}

// GetResult implements QuizService.
func (s *quizService) GetResult(ctx context.Context, quizID, studentID string) (*dto.SubmissionResponse, error) {
	sub, err := s.submissionRepo.GetSubmission(ctx, quizID, studentID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get submission", err)
	}
	if sub == nil {
		return nil, domain.NewNotFoundError("No submission for quiz " + quizID)
	}

	questions, err := s.GetQuestionBank(ctx, quizID)
	if err != nil {
		return nil, err
	}

	views := make([]dto.QuestionView, len(questions))
	for i, q := range questions {
		correct := q.CorrectIndex
		views[i] = dto.QuestionView{
			Position:     q.Position,
			Text:         q.Text,
			Options:      q.Options,
			CorrectIndex: &correct,
			Explanation:  q.Explanation,
		}
	}

	return &dto.SubmissionResponse{
		QuizID:      sub.QuizID,
		Score:       sub.Score,
		Bucket:      string(sub.Bucket),
		SubmittedAt: sub.SubmittedAt,
		Questions:   views,
		Answers:     sub.Answers,
	}, nil
}

func (s *quizService) toQuizResponse(quiz *domain.Quiz, submitted bool) *dto.QuizResponse {
	return &dto.QuizResponse{
		ID:            quiz.ID,
		Title:         quiz.Title,
		RoomID:        quiz.RoomID,
		DocumentID:    quiz.DocumentID,
		QuestionCount: quiz.QuestionCount,
		StartAt:       quiz.StartAt,
		EndAt:         quiz.EndAt,
		DurationMin:   quiz.DurationMin,
		Availability:  string(quiz.AvailabilityAt(s.now())),
		Submitted:     submitted,
	}
}
