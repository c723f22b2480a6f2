package service

import (
	"context"
	"time"

	"classquiz/internal/domain"
	"classquiz/internal/dto"
	"classquiz/internal/util"
)

// DocumentService manages study-document metadata and the unlock rule: a
// document linked to a quiz stays hidden until that quiz's deadline passes.
type DocumentService interface {
	// CreateDocument registers document metadata owned by the calling faculty.
	CreateDocument(ctx context.Context, ownerID string, req *dto.CreateDocumentRequest) (*dto.DocumentResponse, error)

	// GetDocument returns one document. Students get DOCUMENT_LOCKED while
	// the linked quiz's deadline has not passed; the owner always may read.
	GetDocument(ctx context.Context, documentID, requesterID string) (*dto.DocumentResponse, error)

	// ListRoomDocuments lists a room's documents with their unlock state.
	// Locked documents appear in the list but without their storage path.
	ListRoomDocuments(ctx context.Context, roomID, requesterID string) (*dto.DocumentListResponse, error)
}

type documentService struct {
	docRepo  domain.DocumentRepository
	quizRepo domain.QuizRepository
	roomRepo domain.RoomRepository
	now      func() time.Time
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(docRepo domain.DocumentRepository, quizRepo domain.QuizRepository, roomRepo domain.RoomRepository) DocumentService {
	return &documentService{
		docRepo:  docRepo,
		quizRepo: quizRepo,
		roomRepo: roomRepo,
		now:      time.Now,
	}
}

// CreateDocument implements DocumentService.
func (s *documentService) CreateDocument(ctx context.Context, ownerID string, req *dto.CreateDocumentRequest) (*dto.DocumentResponse, error) {
	room, err := s.roomRepo.GetRoomByID(ctx, req.RoomID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get room", err)
	}
	if room == nil {
		return nil, domain.NewNotFoundError("Room not found: " + req.RoomID)
	}
	if room.FacultyID != ownerID {
		return nil, domain.NewForbiddenError("Only the room's faculty can upload documents")
	}

	doc := &domain.Document{
		ID:          util.NewULID(),
		RoomID:      req.RoomID,
		OwnerID:     ownerID,
		Title:       req.Title,
		StoragePath: req.StoragePath,
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	if err := s.docRepo.CreateDocument(ctx, doc); err != nil {
		return nil, domain.NewInternalError("Failed to create document", err)
	}
	return s.toDocumentResponse(ctx, doc, true)
}

// GetDocument implements DocumentService.
func (s *documentService) GetDocument(ctx context.Context, documentID, requesterID string) (*dto.DocumentResponse, error) {
	doc, err := s.docRepo.GetDocumentByID(ctx, documentID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get document", err)
	}
	if doc == nil {
		return nil, domain.NewNotFoundError("Document not found: " + documentID)
	}

	unlocked, err := s.unlocked(ctx, doc)
	if err != nil {
		return nil, err
	}
	if !unlocked && doc.OwnerID != requesterID {
		return nil, domain.NewDocumentLockedError(doc.ID)
	}
	return s.toDocumentResponse(ctx, doc, doc.OwnerID == requesterID)
}

// ListRoomDocuments implements DocumentService.
func (s *documentService) ListRoomDocuments(ctx context.Context, roomID, requesterID string) (*dto.DocumentListResponse, error) {
	docs, err := s.docRepo.ListDocumentsByRoom(ctx, roomID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list documents", err)
	}

	resp := &dto.DocumentListResponse{Documents: make([]dto.DocumentResponse, 0, len(docs))}
	for _, doc := range docs {
		item, err := s.toDocumentResponse(ctx, doc, doc.OwnerID == requesterID)
		if err != nil {
			return nil, err
		}
		resp.Documents = append(resp.Documents, *item)
	}
	return resp, nil
}

// unlocked evaluates the unlock rule against the clock at call time.
func (s *documentService) unlocked(ctx context.Context, doc *domain.Document) (bool, error) {
	if doc.QuizID == "" {
		return true, nil
	}
	quiz, err := s.quizRepo.GetQuizByID(ctx, doc.QuizID)
	if err != nil {
		return false, domain.NewInternalError("Failed to get linked quiz", err)
	}
	if quiz == nil {
		// Dangling link; treat the document as unlinked.
		return true, nil
	}
	return doc.UnlockedAt(s.now(), quiz.EndAt), nil
}

func (s *documentService) toDocumentResponse(ctx context.Context, doc *domain.Document, isOwner bool) (*dto.DocumentResponse, error) {
	unlocked, err := s.unlocked(ctx, doc)
	if err != nil {
		return nil, err
	}

	resp := &dto.DocumentResponse{
		ID:        doc.ID,
		RoomID:    doc.RoomID,
		Title:     doc.Title,
		QuizID:    doc.QuizID,
		Unlocked:  unlocked,
		CreatedAt: doc.CreatedAt,
	}
	if unlocked || isOwner {
		resp.StoragePath = doc.StoragePath
	}
	return resp, nil
}
