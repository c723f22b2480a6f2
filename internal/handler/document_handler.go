package handler

import (
	"classquiz/internal/dto"
	"classquiz/internal/logger"
	"classquiz/internal/middleware"
	"classquiz/internal/service"
	"classquiz/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DocumentHandler handles source document HTTP requests.
type DocumentHandler struct {
	documentService service.DocumentService
	validator       *validation.Validator
}

func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		validator:       validation.NewValidator(),
	}
}

// CreateDocument registers a source document in a room.
// @Summary Register a document
// @Description Registers a document; it stays locked to students until its quiz deadline passes.
// @Tags documents
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateDocumentRequest true "Document details"
// @Success 201 {object} dto.DocumentResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Router /documents [post]
func (h *DocumentHandler) CreateDocument(c *fiber.Ctx) error {
	ownerID, ok := c.Locals(middleware.UserIDKey).(string)
	if !ok || ownerID == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "User ID not found in context")
	}

	var req dto.CreateDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := h.validator.ValidateCreateDocumentRequest(&req); len(errs) > 0 {
		return errs
	}

	doc, err := h.documentService.CreateDocument(c.Context(), ownerID, &req)
	if err != nil {
		return err
	}

	logger.Get().Info("Document registered",
		zap.String("documentID", doc.ID),
		zap.String("roomID", req.RoomID),
	)
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// GetDocument returns a document if the requester may see it.
// @Summary Get a document
// @Description Returns 403 DOCUMENT_LOCKED while the linked quiz deadline has not passed, unless the requester owns the document.
// @Tags documents
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} dto.DocumentResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /documents/{id} [get]
func (h *DocumentHandler) GetDocument(c *fiber.Ctx) error {
	documentID := c.Params("id")
	requesterID, _ := c.Locals(middleware.UserIDKey).(string)

	doc, err := h.documentService.GetDocument(c.Context(), documentID, requesterID)
	if err != nil {
		return err
	}
	return c.JSON(doc)
}

// ListRoomDocuments lists the documents in a room. Locked documents are
// listed without their storage path.
// @Summary List room documents
// @Tags documents
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} dto.DocumentListResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /rooms/{id}/documents [get]
func (h *DocumentHandler) ListRoomDocuments(c *fiber.Ctx) error {
	roomID := c.Params("id")
	requesterID, _ := c.Locals(middleware.UserIDKey).(string)

	docs, err := h.documentService.ListRoomDocuments(c.Context(), roomID, requesterID)
	if err != nil {
		return err
	}
	return c.JSON(docs)
}
