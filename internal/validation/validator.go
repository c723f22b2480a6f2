package validation

import (
	"regexp"
	"strings"

	"classquiz/internal/domain"
	"classquiz/internal/dto"
)

// Validator provides request validation functionality.
type Validator struct{}

// NewValidator creates a new validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateIDParam validates a ULID path parameter.
func (v *Validator) ValidateIDParam(name, value string) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if strings.TrimSpace(value) == "" {
		errors = append(errors, domain.NewFieldError(name, "is required"))
	} else if !isValidULID(value) {
		errors = append(errors, domain.NewFieldError(name, "is not a valid identifier"))
	}
	return errors
}

// ValidateCreateRoomRequest validates a room creation request.
func (v *Validator) ValidateCreateRoomRequest(req *dto.CreateRoomRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if strings.TrimSpace(req.Name) == "" {
		errors = append(errors, domain.NewFieldError("name", "is required"))
	} else if len(req.Name) > 100 {
		errors = append(errors, domain.NewFieldError("name", "must be at most 100 characters"))
	}
	return errors
}

// ValidateCreateDocumentRequest validates a document registration request.
func (v *Validator) ValidateCreateDocumentRequest(req *dto.CreateDocumentRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if strings.TrimSpace(req.RoomID) == "" {
		errors = append(errors, domain.NewFieldError("room_id", "is required"))
	} else if !isValidULID(req.RoomID) {
		errors = append(errors, domain.NewFieldError("room_id", "is not a valid identifier"))
	}
	if strings.TrimSpace(req.Title) == "" {
		errors = append(errors, domain.NewFieldError("title", "is required"))
	}
	if strings.TrimSpace(req.StoragePath) == "" {
		errors = append(errors, domain.NewFieldError("storage_path", "is required"))
	}
	return errors
}

// ValidateCreateQuizRequest validates a quiz creation request. Scheduling
// invariants (start before end, positive duration) are the domain's
// concern; this only checks shape.
func (v *Validator) ValidateCreateQuizRequest(req *dto.CreateQuizRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if strings.TrimSpace(req.RoomID) == "" {
		errors = append(errors, domain.NewFieldError("room_id", "is required"))
	}
	if strings.TrimSpace(req.DocumentID) == "" {
		errors = append(errors, domain.NewFieldError("document_id", "is required"))
	}
	if strings.TrimSpace(req.DocumentText) == "" {
		errors = append(errors, domain.NewFieldError("document_text", "is required"))
	}
	if strings.TrimSpace(req.Title) == "" {
		errors = append(errors, domain.NewFieldError("title", "is required"))
	}
	if req.QuestionCount <= 0 || req.QuestionCount > 50 {
		errors = append(errors, domain.NewFieldError("question_count", "must be between 1 and 50"))
	}
	if req.StartAt.IsZero() {
		errors = append(errors, domain.NewFieldError("start_at", "is required"))
	}
	if req.EndAt.IsZero() {
		errors = append(errors, domain.NewFieldError("end_at", "is required"))
	}
	return errors
}

// ValidateCreateUserRequest validates a user registration request.
func (v *Validator) ValidateCreateUserRequest(req *dto.CreateUserRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors
	if strings.TrimSpace(req.DisplayName) == "" {
		errors = append(errors, domain.NewFieldError("display_name", "is required"))
	}
	if strings.TrimSpace(req.Email) == "" {
		errors = append(errors, domain.NewFieldError("email", "is required"))
	} else if !isValidEmail(req.Email) {
		errors = append(errors, domain.NewFieldError("email", "is not a valid address"))
	}
	if req.Role != domain.RoleStudent && req.Role != domain.RoleFaculty {
		errors = append(errors, domain.NewFieldError("role", "must be student or faculty"))
	}
	return errors
}

// isValidULID checks if the string is a valid ULID format
func isValidULID(s string) bool {
	// ULID is 26 characters long, base32 encoded
	if len(s) != 26 {
		return false
	}
	// Check if all characters are valid base32 (Crockford's Base32)
	validULID := regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)
	return validULID.MatchString(s)
}

func isValidEmail(s string) bool {
	validEmail := regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	return validEmail.MatchString(s)
}
