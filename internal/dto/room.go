package dto

import "time"

// CreateRoomRequest is the request body for creating a room.
type CreateRoomRequest struct {
	Name string `json:"name" validate:"required"`
}

// RoomResponse represents a room in the API response.
type RoomResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	FacultyID string    `json:"faculty_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateDocumentRequest is the request body for registering a study document.
// The blob itself is uploaded to external storage beforehand; only its
// metadata is registered here.
type CreateDocumentRequest struct {
	RoomID      string `json:"room_id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	StoragePath string `json:"storage_path" validate:"required"`
}

// DocumentResponse represents a document in the API response. A document
// linked to a quiz stays locked until that quiz's deadline has passed.
type DocumentResponse struct {
	ID          string    `json:"id"`
	RoomID      string    `json:"room_id"`
	Title       string    `json:"title"`
	StoragePath string    `json:"storage_path,omitempty"` // omitted while locked
	QuizID      string    `json:"quiz_id,omitempty"`
	Unlocked    bool      `json:"unlocked"`
	CreatedAt   time.Time `json:"created_at"`
}

// DocumentListResponse is the response for listing the documents of a room.
type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
}
