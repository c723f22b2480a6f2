package service

import (
	"context"

	"classquiz/internal/domain"
	"classquiz/internal/dto"
	"classquiz/internal/util"
)

// RoomService manages rooms.
type RoomService interface {
	CreateRoom(ctx context.Context, facultyID string, req *dto.CreateRoomRequest) (*dto.RoomResponse, error)
	GetRoom(ctx context.Context, roomID string) (*dto.RoomResponse, error)
}

type roomService struct {
	roomRepo domain.RoomRepository
}

// NewRoomService creates a new RoomService.
func NewRoomService(roomRepo domain.RoomRepository) RoomService {
	return &roomService{roomRepo: roomRepo}
}

// CreateRoom implements RoomService.
func (s *roomService) CreateRoom(ctx context.Context, facultyID string, req *dto.CreateRoomRequest) (*dto.RoomResponse, error) {
	room := domain.NewRoom(util.NewULID(), req.Name, facultyID)
	if err := room.Validate(); err != nil {
		return nil, err
	}
	if err := s.roomRepo.CreateRoom(ctx, room); err != nil {
		return nil, domain.NewInternalError("Failed to create room", err)
	}
	return toRoomResponse(room), nil
}

// GetRoom implements RoomService.
func (s *roomService) GetRoom(ctx context.Context, roomID string) (*dto.RoomResponse, error) {
	room, err := s.roomRepo.GetRoomByID(ctx, roomID)
	if err != nil {
		return nil, domain.NewInternalError("Failed to get room", err)
	}
	if room == nil {
		return nil, domain.NewNotFoundError("Room not found: " + roomID)
	}
	return toRoomResponse(room), nil
}

func toRoomResponse(room *domain.Room) *dto.RoomResponse {
	return &dto.RoomResponse{
		ID:        room.ID,
		Name:      room.Name,
		FacultyID: room.FacultyID,
		CreatedAt: room.CreatedAt,
	}
}
