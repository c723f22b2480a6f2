// Command seed_initial_data loads a JSON seed file and creates the users,
// rooms, and documents a fresh deployment starts with. Re-running is safe:
// existing users are matched by email and their rooms are skipped.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"classquiz/cmd/seed_initial_data/internal/seedmodels"
	"classquiz/internal/config"
	"classquiz/internal/database"
	"classquiz/internal/domain"
	"classquiz/internal/logger"
	"classquiz/internal/repository"
	"classquiz/internal/util"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

func main() {
	seedFilePath := flag.String("file", "configs/seed_data/initial_classroom.json", "path to the JSON seed file")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	log.Info("Starting initial data seeding")
	db, err := database.NewSQLXOracleDB(cfg.GetDSN())
	if err != nil {
		log.Fatal("Failed to connect to Oracle database", zap.Error(err))
	}
	defer db.Close()

	log.Info("Loading seed data from file", zap.String("path", *seedFilePath))
	raw, err := os.ReadFile(*seedFilePath)
	if err != nil {
		log.Fatal("Failed to read seed file", zap.String("path", *seedFilePath), zap.Error(err))
	}

	var seed seedmodels.SeedData
	if err := json.Unmarshal(raw, &seed); err != nil {
		log.Fatal("Failed to unmarshal seed data", zap.Error(err))
	}

	userIDsByEmail, err := seedUsers(ctx, db, log, seed.Users)
	if err != nil {
		log.Fatal("Failed to seed users", zap.Error(err))
	}

	txManager := repository.NewTransactionManagerAdapter(db)
	for _, room := range seed.Rooms {
		if err := seedRoom(ctx, db, txManager, log, room, userIDsByEmail); err != nil {
			log.Error("Error seeding room, transaction rolled back",
				zap.String("room", room.Name), zap.Error(err))
		}
	}
	log.Info("Initial data seeding completed")
}

func seedUsers(ctx context.Context, db *sqlx.DB, log *zap.Logger, users []seedmodels.SeedUser) (map[string]string, error) {
	userRepo := repository.NewSQLXUserRepository(db)
	idsByEmail := make(map[string]string, len(users))

	for _, su := range users {
		var existingID string
		err := db.GetContext(ctx, &existingID,
			`SELECT id FROM users WHERE email = :1 AND deleted_at IS NULL`, su.Email)
		if err == nil {
			log.Info("User exists", zap.String("email", su.Email), zap.String("id", existingID))
			idsByEmail[su.Email] = existingID
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("failed to look up user %s: %w", su.Email, err)
		}

		user := &domain.User{
			ID:          util.NewULID(),
			DisplayName: su.DisplayName,
			Email:       su.Email,
			Role:        su.Role,
		}
		if err := userRepo.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", su.Email, err)
		}
		log.Info("Created user", zap.String("email", su.Email), zap.String("id", user.ID))
		idsByEmail[su.Email] = user.ID
	}
	return idsByEmail, nil
}

func seedRoom(
	ctx context.Context,
	db *sqlx.DB,
	txManager domain.TransactionManager,
	log *zap.Logger,
	sr seedmodels.SeedRoom,
	userIDsByEmail map[string]string,
) error {
	facultyID, ok := userIDsByEmail[sr.FacultyEmail]
	if !ok {
		return fmt.Errorf("faculty %s for room %s is not in the seed users", sr.FacultyEmail, sr.Name)
	}

	var existing int
	err := db.GetContext(ctx, &existing,
		`SELECT COUNT(*) FROM rooms WHERE name = :1 AND faculty_id = :2 AND deleted_at IS NULL`,
		sr.Name, facultyID)
	if err != nil {
		return fmt.Errorf("failed to look up room %s: %w", sr.Name, err)
	}
	if existing > 0 {
		log.Info("Room exists, skipping", zap.String("name", sr.Name))
		return nil
	}

	roomRepo := repository.NewSQLXRoomRepository(db)
	docRepo := repository.NewSQLXDocumentRepository(db)

	// The room and its documents land together or not at all.
	return txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		room := domain.NewRoom(util.NewULID(), sr.Name, facultyID)
		if err := room.Validate(); err != nil {
			return err
		}
		if err := roomRepo.CreateRoom(txCtx, room); err != nil {
			return fmt.Errorf("failed to create room %s: %w", sr.Name, err)
		}
		log.Info("Created room", zap.String("name", room.Name), zap.String("id", room.ID))

		for _, sd := range sr.Documents {
			doc := &domain.Document{
				ID:          util.NewULID(),
				RoomID:      room.ID,
				OwnerID:     facultyID,
				Title:       sd.Title,
				StoragePath: sd.StoragePath,
			}
			if err := doc.Validate(); err != nil {
				return err
			}
			if err := docRepo.CreateDocument(txCtx, doc); err != nil {
				return fmt.Errorf("failed to create document %s: %w", sd.Title, err)
			}
			log.Info("Created document", zap.String("title", doc.Title), zap.String("id", doc.ID))
		}
		return nil
	})
}
