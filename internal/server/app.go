package server

import (
	"database/sql"
	"time"

	"gatehouse/internal/auth"
	"gatehouse/internal/config"
	"gatehouse/internal/database"
	"gatehouse/internal/logger"
	"gatehouse/internal/services"
	"gatehouse/internal/storage"
	"gatehouse/internal/token"
)

// App holds all application state and dependencies
type App struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        *sql.DB
	Backend   storage.Backend
	Codec     *token.Codec
	Guard     *auth.Guard
	Users     *database.UserStore
	Refs      *database.RefStore
	StartedAt time.Time

	// Services layer for business logic
	UserService   *services.UserService
	UploadService *services.UploadService
	FileService   *services.FileService
}

// NewApp wires the application: repositories over db, services over the
// repositories and the storage backend.
func NewApp(cfg *config.Config, log *logger.Logger, db *sql.DB, backend storage.Backend, guard *auth.Guard) *App {
	codec := token.NewCodec(cfg.Auth.Secret, cfg.Auth.TokenTTL())
	users := database.NewUserStore(db)
	refs := database.NewRefStore(db)

	policy := services.UploadPolicy{
		MaxBytes:     cfg.Upload.MaxSizeBytes,
		AllowedTypes: cfg.Upload.AllowedTypes,
	}

	return &App{
		Config:        cfg,
		Logger:        log,
		DB:            db,
		Backend:       backend,
		Codec:         codec,
		Guard:         guard,
		Users:         users,
		Refs:          refs,
		StartedAt:     time.Now(),
		UserService:   services.NewUserService(users, codec, cfg.Auth.BcryptCost, log),
		UploadService: services.NewUploadService(backend, policy, log),
		FileService:   services.NewFileService(backend, refs, log),
	}
}
