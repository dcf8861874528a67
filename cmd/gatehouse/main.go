package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"gatehouse/internal/auth"
	"gatehouse/internal/config"
	"gatehouse/internal/constants"
	"gatehouse/internal/database"
	"gatehouse/internal/logger"
	"gatehouse/internal/server"
	"gatehouse/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: ~/"+constants.ConfigDir+"/"+constants.ConfigFile+")")
	flag.Parse()

	// 1. Initialize startup logger
	log := logger.New(constants.DefaultLogLevel)
	log.Info("%s starting", constants.AppName)

	// 2. Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("Failed to load config: %v", err)
		os.Exit(1)
	}
	log.SetLevel(cfg.Log.Level)
	if cfg.Log.Directory != "" {
		log.SetLogDir(cfg.Log.Directory)
	}
	cfg.LogEffectiveValues(log)

	// 3. Open database
	db, err := database.OpenDatabase(cfg.DatabasePath)
	if err != nil {
		log.Error("Failed to open database: %v", err)
		os.Exit(1)
	}

	// 4. Select storage backend
	var backend storage.Backend
	switch cfg.Storage.Backend {
	case "remote":
		backend, err = storage.NewRemoteBackend(context.Background(), storage.RemoteConfig{
			Endpoint:  cfg.Storage.Remote.Endpoint,
			AccessKey: cfg.Storage.Remote.AccessKey,
			SecretKey: cfg.Storage.Remote.SecretKey,
			Bucket:    cfg.Storage.Remote.Bucket,
			Folder:    cfg.Storage.Remote.Folder,
			UseSSL:    cfg.Storage.Remote.UseSSL,
		}, log)
	default:
		backend, err = storage.NewLocalBackend(cfg.Storage.Directory, cfg.BaseURL, log)
	}
	if err != nil {
		log.Error("Failed to initialize storage backend: %v", err)
		os.Exit(1)
	}

	// 5. Wire application and start HTTP server
	guard := auth.NewGuard(constants.AdminOwnershipOverride)
	app := server.NewApp(cfg, log, db, backend, guard)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := server.NewServer(app, addr)

	log.Info("Starting %s server on port %d", constants.AppName, cfg.Port)
	if err := srv.Start(); err != nil {
		log.Error("Server error: %v", err)
		os.Exit(1)
	}
}
