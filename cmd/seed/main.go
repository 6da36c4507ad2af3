// Command seed provisions the four demo users, one per role. Existing rows
// with the same emails are replaced.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"hellodube-gateway/internal/config"
	"hellodube-gateway/internal/database"
	"hellodube-gateway/internal/logger"
	"hellodube-gateway/internal/model"
	"hellodube-gateway/internal/repository"
)

var demoUsers = []model.RegisterRequest{
	{FirstName: "Dube", LastName: "Admin", Email: "admin@dube.com", Password: "password123", Role: model.RoleDubeAdmin},
	{FirstName: "Dube", LastName: "Viewer", Email: "viewer@dube.com", Password: "password123", Role: model.RoleDubeViewer},
	{FirstName: "WFP", LastName: "Admin", Email: "wfpadmin@example.com", Password: "password123", Role: model.RoleWFPAdmin},
	{FirstName: "WFP", LastName: "Viewer", Email: "wfpviewer@example.com", Password: "password123", Role: model.RoleWFPViewer},
}

func main() {
	logger.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := database.NewClient(cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	defer db.Close()

	// Force the lazy client to connect and migrate before seeding.
	if _, err := db.Pool(ctx); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	users := repository.NewUserRepository(db)

	for _, demo := range demoUsers {
		if _, err := users.DeleteByEmail(ctx, demo.Email); err != nil {
			slog.Error("failed to clear existing user", "email", demo.Email, "error", err)
			os.Exit(1)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(demo.Password), bcrypt.DefaultCost)
		if err != nil {
			slog.Error("failed to hash password", "error", err)
			os.Exit(1)
		}

		now := time.Now().UTC()
		user := model.User{
			ID:           uuid.NewString(),
			FirstName:    demo.FirstName,
			LastName:     demo.LastName,
			Email:        demo.Email,
			PasswordHash: string(hash),
			Role:         demo.Role,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := users.Create(ctx, user); err != nil {
			slog.Error("failed to create user", "email", demo.Email, "error", err)
			os.Exit(1)
		}

		slog.Info("created demo user", "email", demo.Email, "role", demo.Role)
	}

	slog.Info("database seeded", "users", len(demoUsers))
}
