package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/avelin/stitchmart/internal/config"
	"github.com/avelin/stitchmart/internal/db"
	"github.com/avelin/stitchmart/internal/hash"
	"github.com/avelin/stitchmart/internal/models"
	"github.com/avelin/stitchmart/internal/repo"
)

// seedadmin creates an admin account out of band. Admins have no public
// signup endpoint.
func main() {
	email := flag.String("email", os.Getenv("ADMIN_EMAIL"), "admin email")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password")
	role := flag.String("role", "GOD", "admin role (GOD, MANAGER, HELPER)")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("email and password are required")
	}
	if !models.ValidAdminRole(*role) {
		log.Fatalf("invalid role %q", *role)
	}

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	gormDB, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database open: %v", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("database migrate: %v", err)
	}

	pwHash, err := hash.HashPassword(*password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	r := repo.New(gormDB)
	admin := models.Admin{Email: *email, PasswordHash: pwHash, Role: models.AdminRole(*role)}
	if err := r.CreateAdminIfNotExists(ctx, &admin); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Fatalf("admin %s already exists", *email)
		}
		log.Fatalf("create admin: %v", err)
	}

	log.Printf("admin %s created with role %s", *email, *role)
}
