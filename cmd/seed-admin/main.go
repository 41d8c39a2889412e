// Command seed-admin creates (or resets the password of) an admin staff
// member. It is used to bootstrap the first login on a fresh database.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayodelan/schoolbase-backend/internal/adapter/postgres"
	auditrepo "github.com/ayodelan/schoolbase-backend/internal/adapter/postgres/audit"
	"github.com/ayodelan/schoolbase-backend/internal/adapter/postgres/entitystore"
	staffrepo "github.com/ayodelan/schoolbase-backend/internal/adapter/postgres/staff"
	"github.com/ayodelan/schoolbase-backend/internal/app"
	"github.com/ayodelan/schoolbase-backend/internal/catalog"
	"github.com/ayodelan/schoolbase-backend/internal/config"
	"github.com/ayodelan/schoolbase-backend/internal/domain"
	"github.com/ayodelan/schoolbase-backend/internal/lifecycle"
	"github.com/ayodelan/schoolbase-backend/internal/translate"
	"github.com/ayodelan/schoolbase-backend/internal/validate"
)

func main() {
	email := flag.String("email", "", "email of the admin account")
	password := flag.String("password", "", "password for the admin account")
	firstName := flag.String("first-name", "System", "first name")
	lastName := flag.String("last-name", "Administrator", "last name")
	staffNo := flag.String("staff-no", "ADMIN-001", "staff number")
	flag.Parse()

	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: seed-admin -email <email> -password <password>")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	cat := catalog.Default()
	store := entitystore.New(pool, cat)
	staff := staffrepo.New(pool)

	engine := lifecycle.New(logger, cat, store, auditrepo.New(pool), postgres.NewTxManager(pool), translate.New(cat))
	validate.Register(engine)

	rec, err := engine.Create(ctx, domain.KindStaff, map[string]any{
		"first_name": *firstName,
		"last_name":  *lastName,
		"email":      *email,
		"staff_no":   *staffNo,
		"staff_type": domain.StaffTypeAdmin.String(),
	})

	var staffID uuid.UUID
	switch {
	case err == nil:
		staffID = rec.ID
		logger.Info("admin account created", slog.String("email", *email))
	case errors.Is(err, domain.ErrDuplicate):
		// Account exists; fall through to a password reset.
		creds, lookupErr := staff.GetCredentialsByEmail(ctx, *email)
		if lookupErr != nil {
			logger.Error("look up existing account", slog.String("error", lookupErr.Error()))
			os.Exit(1)
		}
		staffID = creds.ID
		logger.Info("admin account already exists, resetting password", slog.String("email", *email))
	default:
		logger.Error("create admin account", slog.String("error", err.Error()))
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("hash password", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := staff.SetPasswordHash(ctx, staffID, string(hash)); err != nil {
		logger.Error("set password", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("admin account ready", slog.String("email", *email))
}
