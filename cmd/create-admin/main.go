package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/istanbulinstitute/educrm-exam/internal/config"
	"github.com/istanbulinstitute/educrm-exam/internal/database"
	"github.com/istanbulinstitute/educrm-exam/internal/logger"
	"github.com/istanbulinstitute/educrm-exam/internal/repository"
	"github.com/istanbulinstitute/educrm-exam/internal/service"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Initialize Service ────────────────────────────────────────────
	authService := service.NewAuthService(cfg, repository.NewUserRepository(pool))

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create Staff Account ===")
	fmt.Printf("The system owner is %s; create it first on a fresh database.\n", cfg.SystemOwnerEmail)

	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	fmt.Printf("Enter Email (default %s): ", cfg.SystemOwnerEmail)
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if email == "" {
		email = cfg.SystemOwnerEmail
	}

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Println("Error reading password")
		return
	}
	password := string(bytePassword)
	if len(password) < 8 {
		fmt.Println("Error: Password must be at least 8 characters")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	user, err := authService.CreateUser(ctx, email, name, password)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		fmt.Printf("Error: %s already has an account\n", email)
		return
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create staff account")
	}

	fmt.Printf("\nSuccess! '%s' (%s) created with ID: %s\n", user.Name, user.Email, user.ID)
}
