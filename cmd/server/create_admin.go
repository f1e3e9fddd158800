package main

import (
	"errors"
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/EgehanKilicarslan/library-api/internal/config"
	"github.com/EgehanKilicarslan/library-api/internal/database"
	"github.com/EgehanKilicarslan/library-api/internal/database/repository"
	"github.com/EgehanKilicarslan/library-api/internal/database/service"
	"github.com/EgehanKilicarslan/library-api/internal/logger"
)

const minPasswordLength = 6

func newCreateAdminCommand() *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an ADMIN account (password is prompted)",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword("Password: ")
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			if len(password) < minPasswordLength {
				return errPasswordTooShort
			}
			confirm, err := readPassword("Confirm password: ")
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			if confirm != password {
				return errPasswordMismatch
			}

			cfg := config.LoadConfig()
			appLogger := logger.New(cfg)

			db, err := database.Connect(cfg, appLogger)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			users := service.NewUserService(repository.NewUserRepository(db), cfg, appLogger)
			user, err := users.CreateUser(service.CreateUserInput{
				Name:     name,
				Email:    email,
				Password: password,
				Role:     config.RoleAdmin,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Created admin %s (id %d)\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "Administrator", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// readPassword reads a password without echoing it
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(bytePassword)), nil
}

var (
	errPasswordTooShort = errors.New("password must be at least 6 characters")
	errPasswordMismatch = errors.New("passwords do not match")
)
