package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"documerge-backend/config"
	"documerge-backend/models"
	"documerge-backend/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootLogger.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.LogFormat == "json" {
		cfg.LogFormat = "console"
	}
	logger := cfg.NewLogger(os.Stderr)
	if envErr != nil {
		logger.Warn().Msg("no .env file found, using environment variables")
	}

	cmd := &cli.Command{
		Name:  "create-test-user",
		Usage: "Create a user in the postgres users table",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Value: "test@example.com"},
			&cli.StringFlag{Name: "password", Value: "testpassword123"},
			&cli.StringFlag{Name: "name", Value: "Test User"},
			&cli.StringFlag{Name: "role", Value: string(models.RoleAdministrator), Usage: "drafter, administrator or developer"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			role, err := config.ParseRole(c.String("role"))
			if err != nil {
				return err
			}
			user := &models.User{Email: c.String("email"), Name: c.String("name"), Role: role}
			return createUser(ctx, cfg.DatabaseURL, user, c.String("password"), logger)
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logger.Fatal().Err(err).Msg("failed to create test user")
	}
}

func createUser(ctx context.Context, connString string, user *models.User, password string, logger zerolog.Logger) error {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	users := repository.NewUserRepository(pool)

	existing, err := users.GetByEmail(ctx, user.Email)
	if err == nil {
		logger.Info().Str("email", existing.Email).Str("user_id", existing.ID.String()).Msg("user already exists")
		printHeaders(existing)
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to look up user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hashed)

	if err := users.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	logger.Info().Str("email", user.Email).Str("role", string(user.Role)).Str("user_id", user.ID.String()).Msg("user created")
	printHeaders(user)
	return nil
}

// printHeaders shows the gateway headers that identify the user to the API
func printHeaders(user *models.User) {
	fmt.Printf("X-User-ID: %s\n", user.ID)
	fmt.Printf("X-User-Role: %s\n", user.Role)
}
