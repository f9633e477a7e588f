// seed registers a demo user and a few insurance policies in the local dev database.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ErlanBelekov/healthcover-api/config"
	"github.com/ErlanBelekov/healthcover-api/internal/domain"
	"github.com/ErlanBelekov/healthcover-api/internal/infrastructure/postgres"
	ctxlog "github.com/ErlanBelekov/healthcover-api/internal/log"
	"github.com/ErlanBelekov/healthcover-api/internal/password"
	"github.com/ErlanBelekov/healthcover-api/internal/token"
	"github.com/ErlanBelekov/healthcover-api/internal/usecase"
)

const (
	seedUsername = "demo"
	seedEmail    = "demo@healthcover.local"
	seedPassword = "demo-password"
)

type policySpec struct {
	provider string
	number   string
	start    string
	end      string
}

var policies = []policySpec{
	{"Star Health", "SH-2026-0001", "2026-01-01", "2026-12-31"},
	{"HDFC ERGO", "HE-2026-0042", "2026-04-01", "2027-03-31"},
	{"Niva Bupa", "NB-2025-0913", "2025-07-15", "2026-07-14"},
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v (set JWT_SECRET and DATABASE_URL, or add a .env file)", err)
	}
	logger := ctxlog.New(cfg.Env, cfg.SlogLevel(), os.Stderr)

	pool, err := postgres.NewPool(ctx, cfg.DSN())
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		log.Fatalf("migrate: %v", err)
	}

	hasher, err := password.NewHasher(cfg.BcryptCost, cfg.HashWorkers)
	if err != nil {
		pool.Close()
		log.Fatalf("hasher: %v", err)
	}

	userRepo := postgres.NewUserRepository(pool)
	auth := usecase.NewAuthUsecase(userRepo, hasher, token.NewIssuer([]byte(cfg.JWTSecret), cfg.TokenTTL), nil, logger)
	policyUC := usecase.NewPolicyUsecase(postgres.NewPolicyRepository(pool))

	// Register the demo user, or reuse it on re-runs
	var userID int64
	user, err := auth.Register(ctx, usecase.RegisterInput{Username: seedUsername, Email: seedEmail, Password: seedPassword})
	switch {
	case err == nil:
		userID = user.ID
	case errors.Is(err, domain.ErrEmailTaken):
		existing, ferr := userRepo.FindByEmail(ctx, seedEmail)
		if ferr != nil {
			pool.Close()
			log.Fatalf("find seed user: %v", ferr)
		}
		userID = existing.ID
	default:
		pool.Close()
		log.Fatalf("register seed user: %v", err)
	}

	existing, err := policyUC.ListPolicies(ctx, userID)
	if err != nil {
		pool.Close()
		log.Fatalf("list policies: %v", err)
	}
	have := make(map[string]bool, len(existing))
	for _, p := range existing {
		have[p.PolicyNumber] = true
	}

	var inserted, skipped int
	for _, spec := range policies {
		if have[spec.number] {
			skipped++
			continue
		}
		start, _ := time.Parse(time.DateOnly, spec.start)
		end, _ := time.Parse(time.DateOnly, spec.end)
		if _, err := policyUC.AddPolicy(ctx, usecase.AddPolicyInput{
			UserID:        userID,
			Provider:      spec.provider,
			PolicyNumber:  spec.number,
			CoverageStart: start,
			CoverageEnd:   end,
		}); err != nil {
			pool.Close()
			log.Fatalf("insert policy %s: %v", spec.number, err)
		}
		inserted++
	}

	login, err := auth.Login(ctx, usecase.LoginInput{Email: seedEmail, Password: seedPassword})
	if err != nil {
		pool.Close()
		log.Fatalf("login seed user: %v", err)
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  User:             %s / %s\n", seedEmail, seedPassword)
	fmt.Printf("  User ID:          %d\n", userID)
	fmt.Printf("  Policies created: %d  (skipped %d already existing)\n", inserted, skipped)
	fmt.Println()
	fmt.Println("Try it:")
	fmt.Println()
	fmt.Printf("  export JWT=%s\n", login.Token)
	fmt.Printf("  curl -s http://localhost:%s/insurance/%d -H \"Authorization: Bearer $JWT\"\n", cfg.Port, userID)
	fmt.Println()
	fmt.Printf("  (token expires %s)\n", login.ExpiresAt.Format(time.RFC3339))
}
