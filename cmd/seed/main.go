// Command seed inserts a demo user for local development.
package main

import (
	"context"
	"errors"
	"log"

	"github.com/joho/godotenv"

	"github.com/mcarvalho/usuarios-api/config"
	"github.com/mcarvalho/usuarios-api/internal/domain/entity"
	"github.com/mcarvalho/usuarios-api/internal/domain/repository"
	pginfra "github.com/mcarvalho/usuarios-api/internal/infrastructure/postgres"
	"github.com/mcarvalho/usuarios-api/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()
	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	repo := pginfra.NewUserRepository(pool)

	digest, err := helpers.HashPassword("secret1")
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}
	u := &entity.User{
		Name:         "Ana",
		Email:        "ana@x.com",
		Password:     digest,
		CPF:          "52998224725",
		State:        "SP",
		City:         "São Paulo",
		Neighborhood: "Centro",
		Street:       "Rua A",
		Number:       "10",
		Phone:        "11999990000",
		Birthdate:    "1990-01-01",
	}

	if err := repo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			log.Println("seed user already exists")
			return
		}
		log.Fatalf("create seed user: %v", err)
	}
	log.Printf("seed user created with id=%d", u.ID)
}
