package router

import (
	userapp "github.com/mcarvalho/usuarios-api/internal/application"
	"github.com/mcarvalho/usuarios-api/internal/container"
	repouser "github.com/mcarvalho/usuarios-api/internal/domain/repository"
	pginfra "github.com/mcarvalho/usuarios-api/internal/infrastructure/postgres"
	handlers "github.com/mcarvalho/usuarios-api/internal/interface/http"
	usermodule "github.com/mcarvalho/usuarios-api/internal/router/modules"
)

type UserModuleDeps struct {
	Repo    repouser.UserRepository
	Service *userapp.Service
	Handler *handlers.UserHandler
}

func buildUserDeps() UserModuleDeps {
	repo := pginfra.NewUserRepository(container.GetPGPool())

	service := userapp.NewService(
		repo,
		container.GetJWT(),
		container.GetRedis(),
		container.GetLogger(),
		container.GetRabbitPub(),
		container.GetES(),
		container.GetConfig().ESUsersIndex,
	)

	handler := handlers.NewUserHandler(service, container.GetLogger())

	return UserModuleDeps{Repo: repo, Service: service, Handler: handler}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	userDeps := buildUserDeps()
	r.Add(usermodule.New(userDeps.Handler, container.GetJWT()))
}
