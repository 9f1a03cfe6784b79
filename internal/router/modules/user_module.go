package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/mcarvalho/usuarios-api/internal/container"
	handlers "github.com/mcarvalho/usuarios-api/internal/interface/http"
	"github.com/mcarvalho/usuarios-api/internal/interface/middleware"
	"github.com/mcarvalho/usuarios-api/pkg/helpers"
)

// Module wires the user HTTP handlers into routes.
// Public: POST /api/login, POST /api/users, GET /api/users,
// GET/PUT/DELETE /api/users/:id
// Protected: GET /api/profile, GET /api/search/users

type Module struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func New(h *handlers.UserHandler, jwt *helpers.JWTManager) *Module {
	return &Module{Handler: h, JWT: jwt}
}

func (m *Module) Register(rg *gin.RouterGroup) {
	rg.POST("/login", m.Handler.Login)
	rg.POST("/users", m.Handler.Create)
	rg.GET("/users", m.Handler.List)
	rg.GET("/users/:id", m.Handler.GetOne)
	rg.PUT("/users/:id", m.Handler.Update)
	rg.DELETE("/users/:id", m.Handler.Delete)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	{
		auth.GET("/profile", m.Handler.Profile)
		auth.GET("/search/users", m.Handler.Search)
	}
}
