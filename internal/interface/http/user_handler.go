package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/mcarvalho/usuarios-api/internal/application"
	"github.com/mcarvalho/usuarios-api/internal/interface/middleware"
	"github.com/mcarvalho/usuarios-api/pkg/response"
	"github.com/mcarvalho/usuarios-api/pkg/validation"
)

// User-facing messages. The login failure text is deliberately identical for
// unknown email and wrong password so the response never reveals whether an
// account exists.
const (
	msgCreated            = "Usuário cadastrado com sucesso."
	msgUpdated            = "Usuário atualizado com sucesso."
	msgDeleted            = "Usuário removido com sucesso."
	msgNotFound           = "Usuário não encontrado."
	msgInvalidCredentials = "E-mail ou senha inválidos."
	msgInvalidCPF         = "CPF inválido."
	msgDuplicate          = "E-mail ou CPF já cadastrado."
	msgMissingFields      = "Campos obrigatórios não informados."
	msgInternal           = "Erro interno do servidor."
)

type UserHandler struct {
	Svc    *userapp.Service
	Logger *logrus.Logger
}

func NewUserHandler(svc *userapp.Service, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type createUserRequest struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required"`
	CPF          string `json:"cpf" binding:"required,cpf"`
	State        string `json:"state" binding:"required"`
	City         string `json:"city" binding:"required"`
	Neighborhood string `json:"neighborhood" binding:"required"`
	Street       string `json:"street" binding:"required"`
	Number       string `json:"number" binding:"required"`
	Phone        string `json:"phone" binding:"required"`
	Birthdate    string `json:"birthdate" binding:"required"`
}

type updateUserRequest struct {
	Name         string  `json:"name" binding:"required"`
	Password     *string `json:"password"` // optional: absent keeps the stored digest
	State        string  `json:"state" binding:"required"`
	City         string  `json:"city" binding:"required"`
	Neighborhood string  `json:"neighborhood" binding:"required"`
	Street       string  `json:"street" binding:"required"`
	Number       string  `json:"number" binding:"required"`
	Phone        string  `json:"phone" binding:"required"`
	Birthdate    string  `json:"birthdate" binding:"required"`
}

// Login POST /api/login
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Message(c, http.StatusBadRequest, msgMissingFields)
		return
	}
	u, token, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, userapp.ErrInvalidCredentials) {
			response.Message(c, http.StatusBadRequest, msgInvalidCredentials)
			return
		}
		h.fail(c, "login failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "user": u})
}

// Create POST /api/users
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validation.IsCPFError(err) {
			response.Message(c, http.StatusBadRequest, msgInvalidCPF)
			return
		}
		h.logValidation(c, err)
		response.Message(c, http.StatusBadRequest, msgMissingFields)
		return
	}

	u, err := h.Svc.Register(c.Request.Context(), userapp.RegisterInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		CPF:          req.CPF,
		State:        req.State,
		City:         req.City,
		Neighborhood: req.Neighborhood,
		Street:       req.Street,
		Number:       req.Number,
		Phone:        req.Phone,
		Birthdate:    req.Birthdate,
	})
	if err != nil {
		switch {
		case errors.Is(err, userapp.ErrInvalidCPF):
			response.Message(c, http.StatusBadRequest, msgInvalidCPF)
		case errors.Is(err, userapp.ErrDuplicateUser):
			response.Message(c, http.StatusBadRequest, msgDuplicate)
		default:
			h.fail(c, "create user failed", err)
		}
		return
	}

	response.MessageWithUser(c, http.StatusCreated, msgCreated, gin.H{
		"id": strconv.FormatInt(u.ID, 10),
	})
}

// Update PUT /api/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.Message(c, http.StatusNotFound, msgNotFound)
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logValidation(c, err)
		response.Message(c, http.StatusBadRequest, msgMissingFields)
		return
	}

	err := h.Svc.Update(c.Request.Context(), id, userapp.UpdateInput{
		Name:         req.Name,
		Password:     req.Password,
		State:        req.State,
		City:         req.City,
		Neighborhood: req.Neighborhood,
		Street:       req.Street,
		Number:       req.Number,
		Phone:        req.Phone,
		Birthdate:    req.Birthdate,
	})
	if err != nil {
		if errors.Is(err, userapp.ErrUserNotFound) {
			response.Message(c, http.StatusNotFound, msgNotFound)
			return
		}
		h.fail(c, "update user failed", err)
		return
	}
	response.Message(c, http.StatusOK, msgUpdated)
}

// List GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.Svc.List(c.Request.Context())
	if err != nil {
		h.fail(c, "list users failed", err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// GetOne GET /api/users/:id
func (h *UserHandler) GetOne(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.Message(c, http.StatusNotFound, msgNotFound)
		return
	}
	u, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, userapp.ErrUserNotFound) {
			response.Message(c, http.StatusNotFound, msgNotFound)
			return
		}
		h.fail(c, "get user failed", err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// Delete DELETE /api/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		response.Message(c, http.StatusNotFound, msgNotFound)
		return
	}
	u, err := h.Svc.Delete(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, userapp.ErrUserNotFound) {
			response.Message(c, http.StatusNotFound, msgNotFound)
			return
		}
		h.fail(c, "delete user failed", err)
		return
	}
	response.MessageWithUser(c, http.StatusOK, msgDeleted, u)
}

// Profile GET /api/profile (auth required) returns the caller's own record.
func (h *UserHandler) Profile(c *gin.Context) {
	uid := c.GetInt64(middleware.CtxUserIDKey)
	u, err := h.Svc.Get(c.Request.Context(), uid)
	if err != nil {
		if errors.Is(err, userapp.ErrUserNotFound) {
			response.Message(c, http.StatusNotFound, msgNotFound)
			return
		}
		h.fail(c, "get profile failed", err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// Search GET /api/search/users?q=... (auth required)
func (h *UserHandler) Search(c *gin.Context) {
	q := c.Query("q")
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	hits, err := h.Svc.SearchUsers(c.Request.Context(), q, size)
	if err != nil {
		h.fail(c, "search users failed", err)
		return
	}
	c.JSON(http.StatusOK, hits)
}

// fail logs the internal error and answers with a generic 500 body. The
// failure detail stays in the log, never in the response.
func (h *UserHandler) fail(c *gin.Context, msg string, err error) {
	if h.Logger != nil {
		h.Logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		}).Error(msg)
	}
	response.Message(c, http.StatusInternalServerError, msgInternal)
}

func (h *UserHandler) logValidation(c *gin.Context, err error) {
	if h.Logger == nil {
		return
	}
	h.Logger.WithFields(logrus.Fields{
		"request_id": c.GetString("request_id"),
		"path":       c.FullPath(),
		"details":    validation.ToDetails(err),
	}).Debug("payload validation failed")
}

// pathID parses the :id segment. A non-numeric id can never match a stored
// record, so it is treated as a lookup miss.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
