package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	userapp "github.com/mcarvalho/usuarios-api/internal/application"
	"github.com/mcarvalho/usuarios-api/internal/infrastructure/memory"
	"github.com/mcarvalho/usuarios-api/internal/interface/middleware"
	"github.com/mcarvalho/usuarios-api/pkg/helpers"
	"github.com/mcarvalho/usuarios-api/pkg/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validation.Init()
	os.Exit(m.Run())
}

type testEnv struct {
	router *gin.Engine
	repo   *memory.UserRepository
	jwt    *helpers.JWTManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo := memory.NewUserRepository()
	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	svc := userapp.NewService(repo, jwt, nil, nil, nil, nil, "")
	h := NewUserHandler(svc, nil)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/login", h.Login)
	api.POST("/users", h.Create)
	api.GET("/users", h.List)
	api.GET("/users/:id", h.GetOne)
	api.PUT("/users/:id", h.Update)
	api.DELETE("/users/:id", h.Delete)
	auth := api.Group("/")
	auth.Use(middleware.Auth(nil, jwt))
	auth.GET("/profile", h.Profile)

	return &testEnv{router: r, repo: repo, jwt: jwt}
}

func (e *testEnv) do(method, path, body string, header ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

const anaJSON = `{
	"name": "Ana",
	"email": "ana@x.com",
	"password": "secret1",
	"cpf": "52998224725",
	"state": "SP",
	"city": "SP",
	"neighborhood": "Centro",
	"street": "Rua A",
	"number": "10",
	"phone": "11999990000",
	"birthdate": "1990-01-01"
}`

func TestCreateUser(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(http.MethodPost, "/api/users", anaJSON)
	require.Equal(t, http.StatusCreated, rr.Code)

	body := decode(t, rr)
	assert.Equal(t, "Usuário cadastrado com sucesso.", body["message"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "1", user["id"], "new id is returned as string")
}

func TestCreateUserMissingField(t *testing.T) {
	env := newTestEnv(t)

	payload := strings.Replace(anaJSON, `"email": "ana@x.com",`, "", 1)
	rr := env.do(http.MethodPost, "/api/users", payload)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Campos obrigatórios não informados.", decode(t, rr)["message"])
	assert.Equal(t, 0, env.repo.Len())
}

func TestCreateUserInvalidCPF(t *testing.T) {
	env := newTestEnv(t)

	payload := strings.Replace(anaJSON, "52998224725", "52998224715", 1)
	rr := env.do(http.MethodPost, "/api/users", payload)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "CPF inválido.", decode(t, rr)["message"])
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/users", anaJSON).Code)

	dup := strings.Replace(anaJSON, "52998224725", "11144477735", 1)
	rr := env.do(http.MethodPost, "/api/users", dup)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "E-mail ou CPF já cadastrado.", decode(t, rr)["message"])
	assert.Equal(t, 1, env.repo.Len(), "row count unchanged after duplicate create")
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/users", anaJSON).Code)

	rr := env.do(http.MethodPost, "/api/login", `{"email":"ana@x.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	body := decode(t, rr)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	claims, err := env.jwt.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, "ana@x.com", claims.Email)

	user := body["user"].(map[string]any)
	assert.Equal(t, "ana@x.com", user["email"])
	assert.NotEqual(t, "secret1", user["password"], "stored record carries the hash")
}

func TestLoginBadCredentialsSameMessage(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/users", anaJSON).Code)

	wrongPwd := env.do(http.MethodPost, "/api/login", `{"email":"ana@x.com","password":"nope"}`)
	unknown := env.do(http.MethodPost, "/api/login", `{"email":"ghost@x.com","password":"secret1"}`)

	assert.Equal(t, http.StatusBadRequest, wrongPwd.Code)
	assert.Equal(t, http.StatusBadRequest, unknown.Code)
	assert.Equal(t, decode(t, wrongPwd)["message"], decode(t, unknown)["message"],
		"response must not reveal which credential failed")
}

func TestLoginMissingFields(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(http.MethodPost, "/api/login", `{"email":"ana@x.com"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetOne(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/users", anaJSON).Code)

	rr := env.do(http.MethodGet, "/api/users/1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "Ana", body["name"])
	assert.Equal(t, "52998224725", body["cpf"])
	assert.NotEqual(t, "secret1", body["password"], "record carries the hash, not the plaintext")

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/users/99", "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/users/abc", "").Code)
}

func TestList(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(http.MethodGet, "/api/users", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rr.Body.String()), "empty store lists as an empty array")

	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/users", anaJSON).Code)
	rr = env.do(http.MethodGet, "/api/users", "")
	var users []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &users))
	require.Len(t, users, 1)
	assert.Equal(t, "ana@x.com", users[0]["email"])
}

func TestUpdate(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/users", anaJSON).Code)

	update := `{
		"name": "Ana Maria",
		"state": "RJ",
		"city": "Rio",
		"neighborhood": "Lapa",
		"street": "Rua B",
		"number": "20",
		"phone": "21999990000",
		"birthdate": "1990-01-01"
	}`
	rr := env.do(http.MethodPut, "/api/users/1", update)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Usuário atualizado com sucesso.", decode(t, rr)["message"])

	got := decode(t, env.do(http.MethodGet, "/api/users/1", ""))
	assert.Equal(t, "Ana Maria", got["name"])
	assert.Equal(t, "RJ", got["state"])

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodPut, "/api/users/99", update).Code)

	missing := strings.Replace(update, `"name": "Ana Maria",`, "", 1)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPut, "/api/users/1", missing).Code)
}

func TestDelete(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/users", anaJSON).Code)

	rr := env.do(http.MethodDelete, "/api/users/1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "Usuário removido com sucesso.", body["message"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "ana@x.com", user["email"], "deleted record snapshot is returned")

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/users/1", "").Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodDelete, "/api/users/1", "").Code)
}

func TestProfileRequiresToken(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/users", anaJSON).Code)

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/api/profile", "").Code)

	login := decode(t, env.do(http.MethodPost, "/api/login", `{"email":"ana@x.com","password":"secret1"}`))
	token := login["token"].(string)

	rr := env.do(http.MethodGet, "/api/profile", "", "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ana@x.com", decode(t, rr)["email"])
}
