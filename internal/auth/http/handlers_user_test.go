package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogcraftai/blogcraft-backend/internal/auth"
	"github.com/blogcraftai/blogcraft-backend/internal/auth/domain"
	"github.com/blogcraftai/blogcraft-backend/internal/auth/service"
)

type memoryUsers struct {
	users map[string]*domain.User
}

func (m *memoryUsers) GetByFirebaseUID(_ context.Context, uid string) (*domain.User, error) {
	u, ok := m.users[uid]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (m *memoryUsers) Upsert(_ context.Context, req *domain.SyncUserRequest) (*domain.User, error) {
	u, ok := m.users[req.FirebaseUID]
	if !ok {
		u = &domain.User{FirebaseUID: req.FirebaseUID, Role: domain.RoleUser, CreatedAt: time.Now()}
		m.users[req.FirebaseUID] = u
	}
	u.Email = req.Email
	if req.DisplayName != nil && u.DisplayName == "" {
		u.DisplayName = *req.DisplayName
	}
	return u, nil
}

func (m *memoryUsers) UpdateProfile(_ context.Context, uid string, req *domain.UpdateProfileRequest) (*domain.User, error) {
	u, ok := m.users[uid]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if req.DisplayName != nil {
		u.DisplayName = *req.DisplayName
	}
	if req.Bio != nil {
		u.Bio = *req.Bio
	}
	if req.AvatarURL != nil {
		u.AvatarURL = *req.AvatarURL
	}
	return u, nil
}

func (m *memoryUsers) GetRole(_ context.Context, uid string) (string, error) {
	u, ok := m.users[uid]
	if !ok {
		return "", domain.ErrUserNotFound
	}
	return u.Role, nil
}

func setupRouter(store *memoryUsers, uid, email string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/auth", func(c *gin.Context) {
		if uid != "" {
			c.Set(auth.CtxFirebaseUID, uid)
			c.Set(auth.CtxEmail, email)
		}
		c.Next()
	})
	New(service.NewAuthService(store)).Register(g)
	return r
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestSyncAndProfile(t *testing.T) {
	store := &memoryUsers{users: map[string]*domain.User{}}
	r := setupRouter(store, "uid-1", "ada@example.com")

	rr := serve(r, http.MethodPost, "/auth/sync", `{"display_name":"Ada"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"display_name":"Ada"`)

	rr = serve(r, http.MethodPost, "/auth/sync", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = serve(r, http.MethodGet, "/auth/profile", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"email":"ada@example.com"`)
	assert.Contains(t, rr.Body.String(), `"role":"user"`)

	rr = serve(r, http.MethodPatch, "/auth/profile", `{"bio":"Gopher","avatar_url":"https://img.example.com/a.png"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Gopher", store.users["uid-1"].Bio)
	assert.Equal(t, "https://img.example.com/a.png", store.users["uid-1"].AvatarURL)
}

func TestUpdateProfile_Validation(t *testing.T) {
	store := &memoryUsers{users: map[string]*domain.User{"uid-1": {FirebaseUID: "uid-1", Email: "a@b.c"}}}
	r := setupRouter(store, "uid-1", "a@b.c")

	rr := serve(r, http.MethodPatch, "/auth/profile", `{"avatar_url":"ftp://files/a.png"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"avatar_url must be an http or https URL"}`, rr.Body.String())

	rr = serve(r, http.MethodPatch, "/auth/profile", `not json`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProfile_Unauthenticated(t *testing.T) {
	r := setupRouter(&memoryUsers{users: map[string]*domain.User{}}, "", "")
	rr := serve(r, http.MethodGet, "/auth/profile", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestProfile_NotSynced(t *testing.T) {
	r := setupRouter(&memoryUsers{users: map[string]*domain.User{}}, "uid-9", "")
	rr := serve(r, http.MethodGet, "/auth/profile", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
