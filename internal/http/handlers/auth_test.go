package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"motionpitch/internal/domain"
	"motionpitch/internal/middleware"
)

type fakeUserRepo struct {
	byEmail map[string]*domain.User
	byID    map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*domain.User{}, byID: map[string]*domain.User{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if _, ok := f.byEmail[user.Email]; ok {
		return nil, domain.ErrEmailTaken
	}
	f.byEmail[user.Email] = user
	f.byID[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrNotFound
}

func newAuthApp(users domain.UserRepository) *App {
	return &App{
		Users:     users,
		Logger:    zerolog.New(io.Discard),
		JWTSecret: "secret",
	}
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestRegisterIssuesToken(t *testing.T) {
	app := newAuthApp(newFakeUserRepo())

	rec := postJSON(t, app.Register, "/api/auth/register", registerRequest{
		Email:    "A@Example.com",
		Name:     "Ada",
		Password: "correcthorse",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Token == "" || resp.User.Email != "a@example.com" {
		t.Fatalf("response = %+v", resp)
	}
	claims, err := middleware.VerifyJWT("secret", resp.Token)
	if err != nil || claims.Sub != resp.User.ID {
		t.Fatalf("token claims = %+v, err %v", claims, err)
	}
}

func TestRegisterValidation(t *testing.T) {
	app := newAuthApp(newFakeUserRepo())

	if rec := postJSON(t, app.Register, "/", registerRequest{Email: "not-an-email", Password: "longenough"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad email status = %d", rec.Code)
	}
	if rec := postJSON(t, app.Register, "/", registerRequest{Email: "a@b.co", Password: "short"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("short password status = %d", rec.Code)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	app := newAuthApp(newFakeUserRepo())
	body := registerRequest{Email: "a@b.co", Password: "correcthorse"}

	if rec := postJSON(t, app.Register, "/", body); rec.Code != http.StatusOK {
		t.Fatalf("first register status = %d", rec.Code)
	}
	if rec := postJSON(t, app.Register, "/", body); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register status = %d", rec.Code)
	}
}

func TestLoginChecksPassword(t *testing.T) {
	users := newFakeUserRepo()
	hash, _ := bcrypt.GenerateFromPassword([]byte("correcthorse"), bcrypt.MinCost)
	users.byEmail["a@b.co"] = &domain.User{ID: "u1", Email: "a@b.co", PasswordHash: string(hash)}
	app := newAuthApp(users)

	if rec := postJSON(t, app.Login, "/", loginRequest{Email: "a@b.co", Password: "correcthorse"}); rec.Code != http.StatusOK {
		t.Fatalf("valid login status = %d", rec.Code)
	}
	if rec := postJSON(t, app.Login, "/", loginRequest{Email: "a@b.co", Password: "wrong"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d", rec.Code)
	}
	if rec := postJSON(t, app.Login, "/", loginRequest{Email: "nobody@b.co", Password: "x"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user status = %d", rec.Code)
	}
}

func TestMeRequiresContext(t *testing.T) {
	users := newFakeUserRepo()
	users.byID["u1"] = &domain.User{ID: "u1", Email: "a@b.co", Name: "Ada"}
	app := newAuthApp(users)

	rec := httptest.NewRecorder()
	app.Me(rec, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), "u1"))
	rec = httptest.NewRecorder()
	app.Me(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("authenticated status = %d", rec.Code)
	}
	var dto userDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if dto.ID != "u1" || dto.Name != "Ada" {
		t.Fatalf("dto = %+v", dto)
	}
}
