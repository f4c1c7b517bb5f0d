package adminapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/talkincode/toughstore/internal/domain"
	"github.com/talkincode/toughstore/pkg/common"
)

func TestLogin(t *testing.T) {
	env := setupTestEnv(t)

	rec := env.requestAs(t, http.MethodPost, "/api/auth/login",
		map[string]string{"username": "admin", "password": "admin123"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	code, _, data := decodeEnvelope(t, rec)
	if code != http.StatusOK {
		t.Fatalf("envelope code = %d", code)
	}
	var payload struct {
		Token string `json:"token"`
		User  struct {
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"user"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if payload.Token == "" {
		t.Error("expected a token")
	}
	if payload.User.Role != domain.RoleAdmin {
		t.Errorf("role = %s, want admin", payload.User.Role)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	env := setupTestEnv(t)

	rec := env.requestAs(t, http.MethodPost, "/api/auth/login",
		map[string]string{"username": "admin", "password": "wrong"}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	env := setupTestEnv(t)

	rec := env.requestAs(t, http.MethodPost, "/api/auth/login",
		map[string]string{"username": "nobody", "password": "admin123"}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestApiRequiresToken(t *testing.T) {
	env := setupTestEnv(t)

	rec := env.requestAs(t, http.MethodGet, "/api/products", nil, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRegister(t *testing.T) {
	env := setupTestEnv(t)

	rec := env.request(t, http.MethodPost, "/api/auth/register",
		map[string]string{"username": "cashier1", "password": "secret123", "name": "Cashier One"})
	if rec.Code != http.StatusOK {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}
	var user domain.SysUser
	if err := env.db().Where("username = ?", "cashier1").First(&user).Error; err != nil {
		t.Fatalf("user not persisted: %v", err)
	}
	if user.Role != domain.RoleCashier {
		t.Errorf("default role = %s, want cashier", user.Role)
	}
	if !common.CheckPassword(user.PasswordHash, "secret123") {
		t.Error("stored hash does not match password")
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	env := setupTestEnv(t)

	rec := env.request(t, http.MethodPost, "/api/auth/register",
		map[string]string{"username": "admin", "password": "secret123"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRegisterRequiresAdmin(t *testing.T) {
	env := setupTestEnv(t)

	hash, _ := common.HashPassword("secret123")
	cashier := &domain.SysUser{
		ID:           common.UUIDint64(),
		Username:     "cashier9",
		PasswordHash: hash,
		Role:         domain.RoleCashier,
	}
	if err := env.db().Create(cashier).Error; err != nil {
		t.Fatal(err)
	}
	token, err := issueToken(cashier, env.app.Config().Web.Secret)
	if err != nil {
		t.Fatal(err)
	}
	rec := env.requestAs(t, http.MethodPost, "/api/auth/register",
		map[string]string{"username": "another", "password": "secret123"}, token)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestListUsers(t *testing.T) {
	env := setupTestEnv(t)

	rec := env.request(t, http.MethodGet, "/api/auth/users", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	_, _, data := decodeEnvelope(t, rec)
	var users []map[string]interface{}
	if err := json.Unmarshal(data, &users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("user count = %d, want 1", len(users))
	}
	if _, leaked := users[0]["password_hash"]; leaked {
		t.Error("password hash must not be serialized")
	}
}
