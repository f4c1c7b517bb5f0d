package adminapi

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/talkincode/toughstore/config"
	"github.com/talkincode/toughstore/internal/app"
	"github.com/talkincode/toughstore/internal/domain"
	"github.com/talkincode/toughstore/internal/webserver"
	"github.com/talkincode/toughstore/pkg/common"
)

type testEnv struct {
	app   *app.Application
	echo  *echo.Echo
	admin *domain.SysUser
	token string
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := *config.DefaultAppConfig
	cfg.Web.Secret = "test-secret"
	cfg.Web.FrontDir = t.TempDir()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	application := app.NewApplication(&cfg)
	application.OverrideDB(db)
	if err := db.Migrator().AutoMigrate(domain.Tables...); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	hash, _ := common.HashPassword("admin123")
	admin := &domain.SysUser{
		ID:           common.UUIDint64(),
		Username:     "admin",
		PasswordHash: hash,
		Name:         "Administrator",
		Role:         domain.RoleAdmin,
	}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	webserver.Init(application)
	InitRouter()

	token, err := issueToken(admin, cfg.Web.Secret)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return &testEnv{
		app:   application,
		echo:  webserver.Instance().Echo(),
		admin: admin,
		token: token,
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (env *testEnv) db() *gorm.DB {
	return env.app.DB()
}

// request performs a JSON API call with the env's admin token
func (env *testEnv) request(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return env.requestAs(t, method, path, body, env.token)
}

func (env *testEnv) requestAs(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.echo.ServeHTTP(rec, req)
	return rec
}

// decodeEnvelope parses the standard API response envelope
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (int, string, json.RawMessage) {
	t.Helper()
	var resp struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return resp.Code, resp.Message, resp.Data
}

// seedProduct inserts a product with its inventory row
func (env *testEnv) seedProduct(t *testing.T, code, name string, price float64, quantity, threshold int) *domain.Product {
	t.Helper()
	product := &domain.Product{
		Code:   code,
		Name:   name,
		Price:  price,
		Status: 1,
	}
	if err := env.db().Create(product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	err := env.db().Create(&domain.Inventory{
		ProductId:      product.ID,
		Quantity:       quantity,
		AlertThreshold: threshold,
	}).Error
	if err != nil {
		t.Fatalf("seed inventory: %v", err)
	}
	return product
}

// seedMember inserts a member with the given expire offset in days
func (env *testEnv) seedMember(t *testing.T, cardNo, phone string, expireDays int) *domain.Member {
	t.Helper()
	member := &domain.Member{
		CardNo:     cardNo,
		Name:       "Member " + cardNo,
		Phone:      phone,
		JoinDate:   common.Today().AddDate(-1, 0, 0),
		ExpireDate: common.Today().AddDate(0, 0, expireDays),
		Status:     common.ENABLED,
	}
	if err := env.db().Create(member).Error; err != nil {
		t.Fatalf("seed member: %v", err)
	}
	return member
}
