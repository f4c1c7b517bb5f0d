package adminapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"gorm.io/gorm"

	"github.com/talkincode/toughstore/internal/app"
	"github.com/talkincode/toughstore/internal/domain"
	"github.com/talkincode/toughstore/internal/webserver"
)

// Response is the API envelope: code mirrors the HTTP status
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PageResult wraps paginated list payloads
type PageResult struct {
	Total int64       `json:"total"`
	Items interface{} `json:"items"`
}

// InitRouter registers all admin API routes. Call after webserver.Init.
func InitRouter() {
	registerAuthRoutes()
	registerProductRoutes()
	registerMemberRoutes()
	registerInventoryRoutes()
	registerOrderRoutes()
	registerPurchaseRoutes()
	registerShiftRoutes()
	registerStatsRoutes()
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{Code: http.StatusOK, Message: "success", Data: data})
}

func okMessage(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusOK, Response{Code: http.StatusOK, Message: message, Data: data})
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, Response{Code: status, Message: message})
}

func paged(c echo.Context, items interface{}, total int64) error {
	return ok(c, PageResult{Total: total, Items: items})
}

// GetAppContext returns the application container injected by the webserver
func GetAppContext(c echo.Context) app.AppContext {
	return c.Get(webserver.ContextAppKey).(app.AppContext)
}

// GetDB returns the request database handle
func GetDB(c echo.Context) *gorm.DB {
	return GetAppContext(c).DB()
}

// parsePagination reads page/limit query params with sane bounds
func parsePagination(c echo.Context) (page, limit int) {
	page = 1
	limit = 10
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 500 {
		limit = l
	}
	return page, limit
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// currentUserID extracts the user id from the verified JWT subject
func currentUserID(c echo.Context) int64 {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return 0
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0
	}
	return cast.ToInt64(claims["sub"])
}

// currentUser loads the authenticated user row; nil when the token subject
// no longer resolves to an account.
func currentUser(c echo.Context) *domain.SysUser {
	uid := currentUserID(c)
	if uid == 0 {
		return nil
	}
	var user domain.SysUser
	if err := GetDB(c).Where("id = ?", uid).First(&user).Error; err != nil {
		return nil
	}
	return &user
}

func handleValidationError(c echo.Context, err error) error {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		ve := verrs[0]
		return fail(c, http.StatusBadRequest, "validation failed on field "+ve.Field()+" ("+ve.Tag()+")")
	}
	return fail(c, http.StatusBadRequest, "validation failed")
}

// addOprLog records an audit row for sensitive mutations
func addOprLog(c echo.Context, action, desc string) {
	user := currentUser(c)
	name := "unknown"
	if user != nil {
		name = user.Username
	}
	GetDB(c).Create(&domain.SysOprLog{
		OprName:   name,
		OprIp:     c.RealIP(),
		OptAction: action,
		OptDesc:   desc,
		OptTime:   time.Now(),
	})
}
