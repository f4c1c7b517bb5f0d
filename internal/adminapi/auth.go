package adminapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/talkincode/toughstore/internal/domain"
	"github.com/talkincode/toughstore/internal/webserver"
	"github.com/talkincode/toughstore/pkg/common"
)

type loginForm struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerForm struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required,min=6,max=64"`
	Name     string `json:"name"`
	Role     string `json:"role" validate:"omitempty,oneof=admin cashier"`
}

type userView struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserView(u domain.SysUser) userView {
	return userView{ID: u.ID, Username: u.Username, Name: u.Name, Role: u.Role, CreatedAt: u.CreatedAt}
}

func issueToken(user *domain.SysUser, secret string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  fmt.Sprintf("%d", user.ID),
		"name": user.Username,
		"role": user.Role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func login(c echo.Context) error {
	form := new(loginForm)
	if err := c.Bind(form); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(form); err != nil {
		return handleValidationError(c, err)
	}
	var user domain.SysUser
	err := GetDB(c).Where("username = ?", form.Username).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		return fail(c, http.StatusUnauthorized, "invalid username or password")
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	if !common.CheckPassword(user.PasswordHash, form.Password) {
		return fail(c, http.StatusUnauthorized, "invalid username or password")
	}
	secret := GetAppContext(c).Config().Web.Secret
	token, err := issueToken(&user, secret)
	if err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	addOprLog(c, "login", fmt.Sprintf("user %s logged in", user.Username))
	return ok(c, map[string]interface{}{
		"token": token,
		"user":  toUserView(user),
	})
}

func logout(c echo.Context) error {
	// stateless tokens, the client discards its copy
	return okMessage(c, "logged out", nil)
}

func register(c echo.Context) error {
	operator := currentUser(c)
	if operator == nil || operator.Role != domain.RoleAdmin {
		return fail(c, http.StatusForbidden, "admin privilege required")
	}
	form := new(registerForm)
	if err := c.Bind(form); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(form); err != nil {
		return handleValidationError(c, err)
	}
	var count int64
	GetDB(c).Model(&domain.SysUser{}).Where("username = ?", form.Username).Count(&count)
	if count > 0 {
		return fail(c, http.StatusBadRequest, "username already exists")
	}
	hash, err := common.HashPassword(form.Password)
	if err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	role := form.Role
	if role == "" {
		role = domain.RoleCashier
	}
	user := domain.SysUser{
		ID:           common.UUIDint64(),
		Username:     form.Username,
		PasswordHash: hash,
		Name:         form.Name,
		Role:         role,
	}
	if err := GetDB(c).Create(&user).Error; err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	addOprLog(c, "register", fmt.Sprintf("created user %s role %s", user.Username, user.Role))
	return okMessage(c, "user created", toUserView(user))
}

func listUsers(c echo.Context) error {
	operator := currentUser(c)
	if operator == nil || operator.Role != domain.RoleAdmin {
		return fail(c, http.StatusForbidden, "admin privilege required")
	}
	var users []domain.SysUser
	if err := GetDB(c).Order("created_at asc").Find(&users).Error; err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, toUserView(u))
	}
	return ok(c, views)
}

func registerAuthRoutes() {
	webserver.ApiPOST("/auth/login", login)
	webserver.ApiPOST("/auth/logout", logout)
	webserver.ApiPOST("/auth/register", register)
	webserver.ApiGET("/auth/users", listUsers)
}
