// pay-by-plan/internal/handlers/auth_handler.go
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mavhungutrezzy/pay-by-plan/config"
	"github.com/mavhungutrezzy/pay-by-plan/models"
)

const tokenLifetime = 24 * time.Hour

// AuthHandler обслуживает вход, выход и регистрацию.
type AuthHandler struct {
	DB *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{DB: db}
}

type loginRequest struct {
	Login    string `form:"login" json:"login" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

type registerRequest struct {
	Login    string `form:"login" json:"login" binding:"required"`
	Email    string `form:"email" json:"email" binding:"required,email"`
	FullName string `form:"fullName" json:"fullName" binding:"required"`
	Password string `form:"password" json:"password" binding:"required,min=8"`
}

// ShowLoginPage рендерит страницу входа - главную для неавторизованных.
func (h *AuthHandler) ShowLoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{})
}

// ShowRegisterPage рендерит страницу регистрации.
func (h *AuthHandler) ShowRegisterPage(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", gin.H{})
}

// Login проверяет учетные данные и выдает JWT. Браузеру токен уходит в
// cookie с редиректом на дашборд, API-клиенту - в JSON.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.loginFailed(c, "Укажите логин и пароль")
		return
	}

	var user models.User
	if err := h.DB.Where("login = ?", req.Login).First(&user).Error; err != nil {
		// Одинаковый ответ для "нет пользователя" и "не тот пароль",
		// чтобы не подсказывать, какие логины существуют.
		h.loginFailed(c, "Неверный логин или пароль")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.loginFailed(c, "Неверный логин или пароль")
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"exp":     time.Now().Add(tokenLifetime).Unix(),
	})
	tokenStr, err := token.SignedString(config.JwtKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось создать токен"})
		return
	}

	c.SetCookie("auth_token", tokenStr, int(tokenLifetime.Seconds()), "/", "", false, true)
	if wantsJSON(c) {
		c.JSON(http.StatusOK, gin.H{"token": tokenStr})
		return
	}
	c.Redirect(http.StatusFound, "/dashboard")
}

// Logout сбрасывает cookie и возвращает на страницу входа.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie("auth_token", "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

// Register создает нового пользователя.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		h.registerFailed(c, "Неверные данные: "+err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось обработать пароль"})
		return
	}

	user := models.User{
		Login:        req.Login,
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: string(hash),
	}
	if err := h.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			h.registerFailed(c, "Логин или email уже заняты")
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось создать пользователя"})
		return
	}

	if wantsJSON(c) {
		c.JSON(http.StatusCreated, gin.H{"id": user.ID, "login": user.Login})
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) loginFailed(c *gin.Context, message string) {
	if wantsJSON(c) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": message})
		return
	}
	c.HTML(http.StatusUnauthorized, "login.html", gin.H{"Error": message})
}

func (h *AuthHandler) registerFailed(c *gin.Context, message string) {
	if wantsJSON(c) {
		c.JSON(http.StatusBadRequest, gin.H{"error": message})
		return
	}
	c.HTML(http.StatusBadRequest, "register.html", gin.H{"Error": message})
}

func wantsJSON(c *gin.Context) bool {
	return c.ContentType() == "application/json" || c.GetHeader("Accept") == "application/json"
}
