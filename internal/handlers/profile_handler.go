// pay-by-plan/internal/handlers/profile_handler.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mavhungutrezzy/pay-by-plan/models"
)

// ProfileHandler обслуживает профиль текущего пользователя.
type ProfileHandler struct {
	DB *gorm.DB
}

func NewProfileHandler(db *gorm.DB) *ProfileHandler {
	return &ProfileHandler{DB: db}
}

// ProfileResponse не содержит хэша пароля.
type ProfileResponse struct {
	ID        uint      `json:"id"`
	Login     string    `json:"login"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	CreatedAt time.Time `json:"createdAt"`
}

type UpdateProfileRequest struct {
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"fullName" binding:"required"`
	Password string `json:"password"` // пусто = не менять
}

// Get возвращает профиль.
func (h *ProfileHandler) Get(c *gin.Context) {
	var user models.User
	if err := h.DB.First(&user, currentUserID(c)).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ProfileResponse{
		ID:        user.ID,
		Login:     user.Login,
		Email:     user.Email,
		FullName:  user.FullName,
		CreatedAt: user.CreatedAt,
	})
}

// Update меняет email, имя и (опционально) пароль.
func (h *ProfileHandler) Update(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверные данные: " + err.Error()})
		return
	}

	var user models.User
	if err := h.DB.First(&user, currentUserID(c)).Error; err != nil {
		respondError(c, err)
		return
	}

	user.Email = req.Email
	user.FullName = req.FullName
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось обработать пароль"})
			return
		}
		user.PasswordHash = string(hash)
	}

	if err := h.DB.Save(&user).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ProfileResponse{
		ID:        user.ID,
		Login:     user.Login,
		Email:     user.Email,
		FullName:  user.FullName,
		CreatedAt: user.CreatedAt,
	})
}
