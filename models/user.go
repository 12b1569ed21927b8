// pay-by-plan/models/user.go
package models

import "gorm.io/gorm"

// User представляет пользователя системы. Каждый layby принадлежит ровно
// одному пользователю.
type User struct {
	gorm.Model
	Login        string `json:"login" gorm:"unique;not null"`
	Email        string `json:"email" gorm:"unique;not null"`
	FullName     string `json:"fullName"`
	PasswordHash string `json:"-" gorm:"not null"` // Никогда не отдаем хэш наружу

	Laybys []Layby `json:"-" gorm:"foreignKey:UserID"`
}
