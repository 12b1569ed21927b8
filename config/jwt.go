// pay-by-plan/config/jwt.go
package config

import (
	"log/slog"
	"os"
)

// JwtKey - секрет для подписи токенов. Берется из окружения при старте.
var JwtKey []byte

func LoadJwtKey() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		slog.Error("Критическая ошибка: переменная окружения JWT_SECRET не установлена.")
		os.Exit(1)
	}
	JwtKey = []byte(secret)
}
