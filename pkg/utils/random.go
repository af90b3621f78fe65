package utils

import "github.com/google/uuid"

// GenerateID создает уникальный ID (UUID v4 в строковом виде).
func GenerateID() string {
	return uuid.NewString()
}
