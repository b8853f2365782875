package util

import (
	"strings"

	"github.com/google/uuid"
)

const idHexLen = 18

// GenerateUUID 生成一个标准的 UUID (v4)
func GenerateUUID() string {
	return uuid.New().String()
}

// GenerateShortUUID 生成一个不带中划线的短 UUID
func GenerateShortUUID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// GenerateID 生成业务 ID：两位前缀 + 18 位十六进制，共 20 位
func GenerateID(prefix string) string {
	return prefix + GenerateShortUUID()[:idHexLen]
}
