package utils

import (
	"log"
	"strings"
	"unicode"

	"github.com/anoixa/photo-share/config"
)

// LogIfDev 仅在开发版本输出日志
func LogIfDev(msg string) {
	if config.IsDevelopment() {
		log.Println(msg)
	}
}

// LogIfDevf 仅在开发版本输出格式化日志
func LogIfDevf(format string, args ...interface{}) {
	if config.IsDevelopment() {
		log.Printf(format, args...)
	}
}

// SanitizeLogMessage 去除用户输入中的控制字符，防止日志注入
func SanitizeLogMessage(msg string) string {
	var sb strings.Builder
	for _, r := range msg {
		if r == '\n' || r == '\r' {
			sb.WriteRune(' ')
		} else if r == '\t' || unicode.IsPrint(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// SanitizeLogUsername 截断并清理登录名
func SanitizeLogUsername(username string) string {
	if len(username) > 50 {
		username = username[:50] + "..."
	}
	return SanitizeLogMessage(username)
}
