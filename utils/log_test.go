package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSanitizeLogMessage_StripsLineBreaks 测试换行被替换，防止伪造日志行
func TestSanitizeLogMessage_StripsLineBreaks(t *testing.T) {
	got := SanitizeLogMessage("amy\n[Cascade] fake entry\r\x00")
	assert.Equal(t, "amy [Cascade] fake entry ", got)
}

// TestSanitizeLogUsername_Truncates 测试超长登录名被截断
func TestSanitizeLogUsername_Truncates(t *testing.T) {
	got := SanitizeLogUsername(strings.Repeat("a", 80))
	assert.Equal(t, strings.Repeat("a", 50)+"...", got)
}
