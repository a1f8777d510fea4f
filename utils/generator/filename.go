package generator

import (
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// maxBaseNameLength 原始文件名保留的最大长度
const maxBaseNameLength = 64

var lastNano atomic.Int64

// nextNano 返回进程内严格递增的纳秒时间戳
func nextNano(now time.Time) int64 {
	n := now.UnixNano()
	for {
		last := lastNano.Load()
		if n <= last {
			n = last + 1
		}
		if lastNano.CompareAndSwap(last, n) {
			return n
		}
		n = now.UnixNano()
	}
}

// PhotoFileName 生成上传图片的存储文件名：<纳秒时间戳>_<清理后的原始文件名>
// 同一进程内时间戳严格递增，跨进程只有同一纳秒且同名时才会冲突
func PhotoFileName(originalName string, now time.Time) string {
	return strconv.FormatInt(nextNano(now), 10) + "_" + SanitizeBaseName(originalName)
}

// IsPhotoFileName 判断 name 是否符合 PhotoFileName 的命名格式
func IsPhotoFileName(name string) bool {
	stamp, rest, ok := strings.Cut(name, "_")
	if !ok || stamp == "" || rest == "" {
		return false
	}
	if _, err := strconv.ParseInt(stamp, 10, 64); err != nil || strings.HasPrefix(stamp, "-") || strings.HasPrefix(stamp, "+") {
		return false
	}
	return SanitizeBaseName(rest) == rest
}

// SanitizeBaseName 只保留存储层允许的字符
func SanitizeBaseName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	ext := strings.ToLower(filepath.Ext(name))
	stem := strings.TrimSuffix(name, filepath.Ext(name))

	var sb strings.Builder
	for _, r := range stem {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			sb.WriteRune(r)
		case r == ' ' || r == '.':
			sb.WriteRune('_')
		}
	}

	cleaned := strings.Trim(sb.String(), "_")
	if cleaned == "" {
		cleaned = "photo"
	}
	if len(cleaned) > maxBaseNameLength {
		cleaned = strings.TrimRight(cleaned[:maxBaseNameLength], "_")
	}

	var extSb strings.Builder
	for _, r := range ext {
		if r == '.' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			extSb.WriteRune(r)
		}
	}
	if extSb.Len() <= 1 {
		return cleaned
	}
	return cleaned + extSb.String()
}
