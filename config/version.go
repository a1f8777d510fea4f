package config

// 构建时通过 -ldflags "-X" 注入
var (
	Version    string = "dev"
	CommitHash string = ""
)

// IsProduction 生产环境：Version 为 "release" 且 CommitHash 不为空
func IsProduction() bool {
	return Version == "release" && CommitHash != ""
}

// IsDevelopment 判断是否为开发环境
func IsDevelopment() bool {
	return Version == "dev"
}

// BuildString 返回 "version (commit)"，未注入提交时只返回版本
func BuildString() string {
	if CommitHash == "" {
		return Version
	}
	return Version + " (" + CommitHash + ")"
}
