package ignore

import (
	"os"
	"path/filepath"

	"atomvault/pkg/fs"

	gitignore "github.com/sabhiram/go-gitignore"
)

// Matcher 封装了列表时的忽略逻辑:
// 判断一个产物名是否应该出现在 av ls 的输出里
type Matcher struct {
	ignorer *gitignore.GitIgnore
}

// NewMatcher 初始化忽略匹配器
// rootPath: 列表根目录 (用于查找 .avignore 文件)
func NewMatcher(rootPath string) (*Matcher, error) {
	// 1. 系统级默认忽略规则，强制生效
	defaultRules := []string{
		".av",         // 仓库元数据目录
		".git",        // Git 数据
		"config.yaml", // 防止 S3 Secret Key 泄露
		".env",        // 环境变量文件
		".DS_Store",   // macOS
		"Thumbs.db",   // Windows
	}
	// 尚未提交的临时产物同样不展示 (正常情况下后端 Listdir 已经滤掉，
	// 这里兜底覆盖用户直接用 shell 工具看目录再喂给 Matcher 的场景)
	defaultRules = append(defaultRules, "*"+fs.TempInfix+"*")

	var ignorer *gitignore.GitIgnore
	var err error

	// 2. 用户的 .avignore 存在就和默认规则合并编译
	ignoreFilePath := filepath.Join(rootPath, ".avignore")

	if _, errStat := os.Stat(ignoreFilePath); errStat == nil {
		ignorer, err = gitignore.CompileIgnoreFileAndLines(ignoreFilePath, defaultRules...)
	} else {
		ignorer = gitignore.CompileIgnoreLines(defaultRules...)
	}

	if err != nil {
		return nil, err
	}

	return &Matcher{ignorer: ignorer}, nil
}

// Matches 检查给定的名字是否匹配忽略规则
func (m *Matcher) Matches(path string) bool {
	return m.ignorer.MatchesPath(path)
}
