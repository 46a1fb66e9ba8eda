package ignore

import (
	"os"
	"path/filepath"

	gitignore "github.com/sabhiram/go-gitignore"
)

// FileName 是种子目录下可选的忽略规则文件
const FileName = ".vfsignore"

// defaultRules 总是生效，不会被映射进种子树
var defaultRules = []string{
	".vfs",   // 本地快照存储目录
	".git",   // Git 仓库数据
	FileName, // 忽略文件本身
	".env",
	".DS_Store",
	"Thumbs.db",
}

// Matcher 判断种子目录中的条目是否应被跳过
type Matcher struct {
	ignorer *gitignore.GitIgnore
}

// NewMatcher 初始化忽略匹配器
// rootPath: 种子目录根 (用于查找 .vfsignore)
// extra: 额外规则，通常来自配置 seed.ignore
func NewMatcher(rootPath string, extra ...string) (*Matcher, error) {
	rules := append(append([]string{}, defaultRules...), extra...)

	ignoreFilePath := filepath.Join(rootPath, FileName)
	if _, err := os.Stat(ignoreFilePath); err == nil {
		// 文件内容和默认规则合并编译
		ignorer, err := gitignore.CompileIgnoreFileAndLines(ignoreFilePath, rules...)
		if err != nil {
			return nil, err
		}
		return &Matcher{ignorer: ignorer}, nil
	}

	return &Matcher{ignorer: gitignore.CompileIgnoreLines(rules...)}, nil
}

// Matches 检查相对种子根目录的路径是否被忽略
// 返回 true 表示跳过
func (m *Matcher) Matches(path string) bool {
	if m == nil || m.ignorer == nil {
		return false
	}
	return m.ignorer.MatchesPath(filepath.ToSlash(path))
}
