package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"deskvfs/pkg/core"
	"deskvfs/pkg/ignore"
	"deskvfs/pkg/types"
)

// maxDocumentSize 限制种子文档大小，防止异常响应占满内存
const maxDocumentSize = 4 << 20

var ErrInvalidDocument = errors.New("invalid seed document")

// Source 是种子树的来源
// Fetch 失败时 Loader 会退回内置树，所以实现不需要自行兜底
type Source interface {
	Name() string
	Fetch(ctx context.Context) (*core.Node, error)
}

// Decode 解析 JSON 种子文档并做形状校验
func Decode(data []byte) (*core.Node, error) {
	var root core.Node
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := CheckShape(&root); err != nil {
		return nil, err
	}
	return &root, nil
}

// CheckShape 校验种子树：根必须是文件夹，其余满足 core.Validate 的结构不变量
func CheckShape(root *core.Node) error {
	if root == nil {
		return fmt.Errorf("%w: empty document", ErrInvalidDocument)
	}
	if root.Kind != types.KindFolder {
		return fmt.Errorf("%w: root kind is %q", ErrInvalidDocument, root.Kind)
	}
	if err := core.Validate(root); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}
	return nil
}

// --- HTTP ---

// HTTPSource 从远端 URL 拉取 JSON 种子文档
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{URL: url, Client: &http.Client{Timeout: timeout}}
}

func (s *HTTPSource) Name() string { return "http:" + s.URL }

func (s *HTTPSource) Fetch(ctx context.Context) (*core.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch seed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch seed: unexpected status %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("read seed body: %w", err)
	}
	if len(data) > maxDocumentSize {
		return nil, fmt.Errorf("%w: larger than %d bytes", ErrInvalidDocument, maxDocumentSize)
	}
	return Decode(data)
}

// --- File ---

// FileSource 读取本地 JSON 种子文档
type FileSource struct {
	Path string
}

func (s *FileSource) Name() string { return "file:" + s.Path }

func (s *FileSource) Fetch(_ context.Context) (*core.Node, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	if len(data) > maxDocumentSize {
		return nil, fmt.Errorf("%w: larger than %d bytes", ErrInvalidDocument, maxDocumentSize)
	}
	return Decode(data)
}

// --- Directory ---

// DirSource 把一个真实目录映射成种子树
// 目录下的 .vfsignore 和 Ignore 规则决定哪些条目被跳过
// 生成的节点不带 ID，由 VFS 在水合时按路径派生
type DirSource struct {
	Root   string
	Ignore []string
}

func (s *DirSource) Name() string { return "dir:" + s.Root }

func (s *DirSource) Fetch(ctx context.Context) (*core.Node, error) {
	info, err := os.Stat(s.Root)
	if err != nil {
		return nil, fmt.Errorf("stat seed dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("seed dir %s is not a directory", s.Root)
	}

	matcher, err := ignore.NewMatcher(s.Root, s.Ignore...)
	if err != nil {
		return nil, fmt.Errorf("load ignore rules: %w", err)
	}

	root := core.NewFolder("", "/")
	folders := map[string]*core.Node{".": root}

	err = filepath.WalkDir(s.Root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(s.Root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if matcher.Matches(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		parent := folders[filepath.Dir(rel)]
		if parent == nil {
			// 父目录被忽略
			return nil
		}

		switch {
		case d.IsDir():
			folder := core.NewFolder("", d.Name())
			parent.Children = append(parent.Children, folder)
			folders[rel] = folder
		case d.Type().IsRegular():
			fi, err := d.Info()
			if err != nil {
				return err
			}
			parent.Children = append(parent.Children, core.NewFile("", d.Name(), core.FileAttrs{
				Mime: mimeOf(d.Name()),
				Href: "/" + filepath.ToSlash(rel),
				Meta: map[string]any{"size": fi.Size()},
			}))
		}
		// 符号链接、设备文件等直接跳过
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk seed dir: %w", err)
	}
	if err := CheckShape(root); err != nil {
		return nil, err
	}
	return root, nil
}

// 系统 mime 表不一定存在，桌面常见类型在这里固定
var knownTypes = map[string]string{
	".txt": "text/plain",
	".md":  "text/markdown",
	".pdf": "application/pdf",
}

// mimeOf 按扩展名推断 MIME，去掉 charset 等参数
func mimeOf(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := knownTypes[ext]; ok {
		return t
	}
	t := mime.TypeByExtension(ext)
	if t == "" {
		return "application/octet-stream"
	}
	if mt, _, err := mime.ParseMediaType(t); err == nil {
		return mt
	}
	return t
}

// --- Fallback ---

// Fallback 返回内置的最小种子树
// 节点不带 ID，水合时由路径派生
func Fallback() *core.Node {
	root := core.NewFolder("", "/")
	desktop := core.NewFolder("", "Desktop")
	desktop.Children = []*core.Node{
		core.NewFile("", "README.txt", core.FileAttrs{Mime: "text/plain", Href: "/README.md"}),
	}
	work := core.NewFolder("", "Work")
	work.Children = []*core.Node{core.NewFolder("", "Projects")}
	root.Children = []*core.Node{desktop, work}
	return root
}

type fallbackSource struct{}

func (fallbackSource) Name() string { return "fallback" }

func (fallbackSource) Fetch(context.Context) (*core.Node, error) { return Fallback(), nil }

// FallbackSource 总是返回内置树
func FallbackSource() Source { return fallbackSource{} }
