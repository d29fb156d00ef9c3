package metadata

import (
	"fmt"
	"sort"
	"strings"
)

// Registry 是从规范化扩展名到 Extractor 的只读查找表。
// 新增格式只需向 NewRegistry 多传一个 Extractor。
type Registry struct {
	byExt map[string]Extractor
}

func NewRegistry(extractors ...Extractor) (Registry, error) {
	byExt := make(map[string]Extractor, 8)
	for _, x := range extractors {
		if x == nil {
			return Registry{}, fmt.Errorf("extractor must not be nil")
		}
		exts := x.Extensions()
		if len(exts) == 0 {
			return Registry{}, fmt.Errorf("extractor %q declares no extensions", x.Family())
		}
		for _, ext := range exts {
			ext = NormalizeExt(ext)
			if ext == "." {
				return Registry{}, fmt.Errorf("extractor %q declares an empty extension", x.Family())
			}
			if prev, ok := byExt[ext]; ok {
				return Registry{}, fmt.Errorf("extension %q registered twice (%s, %s)", ext, prev.Family(), x.Family())
			}
			byExt[ext] = x
		}
	}
	return Registry{byExt: byExt}, nil
}

// Lookup 接受 "JPG"、"jpg" 或 ".jpg"。
func (r Registry) Lookup(ext string) (Extractor, bool) {
	if r.byExt == nil {
		return nil, false
	}
	x, ok := r.byExt[NormalizeExt(ext)]
	return x, ok
}

func (r Registry) Supports(ext string) bool {
	_, ok := r.Lookup(ext)
	return ok
}

// Extensions 返回全部已注册扩展名（已排序）。
func (r Registry) Extensions() []string {
	out := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// NormalizeExt 把 ext 转为小写并保证以点开头。
func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
