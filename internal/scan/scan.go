package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/John-Robertt/picarrange/internal/domain"
	"github.com/John-Robertt/picarrange/internal/metadata"
)

// NotDirError 表示输入路径存在但不是目录。
type NotDirError struct {
	Path string
}

func (e *NotDirError) Error() string {
	return fmt.Sprintf("input %q is not a directory", e.Path)
}

// ScanImages 递归遍历 root，返回扩展名已在 reg 中注册的全部普通文件，按相对 root 的路径排序。
//
// excludeDirs 整棵跳过。绝对路径原样使用（输出根目录位于 root 内时就放在这里）；
// 相对路径相对 root。包含 root 本身的条目会被忽略。
// 只读取 stat 信息，不读文件内容；不跟随符号链接。
func ScanImages(root string, reg metadata.Registry, excludeDirs []string) ([]domain.ImageFile, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, &NotDirError{Path: root}
	}

	excluded := buildExcluded(root, excludeDirs)

	files := make([]domain.ImageFile, 0, 128)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if isExcluded(path, excluded) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		name := d.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if !reg.Supports(ext) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		files = append(files, domain.ImageFile{
			AbsPath: path,
			RelPath: rel,
			Root:    root,
			Dir:     filepath.Dir(path),
			Name:    name,
			Ext:     ext,
			Size:    info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

func buildExcluded(root string, excludeDirs []string) []string {
	excluded := make([]string, 0, len(excludeDirs))
	for _, x := range excludeDirs {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		if !filepath.IsAbs(x) {
			x = filepath.Join(root, x)
		}
		x = filepath.Clean(x)
		// 覆盖 root 本身的条目（输入位于输出树内）不排除任何内容
		if isUnder(root, x) {
			continue
		}
		excluded = append(excluded, x)
	}
	sort.Strings(excluded)
	return excluded
}

func isExcluded(path string, excluded []string) bool {
	path = filepath.Clean(path)
	for _, base := range excluded {
		if isUnder(path, base) {
			return true
		}
	}
	return false
}

func isUnder(path, base string) bool {
	if path == base {
		return true
	}
	return strings.HasPrefix(path, strings.TrimSuffix(base, string(filepath.Separator))+string(filepath.Separator))
}
