package planner

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/John-Robertt/picarrange/internal/domain"
	"github.com/John-Robertt/picarrange/internal/infra/fsx"
)

// Plan 推导 file 在 root 下的目标路径：<root>/<year>/<month>/<name>，年月不补零。
// 纯计算，不触碰文件系统。
func Plan(root string, file domain.ImageFile, date domain.CaptureDate) domain.TransferPlan {
	dstDir := DestDir(root, date)
	return domain.TransferPlan{
		File:   file,
		Date:   date,
		DstDir: dstDir,
		Dst:    filepath.Join(dstDir, file.Name),
	}
}

func DestDir(root string, date domain.CaptureDate) string {
	return filepath.Join(filepath.Clean(root), date.YearDir(), date.MonthDir())
}

// DirError 表示创建年或月目录失败。
type DirError struct {
	Path string
	Err  error
}

func (e *DirError) Error() string {
	return fmt.Sprintf("create destination directory %q: %v", e.Path, e.Err)
}

func (e *DirError) Unwrap() error { return e.Err }

func IsDirError(err error) bool {
	var e *DirError
	return errors.As(err, &e)
}

// EnsureDestination 依次确保 <root>/<year> 与 <root>/<year>/<month> 存在，返回月目录。
// 已存在的目录直接复用。root 本身必须已经存在。
func EnsureDestination(root string, date domain.CaptureDate) (string, error) {
	root = filepath.Clean(root)
	yearDir, err := fsx.EnsureDir(root, date.YearDir())
	if err != nil {
		return "", &DirError{Path: filepath.Join(root, date.YearDir()), Err: err}
	}
	monthDir, err := fsx.EnsureDir(yearDir, date.MonthDir())
	if err != nil {
		return "", &DirError{Path: filepath.Join(yearDir, date.MonthDir()), Err: err}
	}
	return monthDir, nil
}
