package run

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/John-Robertt/picarrange/internal/app/planner"
	"github.com/John-Robertt/picarrange/internal/capture"
	"github.com/John-Robertt/picarrange/internal/checksum"
	"github.com/John-Robertt/picarrange/internal/domain"
	"github.com/John-Robertt/picarrange/internal/infra/fsx"
	"github.com/John-Robertt/picarrange/internal/metadata"
)

// 可替换：测试用来制造副本损坏或删除失败。
var (
	copyFunc     = fsx.CopyFileExclusive
	checksumFunc = checksum.File
	removeFunc   = fsx.RemoveFile
)

// arranger 执行单文件流程。要守住的不变量：只有在确认目标处存在逐字节一致的副本后
// 才删除源文件；已存在的目标文件永远不会被覆盖。
type arranger struct {
	root     string
	copyOnly bool
	resolver *capture.Resolver
}

func (a arranger) arrange(f domain.ImageFile) domain.FileResult {
	res := domain.FileResult{Name: f.Name, Src: f.AbsPath}

	resolved, err := a.resolver.Resolve(f.AbsPath, f.Ext)
	if err != nil {
		return failed(res, err)
	}
	res.Year = resolved.Date.Year
	res.Month = resolved.Date.Month
	res.DateSource = resolved.Date.Source
	if resolved.Warning != nil {
		res.Warning = resolved.Warning.Error()
	}

	plan := planner.Plan(a.root, f, resolved.Date)
	res.Dst = plan.Dst
	if _, err := planner.EnsureDestination(a.root, resolved.Date); err != nil {
		return failed(res, err)
	}

	return a.transfer(plan, res)
}

func (a arranger) transfer(plan domain.TransferPlan, res domain.FileResult) domain.FileResult {
	src, dst := plan.File.AbsPath, plan.Dst

	if fi, err := os.Lstat(dst); err == nil {
		return a.settleExisting(src, dst, fi, res)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return failed(res, err)
	}

	if err := copyFunc(src, dst); err != nil {
		if errors.Is(err, fs.ErrExist) {
			// Lstat 与独占创建之间，有别人创建了 dst
			fi, lerr := os.Lstat(dst)
			if lerr != nil {
				return failed(res, lerr)
			}
			return a.settleExisting(src, dst, fi, res)
		}
		return failed(res, err)
	}

	if a.copyOnly {
		res.Outcome = domain.OutcomeCopied
		res.Reason = "copied; source kept (copy-only)"
		return res
	}

	same, err := sameContent(src, dst)
	if err != nil {
		// 未校验的副本：删除副本，绝不动源文件
		_ = removeFunc(dst)
		return failed(res, fmt.Errorf("verify copy: %w", err))
	}
	if !same {
		res.Outcome = domain.OutcomeReverted
		res.Reason = "checksum mismatch after copy; copy removed, source kept"
		if err := removeFunc(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
			res.ErrorCode = errorCode(err)
			res.ErrorMsg = fmt.Sprintf("remove corrupt copy: %v", err)
		}
		return res
	}

	if err := removeFunc(src); err != nil {
		res = failed(res, fmt.Errorf("copy verified but source could not be removed: %w", err))
		res.Reason = "copy verified; source could not be removed, both kept"
		return res
	}
	res.Outcome = domain.OutcomeMoved
	res.Reason = "copied and verified; source removed"
	res.SourceRemoved = true
	return res
}

// settleExisting 处理目标路径已被占用的情况。
func (a arranger) settleExisting(src, dst string, dstInfo fs.FileInfo, res domain.FileResult) domain.FileResult {
	if !dstInfo.Mode().IsRegular() {
		want := "file"
		got := "dir"
		if !dstInfo.IsDir() {
			got = dstInfo.Mode().Type().String()
		}
		return failed(res, &fsx.PathTypeConflictError{Path: dst, Want: want, Got: got})
	}

	// 输入目录位于输出树内：文件本身就在目标位置。
	// 只比较路径，不比较 inode：硬链接副本仍按重复源文件处理。
	if samePath(src, dst) {
		res.Outcome = domain.OutcomeLeftInPlace
		res.Reason = "already at destination"
		return res
	}

	same, err := sameContent(src, dst)
	if err != nil {
		return failed(res, err)
	}

	res.Outcome = domain.OutcomeLeftInPlace
	switch {
	case !same:
		res.Collision = true
		res.Reason = "a different file with the same name exists at destination; both kept"
	case a.copyOnly:
		res.Reason = "identical file exists at destination; source kept (copy-only)"
	default:
		if err := removeFunc(src); err != nil {
			res = failed(res, fmt.Errorf("remove duplicate source: %w", err))
			res.Reason = "identical file exists at destination; source could not be removed"
			return res
		}
		res.SourceRemoved = true
		res.Reason = "identical file exists at destination; duplicate source removed"
	}
	return res
}

// samePath 在解析符号链接后比较两个路径是否指向同一目录项。
func samePath(a, b string) bool {
	ra, err := filepath.EvalSymlinks(a)
	if err != nil {
		return false
	}
	rb, err := filepath.EvalSymlinks(b)
	if err != nil {
		return false
	}
	return filepath.Clean(ra) == filepath.Clean(rb)
}

func sameContent(a, b string) (bool, error) {
	ca, err := checksumFunc(a)
	if err != nil {
		return false, err
	}
	cb, err := checksumFunc(b)
	if err != nil {
		return false, err
	}
	return ca == cb, nil
}

func failed(res domain.FileResult, err error) domain.FileResult {
	res.Outcome = domain.OutcomeFailed
	res.SourceRemoved = false
	res.ErrorCode = errorCode(err)
	res.ErrorMsg = err.Error()
	if res.Reason == "" {
		res.Reason = "not transferred"
	}
	return res
}

// errorCode 把错误映射为失败结果中稳定的 error_code。
func errorCode(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domain.ErrCodeCanceled
	case metadata.IsUnsupportedFormat(err):
		return domain.ErrCodeUnsupportedFormat
	case planner.IsDirError(err):
		return domain.ErrCodeDirCreateFailed
	case fsx.IsPathTypeConflict(err):
		return domain.ErrCodeTargetConflict
	}
	switch fsx.Classify(err) {
	case fsx.ClassNoSpace:
		return domain.ErrCodeDiskFull
	case fsx.ClassPermission:
		return domain.ErrCodePermissionDenied
	default:
		return domain.ErrCodeIOFailed
	}
}
