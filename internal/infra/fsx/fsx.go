package fsx

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
)

// 可替换：测试用来注入 rename 与复制故障。
var (
	renameFunc = os.Rename
	copyBuffer = io.Copy
)

// PathTypeConflictError 表示路径存在但类型不符，例如期望文件却是目录。
// 调用方映射为 error_code=target_conflict。
type PathTypeConflictError struct {
	Path string
	Want string
	Got  string
}

func (e *PathTypeConflictError) Error() string {
	return fmt.Sprintf("path type conflict at %q: want %s, got %s", e.Path, e.Want, e.Got)
}

func IsPathTypeConflict(err error) bool {
	var e *PathTypeConflictError
	return errors.As(err, &e)
}

// EnsureDir 确保 parent/name 是目录并返回其路径。
//
// 目录已存在视为成功，因此并发创建同一路径的调用方都会成功。
// 已存在的非目录返回 *PathTypeConflictError。不删除、不重命名任何东西。
func EnsureDir(parent, name string) (string, error) {
	p := filepath.Join(parent, name)
	err := os.Mkdir(p, 0o755)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, fs.ErrExist) {
		return "", err
	}
	fi, statErr := os.Stat(p)
	if statErr != nil {
		return "", statErr
	}
	if !fi.IsDir() {
		return "", &PathTypeConflictError{Path: p, Want: "dir", Got: describe(fi)}
	}
	return p, nil
}

// CopyFileExclusive 把 src 复制为新文件 dst。
//
// dst 以 O_EXCL 创建：dst 处已有任何东西时返回匹配 fs.ErrExist 的错误，dst 保持原样。
// 创建之后的任何失败都会删除写了一半的 dst。权限位与修改时间随之复制，后者尽力而为。
func CopyFileExclusive(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return err
	}
	if !fi.Mode().IsRegular() {
		return &PathTypeConflictError{Path: src, Want: "regular file", Got: describe(fi)}
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fi.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = out.Close()
			_ = os.Remove(dst)
		}
	}()

	if _, err = copyBuffer(out, in); err != nil {
		return err
	}
	if err = out.Sync(); err != nil {
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}

	_ = os.Chtimes(dst, fi.ModTime(), fi.ModTime())
	return nil
}

// RemoveFile 删除普通文件。path 是目录时视为类型冲突，绝不删除。
func RemoveFile(path string) error {
	fi, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return &PathTypeConflictError{Path: path, Want: "file", Got: "dir"}
	}
	return os.Remove(path)
}

// WriteFileAtomicReplace 先写同目录临时文件再 rename，原子替换 dir/name。
func WriteFileAtomicReplace(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	dst := filepath.Join(dir, name)
	if fi, err := os.Lstat(dst); err == nil && fi.IsDir() {
		return &PathTypeConflictError{Path: dst, Want: "file", Got: "dir"}
	}

	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := renameFunc(tmpName, dst); err != nil {
		return err
	}

	_ = syncDirBestEffort(dir)
	return nil
}

func describe(fi fs.FileInfo) string {
	switch {
	case fi.IsDir():
		return "dir"
	case fi.Mode().IsRegular():
		return "file"
	default:
		return fi.Mode().Type().String()
	}
}

func syncDirBestEffort(dir string) error {
	// windows 上目录 fsync 语义不可靠
	if runtime.GOOS == "windows" {
		return nil
	}
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
