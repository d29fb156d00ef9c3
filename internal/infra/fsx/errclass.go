package fsx

import (
	"errors"
	"io/fs"
)

// ErrorClass 是文件系统错误的粗粒度分类。
type ErrorClass string

const (
	ClassIO         ErrorClass = "io"
	ClassPermission ErrorClass = "permission"
	ClassNoSpace    ErrorClass = "no_space"
	ClassNotExist   ErrorClass = "not_exist"
)

// Classify 按底层 errno 对 err 分类。
func Classify(err error) ErrorClass {
	switch {
	case err == nil:
		return ""
	case isNoSpace(err):
		return ClassNoSpace
	case errors.Is(err, fs.ErrPermission) || isReadOnly(err):
		return ClassPermission
	case errors.Is(err, fs.ErrNotExist):
		return ClassNotExist
	default:
		return ClassIO
	}
}
