package metadata

import (
	"errors"
	"fmt"
	"time"
)

// Family 把内嵌元数据共用同一解析方式的扩展名归为一组。
type Family string

const (
	FamilyJPEG Family = "jpeg" // .jpg .jpeg
	FamilyTIFF Family = "tiff" // .tif .tiff .nef
)

// Extractor 把元数据解码器隔离在核心之外；日期解析只依赖这个接口。
//
// CaptureTime 约定：
// - (t, true, nil)：文件带有拍摄时间
// - (zero, false, nil)：元数据可读但没有时间，或根本没有元数据
// - (zero, false, *ParseError)：存在元数据但格式损坏
// - 其它错误：文件本身无法打开或读取
type Extractor interface {
	Family() Family
	Extensions() []string // 小写，带前导点
	CaptureTime(path string) (t time.Time, ok bool, err error)
}

// ParseError 表示内嵌元数据损坏。调用方回退到文件系统时间继续处理。
type ParseError struct {
	Path   string
	Family Family
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s metadata in %q is malformed: %v", e.Family, e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func IsParseError(err error) bool {
	var e *ParseError
	return errors.As(err, &e)
}

// UnsupportedFormatError 表示扩展名没有注册 Extractor。
// 扫描阶段已过滤这类文件，走到这里说明调用方有 bug。
type UnsupportedFormatError struct {
	Path string
	Ext  string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("image %q has unsupported extension %q", e.Path, e.Ext)
}

func IsUnsupportedFormat(err error) bool {
	var e *UnsupportedFormatError
	return errors.As(err, &e)
}
