// Package capture 决定一张照片归属的 (year, month)。
package capture

import (
	"fmt"
	"time"

	"github.com/djherbis/times"

	"github.com/John-Robertt/picarrange/internal/domain"
	"github.com/John-Robertt/picarrange/internal/metadata"
	"github.com/John-Robertt/picarrange/internal/metadata/jpegexif"
	"github.com/John-Robertt/picarrange/internal/metadata/tiffexif"
)

// DefaultRegistry 装配两个内置格式族。
func DefaultRegistry() metadata.Registry {
	reg, err := metadata.NewRegistry(jpegexif.Extractor{}, tiffexif.Extractor{})
	if err != nil {
		// 静态表；这里失败属于编程错误
		panic(err)
	}
	return reg
}

// Resolution 是 Resolve 成功时的结果。
type Resolution struct {
	Date  domain.CaptureDate
	Taken time.Time

	// Warning 保存被恢复的 *metadata.ParseError：内嵌元数据损坏，日期改取自文件系统。
	Warning error
}

type Resolver struct {
	Registry metadata.Registry

	// StatTimes 默认为 times.Stat。测试替换它来固定 atime/ctime。
	StatTimes func(path string) (times.Timespec, error)
}

func NewResolver(reg metadata.Registry) *Resolver {
	return &Resolver{Registry: reg, StatTimes: times.Stat}
}

// Resolve 返回 path 处文件的拍摄日期。只要内嵌元数据带时间就以它为准（不判断是否合理）；
// 否则取访问时间、状态变更时间、修改时间中最早的一个。
func (r *Resolver) Resolve(path, ext string) (Resolution, error) {
	x, ok := r.Registry.Lookup(ext)
	if !ok {
		return Resolution{}, &metadata.UnsupportedFormatError{Path: path, Ext: metadata.NormalizeExt(ext)}
	}

	taken, found, err := x.CaptureTime(path)
	var warning error
	if err != nil {
		if !metadata.IsParseError(err) {
			return Resolution{}, fmt.Errorf("read metadata of %q: %w", path, err)
		}
		warning = err
		found = false
	}

	src := domain.DateFromMetadata
	if !found {
		taken, err = r.earliestFileTime(path)
		if err != nil {
			return Resolution{}, err
		}
		src = domain.DateFromFilesystem
	}

	date, err := domain.CaptureDateOf(taken.Local(), src)
	if err != nil {
		return Resolution{}, fmt.Errorf("capture date of %q: %w", path, err)
	}
	return Resolution{Date: date, Taken: taken, Warning: warning}, nil
}

func (r *Resolver) earliestFileTime(path string) (time.Time, error) {
	stat := r.StatTimes
	if stat == nil {
		stat = times.Stat
	}
	ts, err := stat(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("stat %q: %w", path, err)
	}
	return Earliest(ts), nil
}

// Earliest 取 atime、ctime（平台支持时）与 mtime 中最早的一个。
func Earliest(ts times.Timespec) time.Time {
	earliest := ts.ModTime()
	if at := ts.AccessTime(); at.Before(earliest) {
		earliest = at
	}
	if ts.HasChangeTime() {
		if ct := ts.ChangeTime(); ct.Before(earliest) {
			earliest = ct
		}
	}
	return earliest
}
