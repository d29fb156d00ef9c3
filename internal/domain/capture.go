package domain

import (
	"fmt"
	"strconv"
	"time"
)

// DateSource 记录 CaptureDate 的来源。
type DateSource string

const (
	DateFromMetadata   DateSource = "metadata"
	DateFromFilesystem DateSource = "filesystem"
)

// CaptureDate 是照片所属的 (year, month) 分桶，日与时刻被丢弃。
//
// 只有 NewCaptureDate / CaptureDateOf 能构造合法值：Year > 0 且 Month 在 [1,12]。
type CaptureDate struct {
	Year   int
	Month  int
	Source DateSource
}

func NewCaptureDate(year, month int, src DateSource) (CaptureDate, error) {
	if year <= 0 {
		return CaptureDate{}, fmt.Errorf("capture year must be positive, got %d", year)
	}
	if month < 1 || month > 12 {
		return CaptureDate{}, fmt.Errorf("capture month must be within 1..12, got %d", month)
	}
	return CaptureDate{Year: year, Month: month, Source: src}, nil
}

// CaptureDateOf 按 t 自身的时区取年和月。
func CaptureDateOf(t time.Time, src DateSource) (CaptureDate, error) {
	return NewCaptureDate(t.Year(), int(t.Month()), src)
}

// YearDir 是年份目录名（"2010"），不补零。
func (d CaptureDate) YearDir() string { return strconv.Itoa(d.Year) }

// MonthDir 是月份目录名（"3"，不是 "03"）。
func (d CaptureDate) MonthDir() string { return strconv.Itoa(d.Month) }

func (d CaptureDate) String() string {
	return d.YearDir() + "/" + d.MonthDir()
}
