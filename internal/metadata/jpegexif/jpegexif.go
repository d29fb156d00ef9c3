package jpegexif

import (
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"

	"github.com/John-Robertt/picarrange/internal/metadata"
)

// exifTimeLayout 是 EXIF 中 DateTimeOriginal 的格式。值不带时区，按本地时间解析。
const exifTimeLayout = "2006:01:02 15:04:05"

var registerMakerNotes sync.Once

// Extractor 从 JPEG 的 APP1 EXIF 段读取 DateTimeOriginal。
type Extractor struct{}

var _ metadata.Extractor = Extractor{}

func (Extractor) Family() metadata.Family { return metadata.FamilyJPEG }

func (Extractor) Extensions() []string { return []string{".jpg", ".jpeg"} }

func (Extractor) CaptureTime(path string) (time.Time, bool, error) {
	// Canon/Nikon 的 maker note 与日期字段相邻；不注册解析器时解码器会把它们当作未知子 IFD。
	registerMakerNotes.Do(func() { exif.RegisterParsers(mknote.All...) })

	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, false, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		if errors.Is(err, io.EOF) {
			// 完全没有 APP1 段
			return time.Time{}, false, nil
		}
		if exif.IsCriticalError(err) || x == nil {
			return time.Time{}, false, parseError(path, err)
		}
		// 非致命：某个子 IFD（GPS、interop）加载失败，其余数据仍可用
	}

	tag, err := x.Get(exif.DateTimeOriginal)
	if err != nil {
		return time.Time{}, false, nil
	}
	raw, err := tag.StringVal()
	if err != nil {
		return time.Time{}, false, parseError(path, err)
	}
	raw = strings.TrimRight(strings.TrimSpace(raw), "\x00")
	if raw == "" {
		return time.Time{}, false, nil
	}
	t, err := time.ParseInLocation(exifTimeLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, false, parseError(path, err)
	}
	return t, true, nil
}

func parseError(path string, err error) error {
	return &metadata.ParseError{Path: path, Family: metadata.FamilyJPEG, Err: err}
}
