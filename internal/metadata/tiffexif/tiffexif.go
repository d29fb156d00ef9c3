package tiffexif

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	exif "github.com/dsoprea/go-exif/v3"

	"github.com/John-Robertt/picarrange/internal/metadata"
)

const exifTimeLayout = "2006:01:02 15:04:05"

// Extractor 从 TIFF 结构的文件读取 DateTimeOriginal。
// Nikon NEF 原始文件本身就是 TIFF 容器，因此共用这一套解析。
type Extractor struct{}

var _ metadata.Extractor = Extractor{}

func (Extractor) Family() metadata.Family { return metadata.FamilyTIFF }

func (Extractor) Extensions() []string { return []string{".tif", ".tiff", ".nef"} }

func (Extractor) CaptureTime(path string) (time.Time, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, false, err
	}
	defer f.Close()

	raw, err := exif.SearchAndExtractExifWithReader(f)
	if err != nil {
		if errors.Is(err, exif.ErrNoExif) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, parseError(path, err)
	}

	entries, _, err := exif.GetFlatExifDataUniversalSearch(raw, nil, true)
	if err != nil {
		return time.Time{}, false, parseError(path, err)
	}

	value, found := findTag(entries, "DateTimeOriginal")
	if !found {
		return time.Time{}, false, nil
	}
	value = strings.TrimRight(strings.TrimSpace(value), "\x00")
	if value == "" {
		return time.Time{}, false, nil
	}
	t, err := time.ParseInLocation(exifTimeLayout, value, time.Local)
	if err != nil {
		return time.Time{}, false, parseError(path, err)
	}
	return t, true, nil
}

func findTag(entries []exif.ExifTag, name string) (string, bool) {
	for _, e := range entries {
		if e.TagName != name {
			continue
		}
		switch v := e.Value.(type) {
		case string:
			return v, true
		case []byte:
			return string(v), true
		default:
			return fmt.Sprint(v), true
		}
	}
	return "", false
}

func parseError(path string, err error) error {
	return &metadata.ParseError{Path: path, Family: metadata.FamilyTIFF, Err: err}
}
