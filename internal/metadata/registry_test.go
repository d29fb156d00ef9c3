package metadata

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"
)

type stubExtractor struct {
	family Family
	exts   []string
}

func (s stubExtractor) Family() Family { return s.family }
func (s stubExtractor) Extensions() []string { return s.exts }
func (s stubExtractor) CaptureTime(path string) (time.Time, bool, error) {
	return time.Time{}, false, nil
}

func TestRegistry_LookupCaseInsensitive(t *testing.T) {
	reg, err := NewRegistry(
		stubExtractor{family: FamilyJPEG, exts: []string{".jpg", ".jpeg"}},
		stubExtractor{family: FamilyTIFF, exts: []string{".tif", ".tiff", ".nef"}},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for ext, want := range map[string]Family{
		".JPG": FamilyJPEG, "jpeg": FamilyJPEG, "NEF": FamilyTIFF, ".Tiff": FamilyTIFF,
	} {
		x, ok := reg.Lookup(ext)
		if !ok {
			t.Fatalf("Lookup(%q) not found", ext)
		}
		if x.Family() != want {
			t.Fatalf("Lookup(%q) = %s, want %s", ext, x.Family(), want)
		}
	}
	if reg.Supports(".png") {
		t.Fatalf(".png must not be supported")
	}

	want := []string{".jpeg", ".jpg", ".nef", ".tif", ".tiff"}
	if got := reg.Extensions(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Extensions() = %v, want %v", got, want)
	}
}

func TestRegistry_DuplicateExtension(t *testing.T) {
	_, err := NewRegistry(
		stubExtractor{family: FamilyJPEG, exts: []string{".jpg"}},
		stubExtractor{family: FamilyTIFF, exts: []string{"JPG"}},
	)
	if err == nil {
		t.Fatalf("expected duplicate extension error")
	}
}

func TestRegistry_ZeroValue(t *testing.T) {
	var reg Registry
	if _, ok := reg.Lookup(".jpg"); ok {
		t.Fatalf("zero registry must not find anything")
	}
}

func TestErrorHelpers(t *testing.T) {
	pe := fmt.Errorf("wrap: %w", &ParseError{Path: "/a.jpg", Family: FamilyJPEG, Err: errors.New("bad ifd")})
	if !IsParseError(pe) {
		t.Fatalf("IsParseError should see through wrapping")
	}
	ue := &UnsupportedFormatError{Path: "/a.png", Ext: ".png"}
	if !IsUnsupportedFormat(ue) || IsParseError(ue) {
		t.Fatalf("error helpers disagree on %T", ue)
	}
	// 错误信息中包含路径
	if got := ue.Error(); got != `image "/a.png" has unsupported extension ".png"` {
		t.Fatalf("unexpected message %q", got)
	}
}
