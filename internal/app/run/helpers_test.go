package run

import (
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/John-Robertt/picarrange/internal/capture"
	"github.com/John-Robertt/picarrange/internal/config"
	"github.com/John-Robertt/picarrange/internal/domain"
	"github.com/John-Robertt/picarrange/internal/testsupport"
)

// photo 返回带 DateTimeOriginal 的 JPEG；salt 追加在 EOI 之后，
// 让同一天的两张照片内容也能不同。
func photo(taken time.Time, salt string) []byte {
	return append(testsupport.JPEGWithDateTimeOriginal(taken), salt...)
}

type fixture struct {
	in  string
	out string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	base := t.TempDir()
	return fixture{in: filepath.Join(base, "in"), out: filepath.Join(base, "out")}
}

func (f fixture) eff(copyOnly bool) config.EffectiveConfig {
	return config.EffectiveConfig{
		Inputs:     []string{f.in},
		OutputRoot: f.out,
		CopyOnly:   copyOnly,
	}
}

func (f fixture) dst(year, month int, name string) string {
	return filepath.Join(f.out, strconv.Itoa(year), strconv.Itoa(month), name)
}

func resolver() *capture.Resolver {
	return capture.NewResolver(capture.DefaultRegistry())
}

func itemByName(t *testing.T, rr domain.RunReport, name string) domain.FileResult {
	t.Helper()
	for _, it := range rr.Items {
		if it.Name == name {
			return it
		}
	}
	t.Fatalf("no item named %q in %+v", name, rr.Items)
	return domain.FileResult{}
}
