package run

import (
	"context"
	"os"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/John-Robertt/picarrange/internal/config"
	"github.com/John-Robertt/picarrange/internal/domain"
	"github.com/John-Robertt/picarrange/internal/testsupport"
)

type recordObserver struct {
	mu sync.Mutex

	runID    string
	events   []string
	scanned  map[string]int
	finished domain.RunReport
}

func (o *recordObserver) OnStart(runID string, eff config.EffectiveConfig) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.runID = runID
	o.events = append(o.events, "start")
}

func (o *recordObserver) OnScanned(root string, files int, dur time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.scanned == nil {
		o.scanned = map[string]int{}
	}
	o.scanned[root] = files
	o.events = append(o.events, "scanned")
}

func (o *recordObserver) OnFileStart(idx, total int, f domain.ImageFile) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, "file:"+f.Name)
}

func (o *recordObserver) OnFileDone(idx, total int, res domain.FileResult, dur time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, "done:"+res.Name+":"+res.Outcome)
}

func (o *recordObserver) OnFinish(rr domain.RunReport) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = rr
	o.events = append(o.events, "finish")
}

func TestExecuteWithObserver_EmitsEventsInOrder(t *testing.T) {
	fx := newFixture(t)
	testsupport.WriteFile(t, fx.in, "a.jpg", photo(testsupport.LocalDate(2010, time.March, 15), ""))
	testsupport.WriteFile(t, fx.in, "b.jpg", photo(testsupport.LocalDate(2010, time.March, 15), "b"))
	_ = os.MkdirAll(fx.out, 0o755)

	obs := &recordObserver{}
	rr := ExecuteWithObserver(context.Background(), fx.eff(true), resolver(), obs)

	want := []string{
		"start", "scanned",
		"file:a.jpg", "done:a.jpg:copied",
		"file:b.jpg", "done:b.jpg:copied",
		"finish",
	}
	if !reflect.DeepEqual(obs.events, want) {
		t.Fatalf("events = %v, want %v", obs.events, want)
	}
	if obs.runID == "" || obs.runID != rr.RunID {
		t.Fatalf("OnStart run id %q does not match report %q", obs.runID, rr.RunID)
	}
	if obs.scanned[fx.in] != 2 {
		t.Fatalf("scanned = %v", obs.scanned)
	}
	if obs.finished.Summary.Copied != 2 {
		t.Fatalf("OnFinish must receive the finalized report: %+v", obs.finished.Summary)
	}
}

func TestExecute_NilObserverAndResolver(t *testing.T) {
	fx := newFixture(t)
	testsupport.WriteFile(t, fx.in, "a.jpg", photo(testsupport.LocalDate(2010, time.March, 15), ""))
	_ = os.MkdirAll(fx.out, 0o755)

	rr := ExecuteWithObserver(context.Background(), fx.eff(false), nil, nil)
	if rr.Summary.Moved != 1 {
		t.Fatalf("unexpected summary: %+v", rr.Summary)
	}
}
