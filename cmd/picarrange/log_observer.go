package main

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/John-Robertt/picarrange/internal/app/run"
	"github.com/John-Robertt/picarrange/internal/config"
	"github.com/John-Robertt/picarrange/internal/domain"
)

var _ run.Observer = (*logObserver)(nil)

// logObserver 把引擎事件转换为日志记录。
//
// verbose 模式下每个发现的文件、每个结果各记一条；否则干净的运行不输出任何内容，
// 只记录需要人工处理的结果。
type logObserver struct {
	mu      sync.Mutex
	log     *slog.Logger
	verbose bool
}

func newLogObserver(log *slog.Logger, verbose bool) *logObserver {
	return &logObserver{log: log, verbose: verbose}
}

func (o *logObserver) OnStart(runID string, eff config.EffectiveConfig) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.log = o.log.With("run_id", runID)
	if !o.verbose {
		return
	}
	o.log.Info("arrangement started",
		"inputs", eff.Inputs,
		"output_root", eff.OutputRoot,
		"copy_only", eff.CopyOnly,
		"config_file", eff.ConfigFile,
	)
}

func (o *logObserver) OnScanned(root string, files int, dur time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.verbose {
		o.log.Info("scanned input", "input", root, "files", files, "duration", formatShortDuration(dur))
	}
}

func (o *logObserver) OnFileStart(idx, total int, f domain.ImageFile) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.verbose {
		o.log.Info("discovered", "progress", progress(idx, total), "file", f.AbsPath)
	}
}

func (o *logObserver) OnFileDone(idx, total int, res domain.FileResult, dur time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()

	attrs := []any{
		"progress", progress(idx, total),
		"file", res.Src,
		"outcome", res.Outcome,
	}
	if res.Dst != "" {
		attrs = append(attrs, "dst", res.Dst)
	}
	if res.DateSource != "" {
		attrs = append(attrs, "date_source", string(res.DateSource))
	}

	if res.Warning != "" {
		o.log.Warn("embedded metadata unreadable, used filesystem time", "file", res.Src, "warning", truncate(res.Warning, 200))
	}

	switch {
	case res.Outcome == domain.OutcomeFailed:
		o.log.Error(res.Reason, append(attrs, "error_code", res.ErrorCode, "error", truncate(res.ErrorMsg, 300))...)
	case res.Outcome == domain.OutcomeReverted:
		o.log.Warn(res.Reason, attrs...)
	case res.Collision:
		o.log.Warn(res.Reason, attrs...)
	case o.verbose:
		o.log.Info(res.Reason, append(attrs, "source_removed", res.SourceRemoved, "duration", formatShortDuration(dur))...)
	}
}

func (o *logObserver) OnFinish(rr domain.RunReport) {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := rr.Summary
	attrs := []any{
		"total", s.Total, "moved", s.Moved, "copied", s.Copied,
		"left_in_place", s.LeftInPlace, "reverted", s.Reverted,
		"failed", s.Failed, "collisions", s.Collisions,
		"duration", formatShortDuration(rr.FinishedAt.Sub(rr.StartedAt)),
	}
	switch {
	case !rr.OK():
		o.log.Warn("arrangement finished with files needing attention", attrs...)
	case o.verbose:
		o.log.Info("arrangement finished", attrs...)
	}
}

func progress(idx, total int) string {
	return itoa(idx) + "/" + itoa(total)
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return d.Round(time.Millisecond).String()
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
