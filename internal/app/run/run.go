package run

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/John-Robertt/picarrange/internal/capture"
	"github.com/John-Robertt/picarrange/internal/config"
	"github.com/John-Robertt/picarrange/internal/domain"
	"github.com/John-Robertt/picarrange/internal/scan"
)

// Execute 对所有输入目录执行一次整理并返回报告。
// 错误尽量降级为单文件失败；单个坏文件不会中断整批处理。
func Execute(ctx context.Context, eff config.EffectiveConfig, resolver *capture.Resolver) domain.RunReport {
	return ExecuteWithObserver(ctx, eff, resolver, nil)
}

// ExecuteWithObserver 与 Execute 相同，但把进度事件发给 obs。
func ExecuteWithObserver(ctx context.Context, eff config.EffectiveConfig, resolver *capture.Resolver, obs Observer) domain.RunReport {
	if obs == nil {
		obs = nopObserver{}
	}
	if resolver == nil {
		resolver = capture.NewResolver(capture.DefaultRegistry())
	}

	runID := uuid.NewString()
	obs.OnStart(runID, eff)

	rr := domain.RunReport{
		RunID:      runID,
		OutputRoot: eff.OutputRoot,
		CopyOnly:   eff.CopyOnly,
		Inputs:     append([]string(nil), eff.Inputs...),
		StartedAt:  time.Now().UTC(),
		Items:      make([]domain.FileResult, 0, 128),
	}

	// 输出树永远不会被当作输入重新扫描
	exclude := append(append([]string(nil), eff.ExcludeDirs...), eff.OutputRoot)

	var files []domain.ImageFile
	seen := make(map[string]struct{}, 128)
	for _, in := range eff.Inputs {
		started := time.Now()
		found, err := scan.ScanImages(in, resolver.Registry, exclude)
		if err != nil {
			rr.Items = append(rr.Items, inputFailed(in, err))
			obs.OnScanned(in, 0, time.Since(started))
			continue
		}
		obs.OnScanned(in, len(found), time.Since(started))

		// 输入目录有重叠时，同一文件只处理一次
		for _, f := range found {
			if _, dup := seen[f.AbsPath]; dup {
				continue
			}
			seen[f.AbsPath] = struct{}{}
			files = append(files, f)
		}
	}

	rr.Items = append(rr.Items, Arrange(ctx, eff.OutputRoot, eff.CopyOnly, resolver, files, obs)...)

	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	obs.OnFinish(rr)
	return rr
}

// Arrange 按顺序对 files 执行转移流程，每个文件对应一条结果。
// ctx 结束后，剩余文件不再处理，全部记为 canceled。
func Arrange(ctx context.Context, root string, copyOnly bool, resolver *capture.Resolver, files []domain.ImageFile, obs Observer) []domain.FileResult {
	if obs == nil {
		obs = nopObserver{}
	}
	a := arranger{root: filepath.Clean(root), copyOnly: copyOnly, resolver: resolver}

	out := make([]domain.FileResult, 0, len(files))
	total := len(files)
	for i, f := range files {
		idx := i + 1
		if err := ctx.Err(); err != nil {
			res := failed(domain.FileResult{Name: f.Name, Src: f.AbsPath}, err)
			res.Reason = "run canceled before this file"
			out = append(out, res)
			obs.OnFileDone(idx, total, res, 0)
			continue
		}

		obs.OnFileStart(idx, total, f)
		started := time.Now()
		res := a.arrange(f)
		out = append(out, res)
		obs.OnFileDone(idx, total, res, time.Since(started))
	}
	return out
}

func inputFailed(in string, err error) domain.FileResult {
	code := domain.ErrCodeInputInvalid
	var nd *scan.NotDirError
	if !errors.As(err, &nd) && !errors.Is(err, fs.ErrNotExist) {
		code = errorCode(err)
	}
	return domain.FileResult{
		Name:      filepath.Base(in),
		Src:       in,
		Outcome:   domain.OutcomeFailed,
		Reason:    "input directory could not be scanned",
		ErrorCode: code,
		ErrorMsg:  fmt.Sprintf("scan %q: %v", in, err),
	}
}
