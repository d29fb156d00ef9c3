package run

import (
	"time"

	"github.com/John-Robertt/picarrange/internal/config"
	"github.com/John-Robertt/picarrange/internal/domain"
)

// Observer 把进度与单文件结果从引擎中解耦出来。
//
// 约束：
// - run 包只发事件，从不直接输出
// - 事件在调用方 goroutine 上按顺序到达
type Observer interface {
	// OnStart 最先调用，早于任何输入扫描。
	OnStart(runID string, eff config.EffectiveConfig)
	// OnScanned 在每个输入目录扫描完成后调用一次。
	OnScanned(root string, files int, dur time.Duration)
	// OnFileStart 在解析文件日期之前调用。
	OnFileStart(idx, total int, f domain.ImageFile)
	// OnFileDone 携带该文件的最终结果。
	OnFileDone(idx, total int, res domain.FileResult, dur time.Duration)
	// OnFinish 接收已 Finalize 的报告。
	OnFinish(rr domain.RunReport)
}

type nopObserver struct{}

func (nopObserver) OnStart(string, config.EffectiveConfig) {}
func (nopObserver) OnScanned(string, int, time.Duration) {}
func (nopObserver) OnFileStart(int, int, domain.ImageFile) {}
func (nopObserver) OnFileDone(int, int, domain.FileResult, time.Duration) {}
func (nopObserver) OnFinish(domain.RunReport) {}
