package domain

import (
	"encoding/json"
	"time"
)

// 单个文件的转移结果。每个输入文件恰好一个。
const (
	OutcomeMoved       = "moved"
	OutcomeCopied      = "copied"
	OutcomeLeftInPlace = "left_in_place"
	OutcomeReverted    = "reverted"
	OutcomeFailed      = "failed"
)

const (
	ErrCodeUnsupportedFormat = "unsupported_format"
	ErrCodeIOFailed          = "io_failed"
	ErrCodePermissionDenied  = "permission_denied"
	ErrCodeDiskFull          = "disk_full"
	ErrCodeDirCreateFailed   = "dir_create_failed"
	ErrCodeTargetConflict    = "target_conflict"
	ErrCodeInputInvalid      = "input_invalid"
	ErrCodeCanceled          = "canceled"
)

// RunReport 是稳定的对外结构（报告文件 / JSON 输出）。
type RunReport struct {
	RunID      string   `json:"run_id"`
	OutputRoot string   `json:"output_root"`
	CopyOnly   bool     `json:"copy_only"`
	Inputs     []string `json:"inputs"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary ReportSummary `json:"summary"`
	Items   []FileResult  `json:"items"`
}

type ReportSummary struct {
	Total             int `json:"total"`
	Moved             int `json:"moved"`
	Copied            int `json:"copied"`
	LeftInPlace       int `json:"left_in_place"`
	Reverted          int `json:"reverted"`
	Failed            int `json:"failed"`
	Collisions        int `json:"collisions"`
	DuplicatesRemoved int `json:"duplicates_removed"`
}

// FileResult 是单个文件的转移结果。由引擎一次性构造，之后不再修改。
type FileResult struct {
	Name string `json:"name"`
	Src  string `json:"src"`
	Dst  string `json:"dst"`

	Year       int        `json:"year,omitempty"`
	Month      int        `json:"month,omitempty"`
	DateSource DateSource `json:"date_source,omitempty"`

	Outcome       string `json:"outcome"`
	Reason        string `json:"reason"`
	SourceRemoved bool   `json:"source_removed"`
	Collision     bool   `json:"collision"`

	ErrorCode string `json:"error_code,omitempty"`
	ErrorMsg  string `json:"error_msg,omitempty"`
	Warning   string `json:"warning,omitempty"`
}

// NeedsAttention 判断结果是否需要人工处理：出错、校验失败，或同名但内容不同。
func (r FileResult) NeedsAttention() bool {
	return r.Outcome == OutcomeFailed || r.Outcome == OutcomeReverted || r.Collision
}

// Finalize：
// 1) 把时间统一为 UTC（JSON 中为带 Z 后缀的 RFC3339）
// 2) 由 items 推导 summary
//
// Items 保持输入顺序，即文件的处理顺序。
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()
	if r.Inputs == nil {
		r.Inputs = []string{}
	}
	if r.Items == nil {
		r.Items = []FileResult{}
	}

	var s ReportSummary
	for _, it := range r.Items {
		s.Total++
		switch it.Outcome {
		case OutcomeMoved:
			s.Moved++
		case OutcomeCopied:
			s.Copied++
		case OutcomeLeftInPlace:
			s.LeftInPlace++
		case OutcomeReverted:
			s.Reverted++
		case OutcomeFailed:
			s.Failed++
		}
		if it.Collision {
			s.Collisions++
		}
		if it.Outcome == OutcomeLeftInPlace && it.SourceRemoved {
			s.DuplicatesRemoved++
		}
	}
	r.Summary = s
}

// OK 表示本次运行没有需要人工处理的结果。
func (r RunReport) OK() bool {
	return r.Summary.Failed == 0 && r.Summary.Reverted == 0 && r.Summary.Collisions == 0
}

// MarshalJSON 只负责把输出结构固定在一处，实际交给 encoding/json。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	return json.Marshal(Alias(r))
}
