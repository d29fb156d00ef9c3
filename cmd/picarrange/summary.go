package main

import (
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/John-Robertt/picarrange/internal/domain"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// renderSummary 输出各结果的计数；如有需要人工处理的文件，再附一张明细表。
func renderSummary(rr domain.RunReport) string {
	s := rr.Summary
	counts := renderTable(
		[]string{"Outcome", "Files"},
		[][]string{
			{"moved", itoa(s.Moved)},
			{"copied", itoa(s.Copied)},
			{"left in place", itoa(s.LeftInPlace)},
			{"  duplicates removed", itoa(s.DuplicatesRemoved)},
			{"  name collisions", itoa(s.Collisions)},
			{"reverted", itoa(s.Reverted)},
			{"failed", itoa(s.Failed)},
			{"total", itoa(s.Total)},
		},
		[]columnAlignment{alignLeft, alignRight},
	)

	var rows [][]string
	for _, it := range rr.Items {
		if !it.NeedsAttention() {
			continue
		}
		detail := it.Reason
		if it.ErrorMsg != "" {
			detail = it.ErrorMsg
		}
		rows = append(rows, []string{it.Src, it.Outcome, it.ErrorCode, truncate(detail, 80)})
	}
	if len(rows) == 0 {
		return counts
	}

	attention := renderTable(
		[]string{"Source", "Outcome", "Code", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
	)
	return strings.Join([]string{counts, "Needs attention:", attention}, "\n")
}

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func itoa(n int) string { return strconv.Itoa(n) }
