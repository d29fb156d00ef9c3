package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/picarrange/internal/app/run"
	"github.com/John-Robertt/picarrange/internal/capture"
	"github.com/John-Robertt/picarrange/internal/config"
	"github.com/John-Robertt/picarrange/internal/domain"
	"github.com/John-Robertt/picarrange/internal/infra/fsx"
	"github.com/John-Robertt/picarrange/internal/infra/runlock"
	"github.com/John-Robertt/picarrange/internal/logging"
)

const (
	exitOK        = 0
	exitAttention = 1 // 存在失败、回滚或同名冲突的文件，或运行时致命错误
	exitUsage     = 2 // flag 或配置错误
)

// exitError 通过 cobra 传递进程退出码。err 为 nil 表示原因已经输出过。
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

type rootFlags struct {
	configPath string
	outputPath string
	copyOnly   bool
	verbose    bool
	logLevel   string
	logFormat  string
	reportPath string
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(stdout, stderr)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintln(stderr, "picarrange:", ee.err)
		}
		return ee.code
	}
	// cobra 的 flag 解析与参数错误
	fmt.Fprintln(stderr, "picarrange:", err)
	fmt.Fprintln(stderr, "Run 'picarrange --help' for usage.")
	return exitUsage
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	var f rootFlags

	cmd := &cobra.Command{
		Use:   "picarrange [flags] <dir>...",
		Short: "Arrange photos into <output>/<year>/<month> by capture date",
		Long: `picarrange scans the given directories for .jpg, .jpeg, .nef, .tif and .tiff
files and moves each one to <output>/<year>/<month>/<name>. The capture date comes
from embedded EXIF data, or from the earliest filesystem timestamp when there is
none. A source is deleted only after its copy is verified by checksum; files whose
name is already taken by different content are left in place and reported.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return arrange(cmd, args, f, stdout, stderr)
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.outputPath, "output-path", "o", "", "destination root (default: directory of the executable)")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "log every file and print a summary table")
	fl.BoolVarP(&f.copyOnly, "copy-only", "c", false, "never delete source files")
	fl.StringVar(&f.configPath, "config", "", "TOML config file (default: ./"+config.FileName+" if present)")
	fl.StringVar(&f.logLevel, "log-level", config.DefaultLogLevel, "debug, info, warn or error")
	fl.StringVar(&f.logFormat, "log-format", config.DefaultLogFormat, "console, json or auto")
	fl.StringVar(&f.reportPath, "report", "", "write the JSON run report to this path")

	return cmd
}

func arrange(cmd *cobra.Command, args []string, f rootFlags, stdout, stderr io.Writer) error {
	cwd, err := os.Getwd()
	if err != nil {
		return &exitError{code: exitAttention, err: fmt.Errorf("read working directory: %w", err)}
	}

	changed := cmd.Flags().Changed
	eff, err := config.LoadEffective(cwd, config.CLIArgs{
		Inputs:        args,
		ConfigPath:    f.configPath,
		ConfigSet:     changed("config"),
		OutputPath:    f.outputPath,
		OutputPathSet: changed("output-path"),
		CopyOnly:      f.copyOnly,
		CopyOnlySet:   changed("copy-only"),
		Verbose:       f.verbose,
		VerboseSet:    changed("verbose"),
		LogLevel:      f.logLevel,
		LogLevelSet:   changed("log-level"),
		LogFormat:     f.logFormat,
		LogFormatSet:  changed("log-format"),
		ReportPath:    f.reportPath,
		ReportPathSet: changed("report"),
		ExeDir:        executableDir(),
	})
	if err != nil {
		return &exitError{code: exitUsage, err: err}
	}

	logger, err := logging.New(logging.Options{Level: eff.LogLevel, Format: eff.LogFormat, Writer: stderr})
	if err != nil {
		return &exitError{code: exitUsage, err: err}
	}

	// 输出根目录无法创建或加锁是唯一的致命错误。
	if err := os.MkdirAll(eff.OutputRoot, 0o755); err != nil {
		logger.Error("output root is not usable", "output_root", eff.OutputRoot, "error", err)
		return &exitError{code: exitAttention}
	}
	lock, err := runlock.Acquire(eff.OutputRoot)
	if err != nil {
		logger.Error("cannot lock output root", "output_root", eff.OutputRoot, "error", err)
		return &exitError{code: exitAttention}
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("release output lock", "path", lock.Path(), "error", err)
		}
	}()

	obs := newLogObserver(logger, eff.Verbose)
	rr := run.ExecuteWithObserver(cmd.Context(), eff, capture.NewResolver(capture.DefaultRegistry()), obs)

	code := exitOK
	if eff.ReportPath != "" {
		if err := writeReportFile(eff.ReportPath, rr); err != nil {
			logger.Error("write report", "path", eff.ReportPath, "error", err)
			code = exitAttention
		}
	}
	if eff.Verbose {
		fmt.Fprintln(stdout, renderSummary(rr))
	}
	if !rr.OK() {
		code = exitAttention
	}
	if code != exitOK {
		return &exitError{code: code}
	}
	return nil
}

func writeReportFile(path string, rr domain.RunReport) error {
	b, err := json.MarshalIndent(rr, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return fsx.WriteFileAtomicReplace(filepath.Dir(path), filepath.Base(path), b)
}

// executableDir 是默认输出根目录。会解析符号链接：链接出去的二进制仍整理到真实目录。
func executableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}
