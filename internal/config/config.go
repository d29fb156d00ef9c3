package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	// ErrCodeNotFound：--config 指定的文件不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid：文件不可读、无法解析，或取值越界。
	ErrCodeInvalid = "config_invalid"
)

const (
	// FileName：未给出 --config 时在工作目录查找的文件名。
	FileName = "picarrange.toml"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "auto"
)

// CLIArgs 记录命令行取值以及每个 flag 是否被显式给出，
// 这样 --copy-only=false 才能覆盖配置文件里的 copy_only = true。
type CLIArgs struct {
	Inputs []string

	ConfigPath string
	ConfigSet  bool

	OutputPath    string
	OutputPathSet bool

	CopyOnly    bool
	CopyOnlySet bool

	Verbose    bool
	VerboseSet bool

	LogLevel    string
	LogLevelSet bool

	LogFormat    string
	LogFormatSet bool

	ReportPath    string
	ReportPathSet bool

	// ExeDir 是当前可执行文件所在目录，作为输出根目录的最后兜底。
	ExeDir string
}

// FileConfig 对应 picarrange.toml 的结构。
type FileConfig struct {
	OutputPath  string    `toml:"output_path"`
	CopyOnly    *bool     `toml:"copy_only"`
	Verbose     *bool     `toml:"verbose"`
	ExcludeDirs []string  `toml:"exclude_dirs"`
	Report      string    `toml:"report"`
	Log         LogConfig `toml:"log"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// EffectiveConfig 是合并并规范化后的配置；使用方不再补默认值。
type EffectiveConfig struct {
	Inputs     []string // 绝对路径、已规范化，保持命令行顺序
	OutputRoot string   // 绝对路径、已规范化

	CopyOnly bool
	Verbose  bool

	ExcludeDirs []string
	LogLevel    string
	LogFormat   string
	ReportPath  string // 为空：不写报告文件

	// ConfigFile 是实际读取的配置文件；未读取任何文件时为空。
	ConfigFile string
}

// Error 是带错误码的配置错误。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s: config file %q does not exist", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Path == "" {
			return fmt.Sprintf("%s: %v", e.Code, e.Err)
		}
		if e.Err != nil {
			return fmt.Sprintf("%s: config file %q: %v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s: config file %q", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 提取错误码；err 不是 *Error 时返回 ""。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 查找并读取配置文件，再与命令行合并。
//
// 查找规则：
// 1) 给出 --config：该文件必须存在
// 2) 否则若存在 <cwd>/picarrange.toml 则读取
//
// 每个字段的优先级：显式 flag > 配置文件 > 默认值。命令行中的相对路径相对 cwd 解析；
// 配置文件中的相对路径相对配置文件所在目录解析。
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Err: err}
	}

	cfgPath := filepath.Join(cwdAbs, FileName)
	if cli.ConfigSet {
		cfgPath = absCleanFrom(cwdAbs, cli.ConfigPath)
	}

	fc, exists, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if !exists {
		if cli.ConfigSet {
			return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
		}
		cfgPath = ""
	}

	return merge(cwdAbs, cli, fc, cfgPath)
}

func merge(cwdAbs string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	fileBase := cwdAbs
	if cfgPath != "" {
		fileBase = filepath.Dir(cfgPath)
	}
	invalid := func(err error) error {
		return &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	inputs := make([]string, 0, len(cli.Inputs))
	for _, in := range cli.Inputs {
		if strings.TrimSpace(in) == "" {
			return EffectiveConfig{}, invalid(fmt.Errorf("input directory must not be empty"))
		}
		inputs = append(inputs, absCleanFrom(cwdAbs, in))
	}
	if len(inputs) == 0 {
		return EffectiveConfig{}, invalid(fmt.Errorf("at least one input directory is required"))
	}

	// 输出根目录：flag > 配置文件 > 可执行文件目录 > cwd
	var outputRoot string
	switch {
	case cli.OutputPathSet:
		if strings.TrimSpace(cli.OutputPath) == "" {
			return EffectiveConfig{}, invalid(fmt.Errorf("--output-path must not be empty"))
		}
		outputRoot = absCleanFrom(cwdAbs, cli.OutputPath)
	case strings.TrimSpace(fc.OutputPath) != "":
		outputRoot = absCleanFrom(fileBase, fc.OutputPath)
	case strings.TrimSpace(cli.ExeDir) != "":
		outputRoot = absCleanFrom(cwdAbs, cli.ExeDir)
	default:
		outputRoot = cwdAbs
	}

	copyOnly := pickBool(cli.CopyOnlySet, cli.CopyOnly, fc.CopyOnly)
	verbose := pickBool(cli.VerboseSet, cli.Verbose, fc.Verbose)

	logLevel := pickString(cli.LogLevelSet, cli.LogLevel, fc.Log.Level, DefaultLogLevel)
	if err := validateLogLevel(logLevel); err != nil {
		return EffectiveConfig{}, invalid(err)
	}
	logFormat := pickString(cli.LogFormatSet, cli.LogFormat, fc.Log.Format, DefaultLogFormat)
	if err := validateLogFormat(logFormat); err != nil {
		return EffectiveConfig{}, invalid(err)
	}

	var report string
	switch {
	case cli.ReportPathSet && strings.TrimSpace(cli.ReportPath) != "":
		report = absCleanFrom(cwdAbs, cli.ReportPath)
	case !cli.ReportPathSet && strings.TrimSpace(fc.Report) != "":
		report = absCleanFrom(fileBase, fc.Report)
	}

	exclude := make([]string, 0, len(fc.ExcludeDirs))
	for _, x := range fc.ExcludeDirs {
		if x = strings.TrimSpace(x); x != "" {
			exclude = append(exclude, x)
		}
	}

	return EffectiveConfig{
		Inputs:      inputs,
		OutputRoot:  outputRoot,
		CopyOnly:    copyOnly,
		Verbose:     verbose,
		ExcludeDirs: exclude,
		LogLevel:    logLevel,
		LogFormat:   logFormat,
		ReportPath:  report,
		ConfigFile:  cfgPath,
	}, nil
}

func pickBool(set, cliVal bool, fileVal *bool) bool {
	if set {
		return cliVal
	}
	if fileVal != nil {
		return *fileVal
	}
	return false
}

func pickString(set bool, cliVal, fileVal, def string) string {
	if set {
		return strings.ToLower(strings.TrimSpace(cliVal))
	}
	if v := strings.TrimSpace(fileVal); v != "" {
		return strings.ToLower(v)
	}
	return def
}

func validateLogLevel(v string) error {
	switch v {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("log level must be one of debug, info, warn, error; got %q", v)
	}
}

func validateLogFormat(v string) error {
	switch v {
	case "console", "json", "auto":
		return nil
	default:
		return fmt.Errorf("log format must be console, json or auto; got %q", v)
	}
}

// absCleanFrom 把 p 规范为绝对路径；相对路径拼接到 base 上。
func absCleanFrom(base, p string) string {
	p = filepath.Clean(strings.TrimSpace(p))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 解码 TOML 文件。文件不存在不算错误；出现未知 key 则报错。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return FileConfig{}, true, err
	}
	if fi.IsDir() {
		return FileConfig{}, true, fmt.Errorf("is a directory")
	}

	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
