package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadEffective_DefaultsWithoutFile(t *testing.T) {
	cwd := t.TempDir()
	exe := t.TempDir()

	eff, err := LoadEffective(cwd, CLIArgs{Inputs: []string{"photos"}, ExeDir: exe})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eff.OutputRoot != exe {
		t.Fatalf("output root should default to the executable dir, got %q", eff.OutputRoot)
	}
	if want := filepath.Join(cwd, "photos"); len(eff.Inputs) != 1 || eff.Inputs[0] != want {
		t.Fatalf("inputs = %v, want [%s]", eff.Inputs, want)
	}
	if eff.CopyOnly || eff.Verbose || eff.ReportPath != "" || eff.ConfigFile != "" {
		t.Fatalf("unexpected non-default values: %+v", eff)
	}
	if eff.LogLevel != DefaultLogLevel || eff.LogFormat != DefaultLogFormat {
		t.Fatalf("unexpected log defaults: %q %q", eff.LogLevel, eff.LogFormat)
	}
}

func TestLoadEffective_FileValuesAndRelativePaths(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, FileName), `
output_path = "sorted"
copy_only = true
verbose = true
exclude_dirs = ["tmp", " "]
report = "reports/last.json"

[log]
level = "DEBUG"
format = "json"
`)

	eff, err := LoadEffective(cwd, CLIArgs{Inputs: []string{"in"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eff.OutputRoot != filepath.Join(cwd, "sorted") {
		t.Fatalf("output root = %q", eff.OutputRoot)
	}
	if !eff.CopyOnly || !eff.Verbose {
		t.Fatalf("file booleans not applied: %+v", eff)
	}
	if eff.LogLevel != "debug" || eff.LogFormat != "json" {
		t.Fatalf("log settings = %q %q", eff.LogLevel, eff.LogFormat)
	}
	if len(eff.ExcludeDirs) != 1 || eff.ExcludeDirs[0] != "tmp" {
		t.Fatalf("exclude dirs = %v", eff.ExcludeDirs)
	}
	if eff.ReportPath != filepath.Join(cwd, "reports", "last.json") {
		t.Fatalf("report = %q", eff.ReportPath)
	}
	if eff.ConfigFile != filepath.Join(cwd, FileName) {
		t.Fatalf("config file = %q", eff.ConfigFile)
	}
}

func TestLoadEffective_CLIOverridesFile(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, FileName), `
output_path = "/from/file"
copy_only = true
report = "r.json"
[log]
level = "warn"
`)

	eff, err := LoadEffective(cwd, CLIArgs{
		Inputs:        []string{"in"},
		OutputPath:    "out",
		OutputPathSet: true,
		CopyOnly:      false,
		CopyOnlySet:   true, // --copy-only=false
		LogLevel:      "error",
		LogLevelSet:   true,
		ReportPathSet: true, // --report="" 关闭配置文件中的报告
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eff.OutputRoot != filepath.Join(cwd, "out") {
		t.Fatalf("output root = %q", eff.OutputRoot)
	}
	if eff.CopyOnly {
		t.Fatalf("--copy-only=false must win over the file")
	}
	if eff.LogLevel != "error" {
		t.Fatalf("log level = %q", eff.LogLevel)
	}
	if eff.ReportPath != "" {
		t.Fatalf("report = %q, want none", eff.ReportPath)
	}
}

func TestLoadEffective_ExplicitConfigMissing(t *testing.T) {
	cwd := t.TempDir()

	_, err := LoadEffective(cwd, CLIArgs{Inputs: []string{"in"}, ConfigPath: "nope.toml", ConfigSet: true})
	if Code(err) != ErrCodeNotFound {
		t.Fatalf("want %q, got err=%v (code=%q)", ErrCodeNotFound, err, Code(err))
	}
}

func TestLoadEffective_ExplicitConfigRelativeToItsDir(t *testing.T) {
	cwd := t.TempDir()
	cfgDir := t.TempDir()
	writeFile(t, filepath.Join(cfgDir, "custom.toml"), `output_path = "library"`)

	eff, err := LoadEffective(cwd, CLIArgs{
		Inputs:     []string{"in"},
		ConfigPath: filepath.Join(cfgDir, "custom.toml"),
		ConfigSet:  true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if eff.OutputRoot != filepath.Join(cfgDir, "library") {
		t.Fatalf("output root = %q", eff.OutputRoot)
	}
}

func TestLoadEffective_Invalid(t *testing.T) {
	cases := map[string]struct {
		file string
		cli  CLIArgs
	}{
		"bad toml":       {file: `output_path = `, cli: CLIArgs{Inputs: []string{"in"}}},
		"unknown key":    {file: `outptu_path = "x"`, cli: CLIArgs{Inputs: []string{"in"}}},
		"bad level":      {file: "[log]\nlevel = \"loud\"", cli: CLIArgs{Inputs: []string{"in"}}},
		"bad format cli": {cli: CLIArgs{Inputs: []string{"in"}, LogFormat: "xml", LogFormatSet: true}},
		"no inputs":      {cli: CLIArgs{}},
		"empty output":   {cli: CLIArgs{Inputs: []string{"in"}, OutputPathSet: true}},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			cwd := t.TempDir()
			if c.file != "" {
				writeFile(t, filepath.Join(cwd, FileName), c.file)
			}
			_, err := LoadEffective(cwd, c.cli)
			if Code(err) != ErrCodeInvalid {
				t.Fatalf("want %q, got err=%v (code=%q)", ErrCodeInvalid, err, Code(err))
			}
			if !strings.HasPrefix(err.Error(), ErrCodeInvalid) {
				t.Fatalf("message should lead with the code: %q", err.Error())
			}
		})
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
