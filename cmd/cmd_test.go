package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/fatih/color"
	"github.com/solidprinciples/solid/internal/audit"
	"github.com/solidprinciples/solid/internal/build"
	"github.com/solidprinciples/solid/internal/config"
	"github.com/solidprinciples/solid/internal/content"
	"github.com/solidprinciples/solid/internal/logging"
	"github.com/solidprinciples/solid/internal/routes"
	"github.com/solidprinciples/solid/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{Host: "localhost", Port: 0, Environment: "test"},
		Site: config.SiteConfig{
			Name:    "SolidPrinciples.org",
			BaseURL: "https://www.solidprinciples.org",
			Author:  "SolidPrinciples.org Team",
		},
		Build: config.BuildConfig{OutputDir: filepath.Join(t.TempDir(), "dist"), Sitemap: true, Robots: true},
		Log:   config.LogConfig{Level: "info", Format: "text"},
	}
}

func TestEnumValue(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"json", "json", false},
		{" JSON ", "json", false},
		{"text", "text", false},
		{"xml", "text", true},
		{"", "text", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v := newEnum("text", "text", "json")
			err := v.Set(tt.input)
			if tt.wantErr {
				assert.ErrorContains(t, err, "must be one of: text, json")
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, v.String())
		})
	}

	v := newEnum("table", "table", "json")
	assert.Equal(t, "(table|json)", v.Usage())
	assert.Equal(t, "string", v.Type())
}

func TestCommandsRegistered(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "build", "routes", "audit", "doctor", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestListRoutesEmbedded(t *testing.T) {
	store, err := content.LoadEmbedded()
	require.NoError(t, err)

	infos := listRoutes(store)
	require.Len(t, infos, len(routes.Enumerate()))

	assert.Equal(t, routeInfo{Kind: "home", Path: "/", File: "index.html", Content: "-"}, infos[0])
	for _, info := range infos {
		switch info.Kind {
		case "example":
			assert.Equal(t, "complete", info.Content, info.Path)
			assert.NotEmpty(t, info.Language)
		case "principle":
			assert.Equal(t, "11/11 complete", info.Content, info.Path)
		}
	}
}

const partialManifest = `pages:
  home:
    title: "Home"
  principle:
    title: "{{.Principle}}"
  example:
    title: "{{.Principle}} in {{.Language}}"
  about:
    title: "About"
  not_found:
    title: "Not found"
`

func TestListRoutesPartialContent(t *testing.T) {
	store, err := content.Load(fstest.MapFS{
		"pages.yaml": {Data: []byte(partialManifest)},
		"examples/single-responsibility/python/without.txt": {Data: []byte("class UserManager: pass\n")},
		"examples/single-responsibility/python/with.txt":    {Data: []byte("class User: pass\n")},
		"examples/single-responsibility/go/with.txt":        {Data: []byte("type User struct{}\n")},
	})
	require.NoError(t, err)

	byPath := make(map[string]routeInfo)
	for _, info := range listRoutes(store) {
		byPath[info.Path] = info
	}

	assert.Equal(t, "complete", byPath["/code-example/single-responsibility/python"].Content)
	assert.Equal(t, "partial", byPath["/code-example/single-responsibility/go"].Content)
	assert.Equal(t, "missing", byPath["/code-example/single-responsibility/rust"].Content)
	assert.Equal(t, "1/11 complete", byPath["/code-example/single-responsibility"].Content)
	assert.Equal(t, "0/11 complete", byPath["/code-example/open-closed-principle"].Content)
}

func TestWriteRoutes(t *testing.T) {
	store, err := content.LoadEmbedded()
	require.NoError(t, err)
	infos := listRoutes(store)

	var buf bytes.Buffer
	require.NoError(t, writeRoutes(&buf, infos, "json"))
	var decoded []routeInfo
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, infos, decoded)

	buf.Reset()
	require.NoError(t, writeRoutes(&buf, infos, "table"))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "KIND"))
	assert.Contains(t, buf.String(), "code-example/dependency-inversion-principle/rust/index.html")
	assert.Equal(t, "63 routes", lines[len(lines)-1])
}

func TestWriteVersion(t *testing.T) {
	info := version.Info{Version: "v1.2.0", Commit: "abcdef1234567", GoVersion: "go1.24.4", Platform: "linux/amd64"}

	var buf bytes.Buffer
	require.NoError(t, writeVersion(&buf, info, "text", true))
	assert.Equal(t, "v1.2.0 (abcdef1)\n", buf.String())

	buf.Reset()
	require.NoError(t, writeVersion(&buf, info, "text", false))
	assert.True(t, strings.HasPrefix(buf.String(), "solid v1.2.0 (abcdef1)\n"))
	assert.Contains(t, buf.String(), "Platform: linux/amd64")

	buf.Reset()
	require.NoError(t, writeVersion(&buf, info, "json", false))
	var decoded version.Info
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, info, decoded)
}

func TestVersionCommand(t *testing.T) {
	t.Cleanup(func() {
		versionShort = false
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	})

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version", "--short"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, version.GetShortVersion()+"\n", buf.String())

	rootCmd.SetArgs([]string{"version", "--format", "xml"})
	assert.ErrorContains(t, rootCmd.Execute(), "must be one of")
}

func TestExportSite(t *testing.T) {
	cfg := testConfig(t)
	opts := build.Options{
		OutputDir: cfg.Build.OutputDir,
		Sitemap:   cfg.Build.Sitemap,
		Robots:    cfg.Build.Robots,
		Minify:    true,
	}

	var out bytes.Buffer
	require.NoError(t, exportSite(context.Background(), cfg, opts, true, &out, logging.Discard()))

	assert.Contains(t, out.String(), "Exported 63 pages")
	assert.Contains(t, out.String(), "Audited 63 pages")
	assert.FileExists(t, filepath.Join(cfg.Build.OutputDir, "sitemap.xml"))
}

func TestExportSiteBadContentDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.Content.Dir = filepath.Join(t.TempDir(), "missing")

	err := exportSite(context.Background(), cfg, build.Options{OutputDir: cfg.Build.OutputDir}, false, &bytes.Buffer{}, nil)
	assert.ErrorContains(t, err, "Failed to load content")
}

func TestAuditOutput(t *testing.T) {
	dir := t.TempDir()
	page := `<!DOCTYPE html><html><head><title>x</title></head><body><a href="/gone">Gone</a></body></html>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(page), 0o644))

	report, err := audit.Dir(context.Background(), dir)
	require.NoError(t, err)
	require.True(t, report.Failed())

	var buf bytes.Buffer
	require.NoError(t, writeAuditJSON(&buf, report))
	var decoded auditOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 1, decoded.Pages)
	assert.True(t, decoded.Failed)
	assert.Contains(t, decoded.Findings, auditFinding{Path: "index.html", Severity: "error", Message: "broken-link: no file for /gone"})
	assert.Contains(t, decoded.Findings, auditFinding{Path: "index.html", Severity: "warning", Message: "html-lang: html element has no lang attribute"})

	buf.Reset()
	printAuditReport(&buf, report)
	assert.Contains(t, buf.String(), "error index.html: broken-link: no file for /gone")
	assert.Contains(t, buf.String(), "Audited 1 pages")
}

func TestDiagnose(t *testing.T) {
	cfg := testConfig(t)
	report := diagnose(context.Background(), cfg, nil)

	require.Len(t, report.Results, 5)
	assert.Equal(t, 0, report.Summary.Errors, "%+v", report.Results)
	assert.Equal(t, 5, report.Summary.Total)

	byName := make(map[string]DiagnosticResult)
	for _, r := range report.Results {
		byName[r.Name] = r
	}
	assert.Equal(t, statusOK, byName["Content"].Status)
	assert.Equal(t, statusOK, byName["Output directory"].Status)
	assert.Equal(t, statusOK, byName["Port availability"].Status)
}

func TestDiagnoseProblems(t *testing.T) {
	report := diagnose(context.Background(), nil, assert.AnError)
	require.Len(t, report.Results, 1)
	assert.Equal(t, statusError, report.Results[0].Status)
	assert.Equal(t, 1, report.Summary.Errors)

	cfg := testConfig(t)
	cfg.Server.Environment = "production"
	cfg.Site.BaseURL = "http://solid.test"
	result := checkEnvironment(context.Background(), cfg)
	assert.Equal(t, statusWarning, result.Status)

	cfg.Content.Dir = filepath.Join(t.TempDir(), "missing")
	assert.Equal(t, statusError, checkContent(context.Background(), cfg).Status)
}

func TestOutputReport(t *testing.T) {
	report := diagnose(context.Background(), testConfig(t), nil)

	var buf bytes.Buffer
	require.NoError(t, outputReport(&buf, report, "yaml"))
	var fromYAML DoctorReport
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &fromYAML))
	assert.Equal(t, report.Summary, fromYAML.Summary)

	buf.Reset()
	require.NoError(t, outputReport(&buf, report, "json"))
	var fromJSON DoctorReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fromJSON))
	assert.Len(t, fromJSON.Results, len(report.Results))

	buf.Reset()
	require.NoError(t, outputReport(&buf, report, "text"))
	assert.Contains(t, buf.String(), "[CONTENT] Content:")
	assert.Contains(t, buf.String(), "5 checks:")

	assert.Error(t, outputReport(&buf, report, "xml"))
}
