package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/notebinder/internal/doctree"
	derrors "git.home.luguber.info/inful/notebinder/internal/foundation/errors"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MinimalYAMLAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "notebinder.yaml", "version: \"1.0\"\n"))
	require.NoError(t, err)

	assert.Equal(t, "Release Notes", cfg.Document.Title)
	assert.Equal(t, "Abstract", cfg.Document.AbstractTitle)
	assert.Equal(t, "Table of Contents", cfg.Document.TOCTitle)
	assert.Equal(t, 3, cfg.Document.TOCDepth)
	assert.False(t, cfg.Document.TOC)
	assert.Equal(t, 9, cfg.Render.MaxHeadingDepth)
	assert.Equal(t, int64(64<<20), cfg.Render.MaxDocumentBytes)
	assert.Len(t, cfg.Sections, 8)
	assert.Len(t, cfg.Categories, 8)
	assert.Equal(t, 8080, cfg.Preview.Port)
	assert.Equal(t, 300*time.Millisecond, cfg.DebounceDuration())
	assert.Zero(t, cfg.RescanDuration())
	assert.Equal(t, LogLevelInfo, cfg.Monitoring.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Monitoring.Logging.Format)
	assert.Equal(t, "/metrics", cfg.Monitoring.Metrics.Path)
}

func TestLoad_TOML(t *testing.T) {
	content := `version = "1.0"

[document]
title = "TiDB 8.1.0 Release Notes"
authors = ["PingCAP"]
toc = true

[[sections]]
id = "feature"
title = "New Features"

[[sections]]
id = "bugfix"
group_by = "Component"
list = "Ordered"

[categories]
feature = "feature"
bugfix = "bugfix"

[preview]
rescan_interval = "1m"
`
	cfg, err := Load(writeConfig(t, "notebinder.toml", content))
	require.NoError(t, err)

	assert.Equal(t, "TiDB 8.1.0 Release Notes", cfg.Document.Title)
	assert.Equal(t, []string{"PingCAP"}, cfg.Document.Authors)
	assert.True(t, cfg.Document.TOC)
	require.Len(t, cfg.Sections, 2)
	assert.Equal(t, "Bugfix", cfg.Sections[1].Title)
	assert.Equal(t, "component", cfg.Sections[1].GroupBy)
	assert.Equal(t, "numbered", cfg.Sections[1].List)
	assert.Equal(t, "bullet", cfg.Sections[0].List)
	assert.Equal(t, time.Minute, cfg.RescanDuration())
}

func TestLoad_CustomSectionsMapMatchingCategories(t *testing.T) {
	content := "version: \"1.0\"\n" +
		"sections:\n" +
		"  - id: feature\n" +
		"  - id: bug_fixes\n" +
		"    children:\n" +
		"      - id: security\n"
	cfg, err := Load(writeConfig(t, "notebinder.yaml", content))
	require.NoError(t, err)

	assert.Equal(t, "Feature", cfg.Sections[0].Title)
	assert.Equal(t, "Bug Fixes", cfg.Sections[1].Title)
	assert.Equal(t, "Security", cfg.Sections[1].Children[0].Title)
	assert.Equal(t, map[string]string{"feature": "feature", "security": "security"}, cfg.Categories)
}

func TestLoad_UnsupportedVersion(t *testing.T) {
	_, err := Load(writeConfig(t, "notebinder.yaml", "version: \"2.0\"\n"))
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryConfig))
	assert.Contains(t, err.Error(), "unsupported configuration version")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryNotFound))
}

func TestLoad_ValidationCollectsEveryProblem(t *testing.T) {
	content := "version: \"1.0\"\n" +
		"categories:\n" +
		"  feature: missing\n" +
		"preview:\n" +
		"  port: 70000\n" +
		"  debounce: soon\n"
	_, err := Load(writeConfig(t, "notebinder.yaml", content))
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryConfig))
	msg := err.Error()
	assert.Contains(t, msg, "preview.port")
	assert.Contains(t, msg, "preview.debounce")
	assert.Contains(t, msg, `maps to unknown section "missing"`)
}

func TestLoad_EnvFileDoesNotOverrideProcessEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("NOTEBINDER_TEST_TITLE=From Dotenv\nNOTEBINDER_TEST_AUTHOR=dotenv\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("NOTEBINDER_TEST_TITLE") })
	t.Setenv("NOTEBINDER_TEST_AUTHOR", "process")

	path := filepath.Join(dir, "notebinder.yaml")
	content := "version: \"1.0\"\n" +
		"document:\n" +
		"  title: ${NOTEBINDER_TEST_TITLE}\n" +
		"  authors: [\"${NOTEBINDER_TEST_AUTHOR}\"]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "From Dotenv", cfg.Document.Title)
	assert.Equal(t, []string{"process"}, cfg.Document.Authors)
}

func TestLoadOrDefault_MissingDefaultPath(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadOrDefault(DefaultPath)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = LoadOrDefault("other.yaml")
	require.Error(t, err)
}

func TestInit_RoundTrip(t *testing.T) {
	t.Setenv("USER", "tester")
	for _, name := range []string{"notebinder.yaml", "notebinder.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, Init(path, false))

			err := Init(path, false)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "already exists")
			require.NoError(t, Init(path, true))

			cfg, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, []string{"tester"}, cfg.Document.Authors)
			assert.Equal(t, RevisionAuto, cfg.Document.Revision)
			assert.True(t, cfg.Document.TOC)
			assert.True(t, cfg.Monitoring.Metrics.Enabled)
			assert.Equal(t, Default().Sections, cfg.Sections)
			assert.Equal(t, Default().Categories, cfg.Categories)
		})
	}
}

func TestNormalizeConfig(t *testing.T) {
	cfg := &Config{
		Sections: []SectionConfig{{ID: " x ", List: "Numbered", GroupBy: "COMPONENT"}},
		Categories: map[string]string{
			"Feature": "x",
		},
		Render: RenderConfig{MaxHeadingDepth: 12},
		Monitoring: MonitoringConfig{Logging: MonitoringLogging{
			Level:  "loud",
			Format: "JSON",
		}},
	}

	res := NormalizeConfig(cfg)

	assert.Len(t, res.Warnings, 6)
	assert.Equal(t, "x", cfg.Sections[0].ID)
	assert.Equal(t, "numbered", cfg.Sections[0].List)
	assert.Equal(t, "component", cfg.Sections[0].GroupBy)
	assert.Equal(t, map[string]string{"feature": "x"}, cfg.Categories)
	assert.Equal(t, 9, cfg.Render.MaxHeadingDepth)
	assert.Equal(t, LogLevelInfo, cfg.Monitoring.Logging.Level)
	assert.Equal(t, LogFormatJSON, cfg.Monitoring.Logging.Format)
}

func TestNormalizeConfig_LeavesUnknownSectionEnumsForValidation(t *testing.T) {
	cfg := &Config{Sections: []SectionConfig{{ID: "x", List: "table"}}}
	res := NormalizeConfig(cfg)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, "table", cfg.Sections[0].List)

	applyDefaults(cfg)
	err := ValidateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid list kind "table"`)
}

func TestDefault_LayoutMatchesBuiltinTaxonomy(t *testing.T) {
	assert.Equal(t, doctree.DefaultLayout(), Default().Layout())
	require.NoError(t, ValidateConfig(Default()))
}

func TestPipelineOptions(t *testing.T) {
	dir := t.TempDir()
	styles := []byte("<w:styles/>")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "styles.xml"), styles, 0o600))
	path := filepath.Join(dir, "notebinder.yaml")
	content := "version: \"1.0\"\n" +
		"document:\n" +
		"  title: Notes\n" +
		"  styles: styles.xml\n" +
		"  revision: r42\n" +
		"render:\n" +
		"  max_heading_depth: 2\n" +
		"sources:\n" +
		"  internal_link_base: https://docs.example.com\n" +
		"  ignore_fields: [pr]\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	// Load from elsewhere so styles.xml only resolves next to the config file.
	t.Chdir(t.TempDir())

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "styles.xml"), cfg.Resolve("styles.xml"))
	opts, err := cfg.PipelineOptions()
	require.NoError(t, err)

	assert.Equal(t, styles, opts.Render.StylesXML)
	assert.Equal(t, 2, opts.Render.MaxHeadingDepth)
	assert.Equal(t, "https://docs.example.com", opts.Schema.Markup.InternalLinkBase)
	assert.Equal(t, []string{"pr"}, opts.Schema.IgnoreFields)
	assert.Equal(t, "Notes", opts.Metadata.Title)
	assert.Equal(t, "r42", opts.Metadata.Revision)
	assert.Len(t, opts.Layout.Sections, 8)
}

func TestValidateConfig_MissingStylesFile(t *testing.T) {
	cfg := Default()
	cfg.Document.Styles = filepath.Join(t.TempDir(), "nope.xml")
	err := ValidateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document.styles")
}

func TestSectionTitle(t *testing.T) {
	assert.Equal(t, "Bug Fixes", sectionTitle("bug_fixes"))
	assert.Equal(t, "Tikv Changes", sectionTitle("tikv-changes"))
	assert.Equal(t, "Performance", sectionTitle("performance"))
}
