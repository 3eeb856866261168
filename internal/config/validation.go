package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"git.home.luguber.info/inful/notebinder/internal/docx"
	derrors "git.home.luguber.info/inful/notebinder/internal/foundation/errors"
)

// ValidateConfig reports every defect in a normalized, defaulted configuration.
func ValidateConfig(cfg *Config) error {
	return newConfigurationValidator(cfg).validate()
}

// configurationValidator collects problems across all configuration domains.
type configurationValidator struct {
	config *Config
	errs   []error
}

func newConfigurationValidator(config *Config) *configurationValidator {
	return &configurationValidator{config: config}
}

func (cv *configurationValidator) validate() error {
	cv.validateDocument()
	cv.validateRender()
	cv.validateLayout()
	cv.validateSources()
	cv.validatePreview()
	cv.validateMonitoring()
	return errors.Join(cv.errs...)
}

func (cv *configurationValidator) fail(format string, args ...any) {
	cv.errs = append(cv.errs, derrors.ConfigError(fmt.Sprintf(format, args...)).Build())
}

func (cv *configurationValidator) validateDocument() {
	d := cv.config.Document
	if strings.ContainsAny(d.Title, "\r\n") {
		cv.fail("document.title must be a single line")
	}
	if d.TOCDepth < 1 || d.TOCDepth > docx.MaxHeadingLevel {
		cv.fail("document.toc_depth must be between 1 and %d, got %d", docx.MaxHeadingLevel, d.TOCDepth)
	}
	for i, a := range d.Authors {
		if strings.TrimSpace(a) == "" {
			cv.fail("document.authors[%d] is empty", i)
		}
	}
	if d.Styles != "" {
		if _, err := os.Stat(cv.config.Resolve(d.Styles)); err != nil {
			cv.fail("document.styles: %v", err)
		}
	}
}

func (cv *configurationValidator) validateRender() {
	r := cv.config.Render
	if r.MaxHeadingDepth < 1 || r.MaxHeadingDepth > docx.MaxHeadingLevel {
		cv.fail("render.max_heading_depth must be between 1 and %d, got %d", docx.MaxHeadingLevel, r.MaxHeadingDepth)
	}
	if r.MaxDocumentBytes < 0 {
		cv.fail("render.max_document_bytes must not be negative")
	}
}

func (cv *configurationValidator) validateLayout() {
	if err := cv.config.Layout().Validate(); err != nil {
		cv.errs = append(cv.errs, err)
	}
}

func (cv *configurationValidator) validateSources() {
	for i, f := range cv.config.Sources.IgnoreFields {
		if strings.TrimSpace(f) == "" {
			cv.fail("sources.ignore_fields[%d] is empty", i)
		}
	}
	if base := cv.config.Sources.InternalLinkBase; base != "" &&
		!strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		cv.fail("sources.internal_link_base must be an http(s) URL, got %q", base)
	}
}

func (cv *configurationValidator) validatePreview() {
	p := cv.config.Preview
	if p.Port < 1 || p.Port > 65535 {
		cv.fail("preview.port must be between 1 and 65535, got %d", p.Port)
	}
	if d, err := time.ParseDuration(p.Debounce); err != nil || d < 0 {
		cv.fail("preview.debounce: invalid duration %q", p.Debounce)
	}
	if p.RescanInterval != "" {
		if d, err := time.ParseDuration(p.RescanInterval); err != nil || d < time.Second {
			cv.fail("preview.rescan_interval: invalid duration %q (minimum 1s)", p.RescanInterval)
		}
	}
	if p.RenderRate < 0 {
		cv.fail("preview.render_rate must not be negative")
	}
	if p.RenderBurst < 1 {
		cv.fail("preview.render_burst must be at least 1")
	}
}

func (cv *configurationValidator) validateMonitoring() {
	if path := cv.config.Monitoring.Metrics.Path; !strings.HasPrefix(path, "/") {
		cv.fail("monitoring.metrics.path must start with '/', got %q", path)
	}
}
