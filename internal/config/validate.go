package config

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// DateLayout is the layout of Frontmatter.Date.
const DateLayout = "2006-01-02"

// ValidationError describes an invalid configuration value.
type ValidationError struct {
	Field    string
	Value    any
	Message  string
	FilePath string
}

func (e *ValidationError) Error() string {
	var parts []string
	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)
	return strings.Join(parts, ": ")
}

// Validate checks enums, the job count and the fallback date.
func Validate(cfg *Config) error {
	if !slices.Contains([]string{FormatMarkdown, FormatJSON, FormatPDF}, cfg.Format) {
		return &ValidationError{
			Field:   "format",
			Value:   cfg.Format,
			Message: fmt.Sprintf("unknown format %q (want markdown, json or pdf)", cfg.Format),
		}
	}
	if !slices.Contains([]string{EngineHexo, EngineGeneric}, cfg.Engine) {
		return &ValidationError{
			Field:   "engine",
			Value:   cfg.Engine,
			Message: fmt.Sprintf("unknown engine %q (want hexo or generic)", cfg.Engine),
		}
	}
	if cfg.Jobs < 0 {
		return &ValidationError{Field: "jobs", Value: cfg.Jobs, Message: "must not be negative"}
	}
	if cfg.OutputDir == "" {
		return &ValidationError{Field: "output_dir", Message: "must not be empty"}
	}
	if cfg.Frontmatter.Date != "" {
		if _, err := time.Parse(DateLayout, cfg.Frontmatter.Date); err != nil {
			return &ValidationError{
				Field:   "frontmatter.date",
				Value:   cfg.Frontmatter.Date,
				Message: "want YYYY-MM-DD",
			}
		}
	}
	return nil
}

// FallbackDate parses Frontmatter.Date. The zero time means unset.
func (c *Config) FallbackDate() time.Time {
	t, err := time.Parse(DateLayout, c.Frontmatter.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}
