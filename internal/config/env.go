package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// EnvPrefix prefixes every environment variable read by LoadFromEnv.
const EnvPrefix = "HEXOVAULT_"

// LoadFromEnv applies HEXOVAULT_* overrides to cfg. List values are
// comma separated.
func LoadFromEnv(cfg *Config) error {
	strs := map[string]*string{
		"OUTPUT_DIR":       &cfg.OutputDir,
		"FORMAT":           &cfg.Format,
		"ENGINE":           &cfg.Engine,
		"PREFIX":           &cfg.Prefix,
		"FRONTMATTER_DATE": &cfg.Frontmatter.Date,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"FORCE":           &cfg.Force,
		"DETECT_LANGUAGE": &cfg.DetectLanguage,
		"SKIP_TEASER":     &cfg.SkipTeaser,
	}
	for key, dst := range bools {
		v, ok := lookup(key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s%s: %q", EnvPrefix, key, v)
		}
		*dst = b
	}

	if v, ok := lookup("JOBS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid integer for %sJOBS: %q", EnvPrefix, v)
		}
		cfg.Jobs = n
	}

	lists := map[string]*[]string{
		"FRONTMATTER_CATEGORIES": &cfg.Frontmatter.Categories,
		"FRONTMATTER_TAGS":       &cfg.Frontmatter.Tags,
	}
	for key, dst := range lists {
		if v, ok := lookup(key); ok {
			*dst = splitList(v)
		}
	}
	return nil
}

func lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(EnvPrefix + key))
	return v, v != ""
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
