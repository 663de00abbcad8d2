// Package langdetect guesses the fence tag of untagged code blocks with
// go-enry. Detection is conservative: "" means no confident answer and the
// fence stays untagged.
package langdetect

import (
	"bytes"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

const (
	langBash   = "bash"
	langCpp    = "cpp"
	langCuda   = "cuda"
	langPython = "python"
	langGo     = "go"
	langJSON   = "json"
	langCMake  = "cmake"
)

// classifierCandidates are the languages the classifier may choose from.
var classifierCandidates = []string{
	"C++", "Cuda", "C", "Python", "Shell", "Go", "Rust",
	"JavaScript", "JSON", "YAML", "CMake", "Makefile",
}

// Detect returns a fence tag for code, or "" when unsure.
func Detect(code []byte) string {
	trimmed := bytes.TrimSpace(code)
	if len(trimmed) == 0 {
		return ""
	}

	if lang, safe := enry.GetLanguageByShebang(trimmed); safe {
		return normalize(lang)
	}
	if lang := detectByPattern(trimmed); lang != "" {
		return lang
	}
	if lang, safe := enry.GetLanguageByClassifier(trimmed, classifierCandidates); safe && lang != "" {
		return normalize(lang)
	}
	return ""
}

// detectByPattern checks markers that identify a language on their own.
func detectByPattern(code []byte) string {
	s := string(code)
	switch {
	case strings.Contains(s, "__global__") || strings.Contains(s, "__device__") ||
		(strings.Contains(s, "<<<") && strings.Contains(s, ">>>")):
		return langCuda
	case strings.HasPrefix(s, "#include") || strings.Contains(s, "\n#include") ||
		strings.Contains(s, "template <") || strings.Contains(s, "template<") ||
		strings.Contains(s, "std::"):
		return langCpp
	case strings.HasPrefix(s, "package ") && strings.Contains(s, "func "):
		return langGo
	case strings.Contains(s, "def ") && strings.Contains(s, "):"),
		strings.HasPrefix(s, "import ") && !strings.Contains(s, "import ("),
		strings.Contains(s, "__name__"):
		return langPython
	case strings.Contains(s, "cmake_minimum_required") || strings.Contains(s, "add_executable("):
		return langCMake
	case (s[0] == '{' || s[0] == '[') && strings.Contains(s, `":`):
		return langJSON
	case strings.HasPrefix(s, "$ ") || strings.HasPrefix(s, "sudo ") ||
		strings.HasPrefix(s, "pip install") || strings.HasPrefix(s, "git clone"):
		return langBash
	}
	return ""
}

// normalize converts go-enry language names to fence tags.
func normalize(lang string) string {
	switch lang {
	case "Shell":
		return langBash
	case "C++":
		return langCpp
	}
	return strings.ToLower(lang)
}
