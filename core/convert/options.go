package convert

// Default markup conventions of Hexo themes.
const (
	DefaultTitleClass     = "title"
	DefaultContentClass   = "content"
	DefaultMarkerID       = "more"
	DefaultHighlightClass = "highlight"
)

// LanguageDetector guesses the language tag of an untagged code block.
// It returns "" when it has no confident answer.
type LanguageDetector func(code []byte) string

// Options configures which markup the converter recognizes.
// Empty fields fall back to the Default* constants.
type Options struct {
	// TitleClass marks the h1 holding the post title (substring match).
	TitleClass string
	// ContentClass marks the div holding the article body (substring match).
	ContentClass string
	// MarkerID is the id of the element ending the teaser.
	MarkerID string
	// HighlightClass marks figure elements wrapping highlighted code.
	HighlightClass string
	// KeepTeaser disables the skip-until-marker gate.
	KeepTeaser bool
	// DetectLanguage, when set, tags code blocks that carry no language.
	DetectLanguage LanguageDetector
}

func (o Options) withDefaults() Options {
	if o.TitleClass == "" {
		o.TitleClass = DefaultTitleClass
	}
	if o.ContentClass == "" {
		o.ContentClass = DefaultContentClass
	}
	if o.MarkerID == "" {
		o.MarkerID = DefaultMarkerID
	}
	if o.HighlightClass == "" {
		o.HighlightClass = DefaultHighlightClass
	}
	return o
}
