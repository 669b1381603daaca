package domain

// Namespace identifies one independently timestamped settings group.
// Namespaces merge independently so an edit to one never clobbers another.
type Namespace string

const (
	NamespacePlayback      Namespace = "playback"
	NamespaceSourceFilters Namespace = "sourceFilters"
	NamespaceStreaming     Namespace = "streamingPreferences"
	NamespaceLanguage      Namespace = "language"
	NamespaceTheme         Namespace = "theme"
)

func Namespaces() []Namespace {
	return []Namespace{
		NamespacePlayback,
		NamespaceSourceFilters,
		NamespaceStreaming,
		NamespaceLanguage,
		NamespaceTheme,
	}
}

// LanguageSystem marks the language preference as "follow the system
// locale"; the effective language is re-resolved on every change.
const LanguageSystem = "system"

type PlaybackSettings struct {
	Speed            float64 `json:"speed"`
	AutoPlayNext     bool    `json:"autoPlayNext"`
	SkipIntro        bool    `json:"skipIntro"`
	SubtitlesEnabled bool    `json:"subtitlesEnabled"`
	UpdatedAt        int64   `json:"updatedAt"`
}

type SourceFilterSettings struct {
	ExcludedProviders []string `json:"excludedProviders,omitempty"`
	PreferredRegion   string   `json:"preferredRegion,omitempty"`
	HideUnavailable   bool     `json:"hideUnavailable"`
	UpdatedAt         int64    `json:"updatedAt"`
}

type StreamingSettings struct {
	PreferredQuality string `json:"preferredQuality"`
	AutoSelectSource bool   `json:"autoSelectSource"`
	BufferSeconds    int64  `json:"bufferSeconds"`
	UpdatedAt        int64  `json:"updatedAt"`
}

type LanguageSettings struct {
	// Preferred is a BCP 47 tag or LanguageSystem.
	Preferred string `json:"preferred"`
	// Effective is the resolved display language, recomputed whenever
	// Preferred is LanguageSystem.
	Effective string `json:"effective"`
	UpdatedAt int64  `json:"updatedAt"`
}

type ThemeSettings struct {
	Mode        string `json:"mode"`
	PureBlack   bool   `json:"pureBlack"`
	AccentColor string `json:"accentColor,omitempty"`
	UpdatedAt   int64  `json:"updatedAt"`
}

// Settings aggregates the five namespaces. Each namespace carries its own
// UpdatedAt and is persisted and merged on its own.
type Settings struct {
	Playback      PlaybackSettings     `json:"playback"`
	SourceFilters SourceFilterSettings `json:"sourceFilters"`
	Streaming     StreamingSettings    `json:"streamingPreferences"`
	Language      LanguageSettings     `json:"language"`
	Theme         ThemeSettings        `json:"theme"`
}

func DefaultSettings() *Settings {
	return &Settings{
		Playback:  PlaybackSettings{Speed: 1.0, AutoPlayNext: true},
		Streaming: StreamingSettings{PreferredQuality: "1080p", AutoSelectSource: true},
		Language:  LanguageSettings{Preferred: LanguageSystem},
		Theme:     ThemeSettings{Mode: "dark"},
	}
}

// NamespaceUpdatedAt returns the mutation timestamp of one namespace.
func (s *Settings) NamespaceUpdatedAt(ns Namespace) int64 {
	switch ns {
	case NamespacePlayback:
		return s.Playback.UpdatedAt
	case NamespaceSourceFilters:
		return s.SourceFilters.UpdatedAt
	case NamespaceStreaming:
		return s.Streaming.UpdatedAt
	case NamespaceLanguage:
		return s.Language.UpdatedAt
	case NamespaceTheme:
		return s.Theme.UpdatedAt
	}
	return 0
}

// ReplaceNamespace overwrites one namespace's whole value set with the
// version held by other.
func (s *Settings) ReplaceNamespace(ns Namespace, other *Settings) {
	switch ns {
	case NamespacePlayback:
		s.Playback = other.Playback
	case NamespaceSourceFilters:
		s.SourceFilters = other.SourceFilters
	case NamespaceStreaming:
		s.Streaming = other.Streaming
	case NamespaceLanguage:
		s.Language = other.Language
	case NamespaceTheme:
		s.Theme = other.Theme
	}
}
