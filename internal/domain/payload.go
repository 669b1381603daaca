package domain

import "fmt"

// SchemaVersion is the snapshot format version this build reads and writes.
// Imports abort before any mutation when the version differs.
const SchemaVersion = 1

// Payload is the portable snapshot exchanged between two installations.
// Deletion entries share the shape of live entries for their category but
// set deletedAt; consumers must treat deletedAt as outranking the live
// fields on that record.
type Payload struct {
	SchemaVersion int             `json:"schemaVersion"`
	ExportedAt    int64           `json:"exportedAt"`
	DeviceID      string          `json:"deviceId"`
	Media         []MediaEntry    `json:"media"`
	Favorites     []FavoriteEntry `json:"favorites"`
	Progress      []ProgressEntry `json:"progress"`
	Lists         []ListEntry     `json:"lists"`
	ListItems     []ListItemEntry `json:"listItems"`
	Settings      *Settings       `json:"settings"`
}

// MediaEntry carries the metadata fields of a media row. Favorite state
// never travels here; it travels as favorite entries so that a metadata
// upsert cannot clobber it.
type MediaEntry struct {
	ExternalID   int64     `json:"externalId"`
	Type         MediaType `json:"mediaType"`
	Title        string    `json:"title"`
	Year         int64     `json:"year,omitempty"`
	PosterPath   string    `json:"posterPath,omitempty"`
	BackdropPath string    `json:"backdropPath,omitempty"`
	Overview     string    `json:"overview,omitempty"`
	Rating       float64   `json:"rating,omitempty"`
	Genres       []string  `json:"genres,omitempty"`
	UpdatedAt    int64     `json:"updatedAt"`
}

func NewMediaEntry(m *Media) MediaEntry {
	return MediaEntry{
		ExternalID:   m.ExternalID,
		Type:         m.Type,
		Title:        m.Title,
		Year:         m.Year,
		PosterPath:   m.PosterPath,
		BackdropPath: m.BackdropPath,
		Overview:     m.Overview,
		Rating:       m.Rating,
		Genres:       m.Genres,
		UpdatedAt:    m.UpdatedAt,
	}
}

// Record converts the entry back into a media row without favorite state.
func (e *MediaEntry) Record() *Media {
	return &Media{
		ExternalID:   e.ExternalID,
		Type:         e.Type,
		Title:        e.Title,
		Year:         e.Year,
		PosterPath:   e.PosterPath,
		BackdropPath: e.BackdropPath,
		Overview:     e.Overview,
		Rating:       e.Rating,
		Genres:       e.Genres,
		UpdatedAt:    e.UpdatedAt,
	}
}

func (e *MediaEntry) Key() string {
	return MediaKey(e.Type, e.ExternalID)
}

type FavoriteEntry struct {
	ExternalID int64     `json:"externalId"`
	Type       MediaType `json:"mediaType"`
	UpdatedAt  int64     `json:"updatedAt"`
	DeletedAt  int64     `json:"deletedAt,omitempty"`
}

func (e *FavoriteEntry) Key() string {
	return MediaKey(e.Type, e.ExternalID)
}

func (e *FavoriteEntry) Deleted() bool { return e.DeletedAt != 0 }

type ProgressEntry struct {
	Progress
	DeletedAt int64 `json:"deletedAt,omitempty"`
}

func (e *ProgressEntry) Deleted() bool { return e.DeletedAt != 0 }

type ListEntry struct {
	List
	DeletedAt int64 `json:"deletedAt,omitempty"`
}

func (e *ListEntry) Deleted() bool { return e.DeletedAt != 0 }

type ListItemEntry struct {
	ListItem
	DeletedAt int64 `json:"deletedAt,omitempty"`
}

func (e *ListItemEntry) Deleted() bool { return e.DeletedAt != 0 }

// Validate checks the payload shape before any category is processed. The
// schema version is checked separately, and first, by the reconciler.
func (p *Payload) Validate() error {
	if p.ExportedAt == 0 {
		return fmt.Errorf("%w: missing exportedAt", ErrMalformedPayload)
	}
	if p.DeviceID == "" {
		return fmt.Errorf("%w: missing deviceId", ErrMalformedPayload)
	}
	if p.Settings == nil {
		return fmt.Errorf("%w: missing settings", ErrMalformedPayload)
	}
	for i := range p.Media {
		if err := validateMediaRef(p.Media[i].Type, p.Media[i].ExternalID); err != nil {
			return fmt.Errorf("media[%d]: %w", i, err)
		}
	}
	for i := range p.Favorites {
		if err := validateMediaRef(p.Favorites[i].Type, p.Favorites[i].ExternalID); err != nil {
			return fmt.Errorf("favorites[%d]: %w", i, err)
		}
	}
	for i := range p.Progress {
		if err := validateMediaRef(p.Progress[i].Type, p.Progress[i].ExternalID); err != nil {
			return fmt.Errorf("progress[%d]: %w", i, err)
		}
	}
	for i := range p.Lists {
		if p.Lists[i].ID == "" {
			return fmt.Errorf("lists[%d]: %w: missing id", i, ErrMalformedPayload)
		}
		// Deletion entries carry best-effort fields; only live lists need
		// a name for identity resolution.
		if !p.Lists[i].Deleted() && p.Lists[i].Name == "" {
			return fmt.Errorf("lists[%d]: %w: missing name", i, ErrMalformedPayload)
		}
	}
	for i := range p.ListItems {
		if p.ListItems[i].ListID == "" {
			return fmt.Errorf("listItems[%d]: %w: missing listId", i, ErrMalformedPayload)
		}
		if err := validateMediaRef(p.ListItems[i].Type, p.ListItems[i].ExternalID); err != nil {
			return fmt.Errorf("listItems[%d]: %w", i, err)
		}
	}
	return nil
}

func validateMediaRef(t MediaType, externalID int64) error {
	if externalID <= 0 {
		return fmt.Errorf("%w: missing externalId", ErrMalformedPayload)
	}
	if _, err := ParseMediaType(string(t)); err != nil {
		return fmt.Errorf("%w: invalid mediaType %q", ErrMalformedPayload, t)
	}
	return nil
}
