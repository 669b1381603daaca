package domain

import (
	"fmt"
	"strconv"
	"strings"
)

type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeShow  MediaType = "show"
)

func ParseMediaType(s string) (MediaType, error) {
	switch MediaType(s) {
	case MediaTypeMovie, MediaTypeShow:
		return MediaType(s), nil
	}
	return "", fmt.Errorf("%w: unknown media type %q", ErrInvalidInput, s)
}

// Media is a locally cached metadata row for a movie or show, keyed by the
// identifier returned by the external metadata provider plus the media type.
// The favorite flag and its timestamp live on the row but travel separately
// in snapshots, as favorite entries.
type Media struct {
	ExternalID   int64     `json:"externalId"`
	Type         MediaType `json:"mediaType" boltholdIndex:"Type"`
	Title        string    `json:"title"`
	Year         int64     `json:"year,omitempty"`
	PosterPath   string    `json:"posterPath,omitempty"`
	BackdropPath string    `json:"backdropPath,omitempty"`
	Overview     string    `json:"overview,omitempty"`
	Rating       float64   `json:"rating,omitempty"`
	Genres       []string  `json:"genres,omitempty"`

	Favorite          bool  `json:"-" boltholdIndex:"Favorite"`
	FavoriteUpdatedAt int64 `json:"-"`

	UpdatedAt int64 `json:"updatedAt"`
}

// MediaKey builds the natural key shared by media rows, favorites and list
// items, e.g. "movie:550".
func MediaKey(t MediaType, externalID int64) string {
	return fmt.Sprintf("%s:%d", t, externalID)
}

func (m *Media) Key() string {
	return MediaKey(m.Type, m.ExternalID)
}

// ParseMediaKey is the inverse of MediaKey, used to rebuild entry fields
// from tombstone keys.
func ParseMediaKey(key string) (MediaType, int64, error) {
	sep := strings.IndexByte(key, ':')
	if sep < 0 {
		return "", 0, fmt.Errorf("%w: malformed media key %q", ErrInvalidInput, key)
	}

	t, err := ParseMediaType(key[:sep])
	if err != nil {
		return "", 0, err
	}
	id, err := strconv.ParseInt(key[sep+1:], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("%w: malformed media key %q", ErrInvalidInput, key)
	}
	return t, id, nil
}
