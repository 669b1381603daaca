package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Progress records a playback position. Season and Episode are nil for
// movies; both are set for show episodes.
type Progress struct {
	ExternalID int64     `json:"externalId"`
	Type       MediaType `json:"mediaType"`
	Season     *int64    `json:"seasonNumber,omitempty"`
	Episode    *int64    `json:"episodeNumber,omitempty"`
	Position   int64     `json:"position"`
	Duration   int64     `json:"duration"`
	Completed  bool      `json:"completed"`
	UpdatedAt  int64     `json:"updatedAt"`
}

// ProgressKey builds the progress natural key, e.g. "movie:550" or
// "show:1399:s1:e3".
func ProgressKey(t MediaType, externalID int64, season, episode *int64) string {
	key := MediaKey(t, externalID)
	if season != nil {
		key += fmt.Sprintf(":s%d", *season)
	}
	if episode != nil {
		key += fmt.Sprintf(":e%d", *episode)
	}
	return key
}

func (p *Progress) Key() string {
	return ProgressKey(p.Type, p.ExternalID, p.Season, p.Episode)
}

// MediaKey returns the key of the media row this progress entry references.
func (p *Progress) MediaKey() string {
	return MediaKey(p.Type, p.ExternalID)
}

// ParseProgressKey is the inverse of ProgressKey, used to rebuild entry
// fields from tombstone keys.
func ParseProgressKey(key string) (t MediaType, externalID int64, season, episode *int64, err error) {
	parts := strings.Split(key, ":")
	if len(parts) < 2 {
		return "", 0, nil, nil, fmt.Errorf("%w: malformed progress key %q", ErrInvalidInput, key)
	}

	t, externalID, err = ParseMediaKey(parts[0] + ":" + parts[1])
	if err != nil {
		return "", 0, nil, nil, err
	}

	for _, part := range parts[2:] {
		if len(part) < 2 {
			return "", 0, nil, nil, fmt.Errorf("%w: malformed progress key %q", ErrInvalidInput, key)
		}
		n, parseErr := strconv.ParseInt(part[1:], 10, 64)
		if parseErr != nil {
			return "", 0, nil, nil, fmt.Errorf("%w: malformed progress key %q", ErrInvalidInput, key)
		}
		switch part[0] {
		case 's':
			season = &n
		case 'e':
			episode = &n
		default:
			return "", 0, nil, nil, fmt.Errorf("%w: malformed progress key %q", ErrInvalidInput, key)
		}
	}
	return t, externalID, season, episode, nil
}
