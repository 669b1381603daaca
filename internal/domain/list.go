package domain

import (
	"fmt"
	"strings"
)

// List is a user-created collection of media. The identifier is generated
// per install, so the same logical list carries different raw ids on
// different devices; NormalizedName is the cross-device identity used to
// reconcile them.
type List struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	NormalizedName string `json:"-" boltholdIndex:"NormalizedName"`
	IsDefault      bool   `json:"isDefault"`
	CreatedAt      int64  `json:"createdAt"`
	UpdatedAt      int64  `json:"updatedAt"`
}

// NormalizeListName reduces a list name to its cross-device identity form.
func NormalizeListName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

type ListItem struct {
	ListID     string    `json:"listId" boltholdIndex:"ListID"`
	ExternalID int64     `json:"externalId"`
	Type       MediaType `json:"mediaType"`
	AddedAt    int64     `json:"addedAt"`
}

func ListItemKey(listID string, t MediaType, externalID int64) string {
	return listID + ":" + MediaKey(t, externalID)
}

func (i *ListItem) Key() string {
	return ListItemKey(i.ListID, i.Type, i.ExternalID)
}

// MediaKey returns the key of the media row this item references.
func (i *ListItem) MediaKey() string {
	return MediaKey(i.Type, i.ExternalID)
}

// ParseListItemKey is the inverse of ListItemKey, used to rebuild entry
// fields from tombstone keys. List ids never contain a colon.
func ParseListItemKey(key string) (listID string, t MediaType, externalID int64, err error) {
	sep := strings.IndexByte(key, ':')
	if sep < 0 {
		return "", "", 0, fmt.Errorf("%w: malformed list item key %q", ErrInvalidInput, key)
	}

	listID = key[:sep]
	t, externalID, err = ParseMediaKey(key[sep+1:])
	if err != nil {
		return "", "", 0, err
	}
	return listID, t, externalID, nil
}
