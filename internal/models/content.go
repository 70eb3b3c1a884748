package models

import "encoding/json"

type ContentKind string

const (
	ContentText  ContentKind = "text"
	ContentPhoto ContentKind = "photo"
)

// ContentItem is a single message of a course day: a text or a photo URL.
type ContentItem struct {
	Kind    ContentKind `json:"type"`
	Payload string      `json:"content"`
}

type ContentDay struct {
	DayNumber int
	Items     []ContentItem
}

func ContentItemsToJSON(items []ContentItem) (string, error) {
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func ParseContentItems(data string) ([]ContentItem, error) {
	var items []ContentItem
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil, err
	}
	return items, nil
}
