package model

import "time"

// Document is the most recently modified file reported by the document
// source for a tenant's folder.
type Document struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ModifiedAt time.Time `json:"modified_at"`
	Text       string    `json:"text"`
}
