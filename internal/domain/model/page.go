package model

import (
	"encoding/json"
	"time"
)

// Page — страница портала. Content — непрозрачный структурированный
// блоб (jsonb), интерпретируется только фронтендом.
type Page struct {
	ID          string          `json:"id"`
	Slug        string          `json:"slug"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Content     json.RawMessage `json:"content"`
	Published   bool            `json:"published"`
	Order       int             `json:"order"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
