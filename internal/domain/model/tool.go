package model

import "time"

// Tool — инструмент проектной работы, сгруппированный по домену.
// Order задаёт порядок внутри домена.
type Tool struct {
	ID          string    `json:"id"`
	Domain      string    `json:"domain"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	WhenToUse   string    `json:"whenToUse"`
	ExternalURL string    `json:"externalUrl"`
	DocuwareRef *string   `json:"docuwareRef"`
	Icon        string    `json:"icon"`
	Order       int       `json:"order"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
