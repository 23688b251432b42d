package model

import "time"

// ToolLink — ссылка на инструмент, привязанная к фазе.
type ToolLink struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// DocuwareLink — ссылка на документ в Docuware, привязанная к фазе.
type DocuwareLink struct {
	Name string `json:"name"`
	Ref  string `json:"ref"`
}

// Phase — стадия жизненного цикла проекта. Значения Order уникальны
// и задают порядок отображения. CeremonyID — слабая ссылка на церемонию
// перехода (может отсутствовать).
type Phase struct {
	ID            string         `json:"id"`
	Order         int            `json:"order"`
	Name          string         `json:"name"`
	ShortName     string         `json:"shortName"`
	Narrative     string         `json:"narrative"`
	EntryCriteria []string       `json:"entryCriteria"`
	ExitGate      []string       `json:"exitGate"`
	ToolLinks     []ToolLink     `json:"toolLinks"`
	DocuwareLinks []DocuwareLink `json:"docuwareLinks"`
	CeremonyID    *string        `json:"ceremonyId"`
	// Ceremony заполняется при чтении списка фаз (join по CeremonyID),
	// nil если ссылка отсутствует или церемония удалена.
	Ceremony  *Ceremony `json:"ceremony"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
