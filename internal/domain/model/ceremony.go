// Пакет model — доменные сущности Framework Portal.
package model

import "time"

// Ceremony — формальная встреча/церемония жизненного цикла проекта
// (kick-off, gate review и т.д.). Редактируется администратором,
// в нормальной работе не удаляется.
type Ceremony struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Purpose      string    `json:"purpose"`
	Participants []string  `json:"participants"`
	Inputs       []string  `json:"inputs"`
	Outputs      []string  `json:"outputs"`
	TemplateLink string    `json:"templateLink"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
