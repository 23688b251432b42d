package model

import "time"

// SettingsID — фиксированный ключ единственной строки настроек проекта.
const SettingsID = "default"

// ProjectSettings — singleton-запись настроек проекта: указатель на
// текущую фазу и кто её последним менял.
type ProjectSettings struct {
	ID             string    `json:"id"`
	CurrentPhaseID *string   `json:"currentPhaseId"`
	UpdatedByID    *string   `json:"updatedById"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// CurrentPhaseView — ответ на запрос текущей фазы: настройки, joined
// фаза и имя последнего редактора. Все поля nullable — отсутствие
// настроек это валидное состояние, а не ошибка.
type CurrentPhaseView struct {
	CurrentPhaseID *string    `json:"currentPhaseId"`
	CurrentPhase   *Phase     `json:"currentPhase"`
	UpdatedAt      *time.Time `json:"updatedAt"`
	UpdatedBy      *string    `json:"updatedBy"`
}
