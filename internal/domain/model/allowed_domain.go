package model

import "time"

// AllowedDomain — email-домен, которому разрешён вход с указанным
// уровнем доступа (USER или ADMIN).
type AllowedDomain struct {
	ID          string    `json:"id"`
	Domain      string    `json:"domain"`
	AccessLevel string    `json:"accessLevel"`
	CreatedAt   time.Time `json:"createdAt"`
}
