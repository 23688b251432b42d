package model

import "time"

// RoleAssignment — назначение человека на организационную роль.
// RoleKey — стабильный ключ соединения с кодовым каталогом ролей;
// роль без назначения просто не имеет строки в таблице.
type RoleAssignment struct {
	ID            string    `json:"id"`
	RoleKey       string    `json:"roleKey"`
	RoleName      string    `json:"roleName"`
	AssigneeName  *string   `json:"assigneeName"`
	AssigneeEmail *string   `json:"assigneeEmail"`
	AssigneePhone *string   `json:"assigneePhone"`
	Notes         *string   `json:"notes"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
