// Пакет rbac — логика определения роли пользователя при входе.
// Роль вычисляется один раз при sign-in из статических allow-list'ов
// (admin emails, admin domains) и таблицы разрешённых доменов,
// после чего замораживается в session cookie.
package rbac

import "strings"

// Роли в порядке возрастания привилегий.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// roleWeight — вес роли для сравнения.
// Чем выше вес, тем больше привилегий.
var roleWeight = map[string]int{
	RoleUser:  1,
	RoleAdmin: 2,
}

// IsValidRole проверяет, является ли строка допустимой ролью.
func IsValidRole(role string) bool {
	_, ok := roleWeight[role]
	return ok
}

// IsAdmin сообщает, достаточно ли роли для административных операций.
func IsAdmin(role string) bool {
	return role == RoleAdmin
}

// EmailDomain возвращает доменную часть email (после @) в нижнем
// регистре. Пустая строка — если адрес некорректен.
func EmailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}

// RoleForEmail вычисляет роль для входящего email.
//
// Правила, в порядке приоритета:
//  1. email точно совпадает с одним из adminEmails → ADMIN;
//  2. домен email входит в adminDomains → ADMIN;
//  3. домен есть в domainAccess (таблица AllowedDomain) → уровень
//     доступа домена (ADMIN или USER);
//  4. ни одно правило не совпало → вход запрещён (ok == false).
//
// Сравнение email и доменов регистронезависимое.
func RoleForEmail(email string, adminEmails, adminDomains []string, domainAccess map[string]string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	domain := EmailDomain(normalized)

	for _, e := range adminEmails {
		if strings.ToLower(strings.TrimSpace(e)) == normalized {
			return RoleAdmin, true
		}
	}

	if domain != "" {
		for _, d := range adminDomains {
			if strings.ToLower(strings.TrimSpace(d)) == domain {
				return RoleAdmin, true
			}
		}

		if level, ok := domainAccess[domain]; ok {
			if level == RoleAdmin {
				return RoleAdmin, true
			}
			return RoleUser, true
		}
	}

	return "", false
}
