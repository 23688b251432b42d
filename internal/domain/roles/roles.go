// Пакет roles — кодовый каталог организационных ролей проекта.
// Каталог не хранится в БД: это версионируемый константный список,
// а назначения людей соединяются с ним по производному ключу
// (см. RoleNameToKey) во время чтения.
package roles

import "strings"

// Категории ролей.
const (
	CategoryExternal    = "external"
	CategoryStakeholder = "stakeholder"
	CategoryInternal    = "internal"
)

// Role — элемент каталога: организационная роль и её описание.
type Role struct {
	Key      string `json:"key"`
	Category string `json:"category"`
	Name     string `json:"name"`
	Title    string `json:"title"`
	Icon     string `json:"icon"`
}

// catalog — полный список ролей фреймворка управления проектами.
// Порядок фиксирован: внешние, акционеры, внутренняя команда.
var catalog = []Role{
	{Category: CategoryExternal, Name: "External Customer", Title: "Final User", Icon: "user-check"},
	{Category: CategoryExternal, Name: "External Stakeholders", Title: "Regulatory & Third Parties", Icon: "landmark"},
	{Category: CategoryExternal, Name: "Suppliers & Contractors", Title: "Delivery Partners", Icon: "truck"},

	{Category: CategoryStakeholder, Name: "Shareholders / Board", Title: "Capital Providers", Icon: "landmark"},
	{Category: CategoryStakeholder, Name: "Business Owner", Title: "P&L Accountability", Icon: "briefcase"},

	{Category: CategoryInternal, Name: "Business Director", Title: "Customer Champion", Icon: "building-2"},
	{Category: CategoryInternal, Name: "Project Director", Title: "Delivery Lead", Icon: "compass"},
	{Category: CategoryInternal, Name: "Relationship Coordinator", Title: "Interface Manager", Icon: "globe"},
	{Category: CategoryInternal, Name: "Engineering / Design Lead", Title: "Technical Authority", Icon: "pen-tool"},
	{Category: CategoryInternal, Name: "Finance Lead", Title: "Financial Controller", Icon: "wallet"},
	{Category: CategoryInternal, Name: "Procurement & Supply Chain Lead", Title: "Sourcing Manager", Icon: "package"},
	{Category: CategoryInternal, Name: "Site / Operations Lead", Title: "Execution Manager", Icon: "hard-hat"},
	{Category: CategoryInternal, Name: "Legal & Compliance Lead", Title: "Risk & Compliance", Icon: "scale"},
}

func init() {
	// Ключи производные, заполняем один раз при старте.
	for i := range catalog {
		catalog[i].Key = RoleNameToKey(catalog[i].Name)
	}
}

// Catalog возвращает копию каталога ролей в фиксированном порядке.
func Catalog() []Role {
	out := make([]Role, len(catalog))
	copy(out, catalog)
	return out
}

// ByKey возвращает роль каталога по ключу.
func ByKey(key string) (Role, bool) {
	for _, r := range catalog {
		if r.Key == key {
			return r, true
		}
	}
	return Role{}, false
}

// RoleNameToKey детерминированно выводит стабильный ключ из имени роли:
// нижний регистр, последовательности не-буквенно-цифровых символов
// заменяются одним дефисом, ведущие и завершающие дефисы убираются.
// "Engineering / Design Lead" → "engineering-design-lead".
func RoleNameToKey(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	prevHyphen := false
	for _, r := range strings.ToLower(name) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if isAlnum {
			b.WriteRune(r)
			prevHyphen = false
			continue
		}
		if !prevHyphen {
			b.WriteByte('-')
			prevHyphen = true
		}
	}

	return strings.Trim(b.String(), "-")
}
