package roles

import "testing"

func TestRoleNameToKey(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Engineering / Design Lead", "engineering-design-lead"},
		{"Shareholders / Board", "shareholders-board"},
		{"Procurement & Supply Chain Lead", "procurement-supply-chain-lead"},
		{"Business Owner", "business-owner"},
		{"  Spaces  Around  ", "spaces-around"},
		{"already-a-key", "already-a-key"},
		{"UPPER", "upper"},
		{"", ""},
		{"///", ""},
	}

	for _, tt := range tests {
		if got := RoleNameToKey(tt.name); got != tt.want {
			t.Errorf("RoleNameToKey(%q) = %q, ожидается %q", tt.name, got, tt.want)
		}
	}
}

func TestCatalog_KeysUnique(t *testing.T) {
	seen := make(map[string]string)
	for _, r := range Catalog() {
		if r.Key == "" {
			t.Errorf("роль %q имеет пустой ключ", r.Name)
		}
		if other, dup := seen[r.Key]; dup {
			t.Errorf("ключ %q не уникален: %q и %q", r.Key, other, r.Name)
		}
		seen[r.Key] = r.Name
	}
}

func TestCatalog_Composition(t *testing.T) {
	counts := map[string]int{}
	for _, r := range Catalog() {
		counts[r.Category]++
	}

	if counts[CategoryExternal] != 3 {
		t.Errorf("внешних ролей %d, ожидается 3", counts[CategoryExternal])
	}
	if counts[CategoryStakeholder] != 2 {
		t.Errorf("ролей акционеров %d, ожидается 2", counts[CategoryStakeholder])
	}
	if counts[CategoryInternal] != 8 {
		t.Errorf("внутренних ролей %d, ожидается 8", counts[CategoryInternal])
	}
}

func TestByKey(t *testing.T) {
	r, ok := ByKey("project-director")
	if !ok {
		t.Fatal("ByKey(project-director) не нашёл роль")
	}
	if r.Name != "Project Director" {
		t.Errorf("Name = %q, ожидается Project Director", r.Name)
	}

	if _, ok := ByKey("nonexistent"); ok {
		t.Error("ByKey(nonexistent) должен возвращать ok == false")
	}
}

func TestCatalog_ReturnsCopy(t *testing.T) {
	c := Catalog()
	c[0].Name = "mutated"

	if Catalog()[0].Name == "mutated" {
		t.Error("Catalog() должен возвращать копию, а не внутренний срез")
	}
}
