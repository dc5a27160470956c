package dao

import "testing"

// TestBuildOrderClause 排序子句受白名单约束
func TestBuildOrderClause(t *testing.T) {
	cases := []struct {
		orderBy   string
		sortOrder string
		want      string
	}{
		{"id", "ASC", "id ASC"},
		{"id", "asc", "id ASC"},
		{"date_modified", "DESC", "date_modified DESC"},
		{"date_modified", "desc", "date_modified DESC"},
		{"item_id", "", "item_id ASC"},
		{"item_id", "sideways", "item_id ASC"},
		{"", "DESC", ""},
		{"content", "ASC", ""},
		{"id; DROP TABLE invitations", "ASC", ""},
	}

	for _, c := range cases {
		got := buildOrderClause(c.orderBy, c.sortOrder)
		if got != c.want {
			t.Errorf("buildOrderClause(%q, %q) = %q, 期望 %q", c.orderBy, c.sortOrder, got, c.want)
		}
	}
}
