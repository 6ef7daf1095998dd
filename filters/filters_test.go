package filters

import (
	"testing"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterApply(t *testing.T) {
	tests := []struct {
		name        string
		build       func() *Filter
		contains    []string
		notContains []string
	}{
		{
			name:        "empty filter leaves query untouched",
			build:       New,
			notContains: []string{"WHERE"},
		},
		{
			name: "equality predicate",
			build: func() *Filter {
				return New().Where(Eq("prayer_requests.status", "active"))
			},
			contains: []string{`WHERE ("prayer_requests"."status" = 'active')`},
		},
		{
			name: "search ORs every column case-insensitively",
			build: func() *Filter {
				return New().Search("grace", "devotions.title", "users.name")
			},
			contains: []string{
				`"devotions"."title" ILIKE '%grace%'`,
				`"users"."name" ILIKE '%grace%'`,
				" OR ",
			},
		},
		{
			name: "blank search adds nothing",
			build: func() *Filter {
				return New().Search("", "devotions.title")
			},
			notContains: []string{"WHERE", "ILIKE"},
		},
		{
			name: "search and equality are ANDed",
			build: func() *Filter {
				return New().
					Search("hope", "prayer_requests.title").
					Where(Eq("prayer_requests.status", "answered"))
			},
			contains: []string{" AND ", `'answered'`, `'%hope%'`},
		},
		{
			name: "like wildcards in the term are escaped",
			build: func() *Filter {
				return New().Search("100%_sure", "devotions.title")
			},
			contains: []string{`'%100\%\_sure%'`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := tt.build().Apply(goqu.Dialect("postgres").From("devotions"))
			sql, _, err := ds.ToSQL()
			require.NoError(t, err)

			for _, fragment := range tt.contains {
				assert.Contains(t, sql, fragment)
			}
			for _, fragment := range tt.notContains {
				assert.NotContains(t, sql, fragment)
			}
		})
	}
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		name      string
		limit     string
		offset    string
		expected  Page
		expectErr bool
	}{
		{name: "defaults", expected: Page{Limit: 20, Offset: 0}},
		{name: "explicit values", limit: "5", offset: "10", expected: Page{Limit: 5, Offset: 10}},
		{name: "non-numeric limit", limit: "abc", expectErr: true},
		{name: "negative offset", offset: "-1", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := ParsePage(tt.limit, tt.offset, 20)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, page)
		})
	}
}

func TestPageApply(t *testing.T) {
	ds := Page{Limit: 20, Offset: 40}.Apply(goqu.Dialect("postgres").From("prayer_requests"))
	sql, _, err := ds.ToSQL()
	require.NoError(t, err)
	assert.Contains(t, sql, "LIMIT 20")
	assert.Contains(t, sql, "OFFSET 40")
}
