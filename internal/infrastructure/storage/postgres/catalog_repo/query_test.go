package catalog_repo

import (
	"testing"

	"github.com/Masterminds/squirrel"
)

func TestBaseSelect_SQL(t *testing.T) {
	repo := NewBaseCatalogRepo[any](nil, "test_table", []string{"id", "code", "name"}, func() any { return nil })

	tests := []struct {
		name     string
		build    func() squirrel.SelectBuilder
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "plain select",
			build:   repo.baseSelect,
			wantSQL: "SELECT id, code, name FROM test_table",
		},
		{
			name: "by code",
			build: func() squirrel.SelectBuilder {
				return repo.baseSelect().Where(squirrel.Eq{"code": "COF-001"}).Limit(1)
			},
			wantSQL:  "SELECT id, code, name FROM test_table WHERE code = $1 LIMIT 1",
			wantArgs: []any{"COF-001"},
		},
		{
			name: "search with pagination",
			build: func() squirrel.SelectBuilder {
				return repo.baseSelect().
					Where(squirrel.ILike{"name": "%coffee%"}).
					OrderBy("name").
					Limit(20).
					Offset(40)
			},
			wantSQL:  "SELECT id, code, name FROM test_table WHERE name ILIKE $1 ORDER BY name LIMIT 20 OFFSET 40",
			wantArgs: []any{"%coffee%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := tt.build().ToSql()
			if err != nil {
				t.Fatalf("ToSql failed: %v", err)
			}

			if sql != tt.wantSQL {
				t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", tt.wantSQL, sql)
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("Args count mismatch\nwant: %d\ngot:  %d", len(tt.wantArgs), len(args))
			}
			for i := range args {
				if args[i] != tt.wantArgs[i] {
					t.Errorf("Args mismatch at %d\nwant: %v\ngot:  %v", i, tt.wantArgs[i], args[i])
				}
			}
		})
	}
}
