package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"shopledger/internal/core/entity"
	"shopledger/internal/core/types"
)

type testCatalogEntry struct {
	entity.Catalog
	Barcode   *string     `db:"barcode" json:"barcode"`
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`
	Internal  string      `db:"-" json:"-"`
	NoTag     string
}

func TestExtractDBColumns_EmbeddedFields(t *testing.T) {
	cols := ExtractDBColumns[testCatalogEntry]()

	expected := []string{
		"id", "version", "code", "name", "is_active", "created_at", "updated_at",
		"barcode", "unit_price",
	}

	for _, col := range expected {
		assert.Contains(t, cols, col)
	}

	assert.NotContains(t, cols, "-")
	assert.Len(t, cols, len(expected))
}

func TestStructToMap_EmbeddedFields(t *testing.T) {
	barcode := "4006381333931"
	e := testCatalogEntry{
		Catalog:   entity.NewCatalog("COF-001", "Ground Coffee"),
		Barcode:   &barcode,
		UnitPrice: types.MustMoney("7.90"),
		Internal:  "skipped",
		NoTag:     "skipped",
	}

	m := StructToMap(e)

	assert.Equal(t, e.ID, m["id"])
	assert.Equal(t, 1, m["version"])
	assert.Equal(t, "COF-001", m["code"])
	assert.Equal(t, "Ground Coffee", m["name"])
	assert.Equal(t, true, m["is_active"])
	assert.Equal(t, &barcode, m["barcode"])

	_, hasSkipped := m["-"]
	assert.False(t, hasSkipped)
	assert.Len(t, m, 9)
}

func TestStructToMap_PointerInput(t *testing.T) {
	e := &testCatalogEntry{Catalog: entity.NewCatalog("A", "B")}

	m := StructToMap(e)

	assert.Equal(t, "A", m["code"])
}

func TestStructToMap_NonStruct(t *testing.T) {
	assert.Nil(t, StructToMap(42))
}
