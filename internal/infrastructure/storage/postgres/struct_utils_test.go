package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"omnicrm/internal/core/entity"
	"omnicrm/internal/core/id"
)

type mockRecord struct {
	entity.Record
	Name  string `db:"name" json:"name"`
	Phone string `db:"phone" json:"phone"`
}

func TestExtractDBColumns_EmbeddedRecord(t *testing.T) {
	cols := ExtractDBColumns[mockRecord]()

	expectedCols := []string{
		"id", "deletion_mark", "version", "attributes",
		"created_at", "updated_at", "created_by", "updated_by",
		"name", "phone",
	}

	for _, expected := range expectedCols {
		assert.Contains(t, cols, expected)
	}
	assert.Len(t, cols, len(expectedCols))
}

func TestStructToMap_EmbeddedRecord(t *testing.T) {
	rec := mockRecord{
		Record: entity.NewRecord(),
		Name:   "Amira",
		Phone:  "+971501234567",
	}

	m := StructToMap(rec)

	assert.Equal(t, "Amira", m["name"])
	assert.Equal(t, "+971501234567", m["phone"])
	assert.Equal(t, rec.ID, m["id"])
	assert.Equal(t, 1, m["version"])
	assert.Equal(t, false, m["deletion_mark"])
	assert.WithinDuration(t, time.Now(), m["created_at"].(time.Time), time.Minute)
}

func TestStructToMap_PointerInput(t *testing.T) {
	rec := &mockRecord{Record: entity.NewRecord(), Name: "Omar"}

	m := StructToMap(rec)

	assert.Equal(t, "Omar", m["name"])
	assert.IsType(t, id.ID{}, m["id"])
}

func TestStructToMap_SkipsUntaggedFields(t *testing.T) {
	type withUntagged struct {
		Tagged   string `db:"tagged"`
		Ignored  string `db:"-"`
		Untagged string
	}

	m := StructToMap(withUntagged{Tagged: "x", Ignored: "y", Untagged: "z"})

	assert.Equal(t, map[string]any{"tagged": "x"}, m)
}
