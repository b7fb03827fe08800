package ingest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTable_NormalizesHeader(t *testing.T) {
	raw := "\xEF\xBB\xBF Name ,KATEGORIA, Lat\nAcme,Kauppa,62.1\n"

	table, err := ParseTable([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "kategoria", "lat"}, table.Header)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Acme", table.Rows[0].Get("name"))
	assert.Equal(t, "Kauppa", table.Rows[0].Get("kategoria"))
}

func TestParseTable_BOMOnlyOnFirstCell(t *testing.T) {
	raw := "name,\xEF\xBB\xBFcategory\nAcme,Shop\n"

	table, err := ParseTable([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "\xEF\xBB\xBFcategory", table.Header[1])
}

func TestParseTable_PadsShortRowsAndSkipsSeparators(t *testing.T) {
	raw := "name,category,address\n" +
		"Acme,Shop\n" +
		",,\n" +
		"Lonely,,\n" +
		"\"Quoted, Inc\",\"Say \"\"hi\"\"\",Main St 1\n"

	table, err := ParseTable([]byte(raw))
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)

	assert.Equal(t, "", table.Rows[0].Get("address"))
	assert.Equal(t, "Quoted, Inc", table.Rows[1].Get("name"))
	assert.Equal(t, `Say "hi"`, table.Rows[1].Get("category"))
}

func TestParseTable_TrimsCells(t *testing.T) {
	table, err := ParseTable([]byte("name,category\n  Acme  , Shop \n"))
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "Acme", table.Rows[0].Get("name"))
	assert.Equal(t, "Shop", table.Rows[0].Get("category"))
}

func TestParseTable_Empty(t *testing.T) {
	_, err := ParseTable(nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedSource))
}

func TestParseTable_HeaderOnly(t *testing.T) {
	table, err := ParseTable([]byte("name,category\n"))
	require.NoError(t, err)
	assert.Empty(t, table.Rows)
}

func TestParseTable_DuplicateHeaderKeepsFirstPosition(t *testing.T) {
	table, err := ParseTable([]byte("name,lat,name\nFirst,1,Second\n"))
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, []string{"name", "lat"}, table.Rows[0].Keys)
	assert.Equal(t, "Second", table.Rows[0].Get("name"))
}

func TestColumnsLookup(t *testing.T) {
	row := Row{
		Keys:   []string{"name", "nimi", "kategoria"},
		Values: map[string]string{"name": "  ", "nimi": "Kahvila", "kategoria": "Ravintola"},
	}

	assert.Equal(t, "Kahvila", DefaultColumns.Lookup(row, FieldName))
	assert.Equal(t, "Ravintola", DefaultColumns.Lookup(row, FieldCategory))
	assert.Equal(t, "", DefaultColumns.Lookup(row, FieldWebsite))

	custom := Columns{FieldName: {"toiminimi"}}
	assert.Equal(t, "", custom.Lookup(row, FieldName))
}
