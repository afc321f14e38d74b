package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRowNumCoercion(t *testing.T) {
	row := Row{
		"float":   12.5,
		"int":     7,
		"string":  "10.25",
		"commas":  "1,234.5",
		"junk":    "not a number",
		"empty":   "",
		"null":    nil,
		"number":  json.Number("3.5"),
		"boolean": true,
	}

	assert.Equal(t, 12.5, row.Num("float"))
	assert.Equal(t, 7.0, row.Num("int"))
	assert.Equal(t, 10.25, row.Num("string"))
	assert.Equal(t, 1234.5, row.Num("commas"))
	assert.Equal(t, 3.5, row.Num("number"))

	// anything unparsable coerces to zero, never NaN
	assert.Equal(t, 0.0, row.Num("junk"))
	assert.Equal(t, 0.0, row.Num("empty"))
	assert.Equal(t, 0.0, row.Num("null"))
	assert.Equal(t, 0.0, row.Num("boolean"))
	assert.Equal(t, 0.0, row.Num("missing"))
}

func TestRowStr(t *testing.T) {
	row := Row{"name": "Brand Campaign", "id": 12345.0, "null": nil}

	assert.Equal(t, "Brand Campaign", row.Str("name"))
	assert.Equal(t, "12345", row.Str("id"))
	assert.Equal(t, "", row.Str("null"))
	assert.Equal(t, "", row.Str("missing"))
}

func TestReportJobStates(t *testing.T) {
	assert.True(t, ReportJob{ReportID: "r1", Status: JobProcessing}.Pollable())
	assert.False(t, ReportJob{Status: JobProcessing}.Pollable(), "no reportId means nothing to poll")
	assert.False(t, ReportJob{ReportID: "r1", Status: JobCompleted}.Pollable())
	assert.True(t, ReportJob{Status: JobError}.Terminal())
}

func TestReportCatalog(t *testing.T) {
	catalog := ReportCatalog()
	assert.Len(t, catalog, 8)

	seen := make(map[string]bool)
	for _, spec := range catalog {
		assert.False(t, seen[spec.Key], "duplicate key %s", spec.Key)
		seen[spec.Key] = true

		switch spec.AdProduct {
		case SponsoredProducts:
			assert.Equal(t, 7, spec.Window, "%s window", spec.Key)
		default:
			assert.Equal(t, 14, spec.Window, "%s window", spec.Key)
		}
		assert.Equal(t, "date", spec.Columns[0], "%s must request the date column first", spec.Key)
	}

	// mutating a returned spec must not leak into the catalog
	catalog[0].Columns[0] = "mutated"
	assert.Equal(t, "date", ReportCatalog()[0].Columns[0])
}
