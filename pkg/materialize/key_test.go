package materialize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name   string
		iri    string
		want   string
		wantOK bool
	}{
		{"hash fragment", "http://www.fairsharing.org/ontology/DRAO_0000001#Biology", "Biology", true},
		{"slash segment", "http://www.fairsharing.org/ontology/SRAO_0000042", "SRAO_0000042", true},
		{"hash wins over slash", "http://example.org/a/b#c/d", "c/d", true},
		{"first hash wins", "http://example.org/onto#Part#Sub", "Part#Sub", true},
		{"angle brackets", "<http://example.org/onto#Cell>", "Cell", true},
		{"trailing whitespace", "http://example.org/onto#Cell \n", "Cell", true},
		{"obo style", "http://purl.obolibrary.org/obo/NCBITaxon_9606", "NCBITaxon_9606", true},
		{"no separator", "Cell", "Cell", false},
		{"empty fragment", "http://example.org/onto#", "http://example.org/onto#", false},
		{"trailing slash", "http://example.org/onto/", "http://example.org/onto/", false},
		{"bracketed no separator", "<Cell>", "Cell", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeKey(tt.iri)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestNormalizeKeyCollapsesNamespaces(t *testing.T) {
	a, _ := NormalizeKey("http://one.example.org/onto#Cell")
	b, _ := NormalizeKey("http://two.example.org/other/Cell")
	assert.Equal(t, a, b)
}
