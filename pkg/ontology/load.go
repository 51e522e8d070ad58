package ontology

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Load reads the ontology document at path, choosing the parser by file extension:
// .yaml/.yml use the YAML interchange format, everything else is read as RDF/XML.
func Load(path string) (*Ontology, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ontology: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(f, path)
	default:
		return ParseRDFXML(f, path)
	}
}
