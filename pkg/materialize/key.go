package materialize

import (
	"strings"
)

// RootKey is the key of the node standing for owl:Thing.
const RootKey = "owl:Thing"

const keyTerminators = "> \t\r\n"

// NormalizeKey derives the node key of a class from its IRI: the fragment after the first '#',
// or, without one, the segment after the last '/'. Surrounding angle brackets and trailing
// terminators are dropped. When no non-empty fragment can be found the trimmed IRI itself is
// returned with ok=false.
func NormalizeKey(iri string) (key string, ok bool) {
	raw := strings.TrimSpace(iri)
	raw = strings.TrimPrefix(raw, "<")
	raw = strings.TrimRight(raw, keyTerminators)

	sep := strings.IndexByte(raw, '#')
	if sep < 0 {
		sep = strings.LastIndexByte(raw, '/')
	}
	if sep < 0 {
		return raw, false
	}

	fragment := strings.TrimRight(raw[sep+1:], keyTerminators)
	if fragment == "" {
		return raw, false
	}
	return fragment, true
}
