package identity

import (
	"strings"

	"github.com/OFFIS-RIT/atlas/pkg/common"
)

// wellKnownURLs maps identifier node names to resolver URL prefixes.
var wellKnownURLs = map[string]string{
	common.NameORCID: "https://orcid.org/",
	common.NameDOI:   "https://doi.org/",
	common.NameISNI:  "https://isni.org/isni/",
	"ROR":            "https://ror.org/",
	"OPENALEX_ID":    "https://openalex.org/",
	"SCOPUS_ID":      "https://www.scopus.com/authid/detail.uri?authorId=",
}

// WellKnownURL builds the default url_main for an identifier node, or ""
// when the identifier type has no public resolver.
func WellKnownURL(name, value string) string {
	prefix, ok := wellKnownURLs[name]
	if !ok {
		return ""
	}
	return prefix + strings.TrimSpace(value)
}
