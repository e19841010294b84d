package common

// Well-known node names and categories. Node names identify the kind of
// identifier a node carries (ORCID, DOI, FULL_NAME, ...); categories are the
// coarse entity type used for grouping and traversal filters.
const (
	PersonRootName = "person-root"

	NameFullName = "FULL_NAME"
	NameORCID    = "ORCID"
	NameDOI      = "DOI"
	NameISNI     = "ISNI"

	CategoryPerson       = "person"
	CategoryOrganization = "organization"
	CategoryProject      = "project"
	CategoryCompetence   = "competence"
)

// Standard additional property names.
const (
	PropComment  = "comment"
	PropURLMain  = "url_main"
	PropURLOther = "url_other"
	PropYear     = "year"
)

// Node is the value representation of a stored graph node.
//
// Name and Value form the globally unique identity of the node; Key is the
// deterministic composite surrogate for that pair. History is an ordered,
// append-only audit log and Sources is the sorted set of source-system tags.
// Extra holds the configurable additional properties (comment, url_main, ...).
//
// Only the node lifecycle and merge engines mutate standard and hidden
// fields; everything else treats a Node as a read-only snapshot.
type Node struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Category string            `json:"category"`
	Value    string            `json:"value"`
	Key      string            `json:"key"`
	History  []string          `json:"history"`
	Sources  []string          `json:"sources"`
	Extra    map[string]string `json:"extra,omitempty"`
}

// Same reports whether two nodes refer to the same backend record.
// Equality is defined over the opaque backend ID, never over properties.
func (n Node) Same(other Node) bool {
	return n.ID != "" && n.ID == other.ID
}

// IsZero reports whether the node is the empty "not found" value.
func (n Node) IsZero() bool {
	return n.ID == ""
}

// IsPersonRoot reports whether the node is a synthetic person root.
func (n Node) IsPersonRoot() bool {
	return n.Name == PersonRootName
}

// IsPerson reports whether the node is a personal-identifier node, i.e. a
// person-category node that is not itself a person root.
func (n Node) IsPerson() bool {
	return n.Category == CategoryPerson && !n.IsPersonRoot()
}

// HasSource reports whether tag is already in the node's source set.
func (n Node) HasSource(tag string) bool {
	for _, s := range n.Sources {
		if s == tag {
			return true
		}
	}
	return false
}
