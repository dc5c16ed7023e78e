package core

// Filter restricts which entries are eligible candidates in a nearest-neighbor query.
// It is a conjunction of equality predicates over entry metadata. Construct it with
// ByKind or ByKindAndParent.
type Filter struct {
	kind      Kind
	parent    string
	hasParent bool
}

// ByKind matches entries of the given kind.
func ByKind(kind Kind) Filter {
	return Filter{kind: kind}
}

// ByKindAndParent matches entries of the given kind owned by parent.
func ByKindAndParent(kind Kind, parent string) Filter {
	return Filter{kind: kind, parent: parent, hasParent: true}
}

// Kind returns the kind the filter requires.
func (f Filter) Kind() Kind {
	return f.kind
}

// Parent returns the required parent category and whether the filter has one.
func (f Filter) Parent() (string, bool) {
	return f.parent, f.hasParent
}

// Matches reports whether the entry satisfies every predicate of the filter.
func (f Filter) Matches(e *Entry) bool {
	if e == nil || e.Kind != f.kind {
		return false
	}
	if f.hasParent && e.ParentCategory != f.parent {
		return false
	}
	return true
}

// Where returns the filter as a metadata equality map.
func (f Filter) Where() map[string]string {
	where := map[string]string{MetadataKind: f.kind.String()}
	if f.hasParent {
		where[MetadataParentCategory] = f.parent
	}
	return where
}

// Validate checks that the filter was built with a known kind.
func (f Filter) Validate() error {
	return ValidateKind(f.kind)
}

// String renders the filter for logging.
func (f Filter) String() string {
	if f.hasParent {
		return MetadataKind + "=" + f.kind.String() + " AND " + MetadataParentCategory + "=" + f.parent
	}
	return MetadataKind + "=" + f.kind.String()
}
