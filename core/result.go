package core

// Outcome classifies the result of a hierarchical search.
type Outcome int

const (
	// OutcomeNoMatch means no category matched the query at all.
	OutcomeNoMatch Outcome = iota
	// OutcomeCategoryOnly means a category matched but it has no subcategories.
	OutcomeCategoryOnly
	// OutcomeMatch means both a category and a subcategory matched.
	OutcomeMatch
)

// String returns a stable name for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeNoMatch:
		return "no_match"
	case OutcomeCategoryOnly:
		return "category_only"
	case OutcomeMatch:
		return "match"
	default:
		return "unknown"
	}
}

// Result is the answer to a hierarchical search.
// Category is set unless Outcome is OutcomeNoMatch; Subcategory is set only
// when Outcome is OutcomeMatch.
type Result struct {
	Outcome     Outcome
	Category    string
	Subcategory string

	// Ranked candidates from each stage, best first.
	Categories    []Match
	Subcategories []Match
}

// NoMatch returns the empty-collection outcome.
func NoMatch() Result {
	return Result{Outcome: OutcomeNoMatch}
}

// HasCategory reports whether a category was found.
func (r Result) HasCategory() bool {
	return r.Outcome != OutcomeNoMatch
}

// HasSubcategory reports whether a subcategory was found.
func (r Result) HasSubcategory() bool {
	return r.Outcome == OutcomeMatch
}
