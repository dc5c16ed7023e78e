package search

import (
	"github.com/poiesic/taxonomist/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string, topK int)
	AfterEmbedding(vector []float32)
	AfterCategoryLookup(matches []core.Match)
	AfterSubcategoryLookup(category string, matches []core.Match)
	Finish(result core.Result, err error)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ int)                           {}
func (n *noopMonitor) AfterEmbedding(_ []float32)                      {}
func (n *noopMonitor) AfterCategoryLookup(_ []core.Match)              {}
func (n *noopMonitor) AfterSubcategoryLookup(_ string, _ []core.Match) {}
func (n *noopMonitor) Finish(_ core.Result, _ error)                   {}
