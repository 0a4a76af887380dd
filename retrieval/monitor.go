package retrieval

import "github.com/poiesic/chronicle/core"

// Monitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps during a search.
type Monitor interface {
	Start(query string)
	AfterChunkSearch(matches []*core.ChunkMatch)
	AfterDocumentDedupe(ids []core.ID)
	Finish(candidates []*core.Document)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                        {}
func (n *noopMonitor) AfterChunkSearch(_ []*core.ChunkMatch) {}
func (n *noopMonitor) AfterDocumentDedupe(_ []core.ID)       {}
func (n *noopMonitor) Finish(_ []*core.Document)             {}
