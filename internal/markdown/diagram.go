package markdown

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// idGenerator hands out element ids for a single render.
type idGenerator struct {
	next int
}

// diagram returns an id combining a stable hash of content with a counter that
// increases for every id handed out during the render.
func (g *idGenerator) diagram(content string) string {
	id := fmt.Sprintf("graph-mermaid-%016x-%d", xxhash.Sum64String(content), g.next)
	g.next++
	return id
}
