// internal/applications/idgen.go
package applications

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
)

// IDGenerator hands out application ids. Ids must never repeat.
type IDGenerator interface {
	NextID(ctx context.Context) (ApplicationID, error)
}

// CounterIDGenerator issues app-000001, app-000002, ... from an in-process
// counter that is safe for concurrent use.
type CounterIDGenerator struct {
	next atomic.Uint64
}

// NewCounterIDGenerator starts at start; zero is treated as one.
func NewCounterIDGenerator(start uint64) *CounterIDGenerator {
	if start == 0 {
		start = 1
	}
	g := &CounterIDGenerator{}
	g.next.Store(start)
	return g
}

func (g *CounterIDGenerator) NextID(context.Context) (ApplicationID, error) {
	return FormatID(g.next.Add(1) - 1), nil
}

func FormatID(seq uint64) ApplicationID {
	return ApplicationID(fmt.Sprintf("app-%06d", seq))
}

// ParseID extracts the sequence number from an id made by FormatID.
func ParseID(id ApplicationID) (uint64, bool) {
	digits, ok := strings.CutPrefix(string(id), "app-")
	if !ok || digits == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
