package dependencies

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// UUIDGenerator produces identifiers for new entities.
type UUIDGenerator interface {
	New() uuid.UUID
}

type liveUUID struct{}

func LiveUUID() UUIDGenerator { return liveUUID{} }

func (liveUUID) New() uuid.UUID { return uuid.New() }

// IncrementingUUID yields 00000000-0000-0000-0000-000000000000,
// 00000000-0000-0000-0000-000000000001 and so on.
type IncrementingUUID struct {
	mu   sync.Mutex
	next uint64
}

func NewIncrementingUUID() *IncrementingUUID {
	return &IncrementingUUID{}
}

func (g *IncrementingUUID) New() uuid.UUID {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := UUIDNumber(g.next)
	g.next++
	return id
}

// UUIDNumber is the n-th UUID an IncrementingUUID yields.
func UUIDNumber(n uint64) uuid.UUID {
	return uuid.MustParse(fmt.Sprintf("00000000-0000-0000-0000-%012x", n))
}
