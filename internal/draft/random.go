package draft

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"
	"time"
)

// LockedChooser is a PCG source safe for concurrent lotteries across runs.
type LockedChooser struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewLockedChooser seeds a PCG generator. Equal seeds give equal draws.
func NewLockedChooser(seed uint64) *LockedChooser {
	return &LockedChooser{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (c *LockedChooser) IntN(n int) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.r.IntN(n)
}

// NewSeed reads a seed from crypto/rand, falling back to the clock.
func NewSeed() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(b[:])
}
