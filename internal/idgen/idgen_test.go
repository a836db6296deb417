package idgen

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDIsParseable(t *testing.T) {
	id := New().NewID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
}

func TestNewIDUniqueUnderConcurrency(t *testing.T) {
	gen := New()

	const (
		goroutines = 16
		perRoutine = 500
	)

	var mu sync.Mutex
	seen := make(map[string]bool, goroutines*perRoutine)

	var wg sync.WaitGroup
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids := make([]string, 0, perRoutine)
			for range perRoutine {
				ids = append(ids, gen.NewID())
			}
			mu.Lock()
			for _, id := range ids {
				seen[id] = true
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, goroutines*perRoutine, "every issued id must be distinct")
}
