package client

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuardRejectsSecondAcquire(t *testing.T) {
	var g Guard

	release, err := g.Acquire()
	require.NoError(t, err)
	assert.True(t, g.Busy())

	_, err = g.Acquire()
	assert.ErrorIs(t, err, ErrInFlight)

	release()
	release()
	assert.False(t, g.Busy())

	again, err := g.Acquire()
	require.NoError(t, err)
	again()
}

func TestGuardAdmitsOneConcurrentCaller(t *testing.T) {
	var (
		g       Guard
		wins    atomic.Int32
		losses  atomic.Int32
		holding sync.WaitGroup
		start   = make(chan struct{})
		finish  = make(chan struct{})
	)

	const callers = 32
	holding.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer holding.Done()
			<-start
			release, err := g.Acquire()
			if err != nil {
				losses.Add(1)
				return
			}
			wins.Add(1)
			<-finish
			release()
		}()
	}

	close(start)
	require.Eventually(t, func() bool { return losses.Load() == callers-1 }, timeout, tick)
	close(finish)
	holding.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.False(t, g.Busy())
}
