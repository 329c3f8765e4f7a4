package syncutil

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	km := NewKeyedMutex()
	var counter, inside, maxInside int64
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("acme-corp")
			defer unlock()
			n := atomic.AddInt64(&inside, 1)
			for {
				m := atomic.LoadInt64(&maxInside)
				if n <= m || atomic.CompareAndSwapInt64(&maxInside, m, n) {
					break
				}
			}
			atomic.AddInt64(&counter, 1)
			atomic.AddInt64(&inside, -1)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(50), counter)
	assert.Equal(t, int64(1), maxInside)
}

func TestKeyedMutex_DifferentKeysDontBlock(t *testing.T) {
	km := NewKeyedMutex()
	unlockA := km.Lock("client-a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := km.Lock("client-b")
		defer unlockB()
		close(done)
	}()

	<-done
}
