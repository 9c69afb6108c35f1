package utils

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionMap(t *testing.T) {
	{ // Test PartitionMap
		getHisto := func(K, Np int) (histo map[int]int) {
			pm := NewPartitionMap(Np, K)
			histo = make(map[int]int)
			for np := 0; np < pm.ParallelDegree; np++ {
				maxK := pm.GetBucketDimension(np)
				histo[maxK]++
			}
			return
		}
		getTotal := func(histo map[int]int) (total int) {
			for key, count := range histo {
				total += key * count
			}
			return
		}
		assert.Equal(t, map[int]int{0: 30, 1: 2}, getHisto(2, 32))
		assert.Equal(t, map[int]int{1: 32}, getHisto(32, 32))
		assert.Equal(t, map[int]int{8: 32}, getHisto(256, 32))
		assert.Equal(t, map[int]int{8: 1, 9: 31}, getHisto(287, 32))
		assert.Equal(t, 287, getTotal(getHisto(287, 32)))
		for n := 64; n < 10000; n++ {
			var (
				keys   [2]float64
				keyNum int
			)
			histo := getHisto(n, 32)
			for key := range histo {
				keys[keyNum] = float64(key)
				keyNum++
			}
			if keyNum == 2 {
				assert.Equal(t, 1., math.Abs(keys[0]-keys[1])) // Maximum imbalance of 1
			}
			assert.Equal(t, n, getTotal(histo))
		}
	}
}

func TestRunParallel(t *testing.T) {
	for _, NP := range []int{1, 3, 8} {
		var (
			pm   = NewPartitionMap(NP, 100)
			hits = make([]int, 100)
		)
		err := pm.RunParallel(func(bn, kMin, kMax int) error {
			for k := kMin; k < kMax; k++ {
				hits[k]++
			}
			return nil
		})
		assert.NoError(t, err)
		for k := range hits {
			assert.Equal(t, 1, hits[k])
		}
	}
	// Partitions beyond the index count are skipped
	var (
		mu    sync.Mutex
		calls []int
	)
	err := NewPartitionMap(8, 3).RunParallel(func(bn, kMin, kMax int) error {
		mu.Lock()
		calls = append(calls, bn)
		mu.Unlock()
		assert.Equal(t, 1, kMax-kMin)
		return nil
	})
	assert.NoError(t, err)
	sort.Ints(calls)
	assert.Equal(t, []int{0, 1, 2}, calls)

	pm := NewPartitionMap(4, 100)
	err = pm.RunParallel(func(bn, kMin, kMax int) error {
		if bn >= 2 {
			return fmt.Errorf("bucket %d failed", bn)
		}
		return nil
	})
	assert.EqualError(t, err, "bucket 2 failed")
}

func TestMailBox(t *testing.T) {
	var (
		NP = 4
		mb = NewMailBox[int](NP)
		wg = sync.WaitGroup{}
	)
	// Every thread sends its number to every other thread
	for n := 0; n < NP; n++ {
		for tgt := 0; tgt < NP; tgt++ {
			if tgt != n {
				mb.PostMessage(n, tgt, n)
			}
		}
	}
	for n := 0; n < NP; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			mb.DeliverMyMessages(n)
		}(n)
	}
	wg.Wait()
	for n := 0; n < NP; n++ {
		msgs := append([]int{}, mb.ReceiveMyMessages(n)...)
		sort.Ints(msgs)
		var exp []int
		for src := 0; src < NP; src++ {
			if src != n {
				exp = append(exp, src)
			}
		}
		assert.Equal(t, exp, msgs)
		mb.ClearMyMessages(n)
		assert.Equal(t, 0, len(mb.ReceiveMyMessages(n)))
	}
	assert.Panics(t, func() { mb.PostMessage(0, NP, 1) })
}
