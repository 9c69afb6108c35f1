package utils

import (
	"fmt"
	"sync"
)

// DynBuffer is a growable message buffer that keeps its storage across Reset.
type DynBuffer[T any] struct {
	cells []T
}

func NewDynBuffer[T any](capacity int) *DynBuffer[T] {
	return &DynBuffer[T]{cells: make([]T, 0, capacity)}
}

func (db *DynBuffer[T]) Add(cell T)   { db.cells = append(db.cells, cell) }
func (db *DynBuffer[T]) Cells() []T   { return db.cells }
func (db *DynBuffer[T]) Reset()       { db.cells = db.cells[:0] }
func (db *DynBuffer[T]) Len() (l int) { return len(db.cells) }

type MailBox[T any] struct {
	NP           int
	MessageChans []chan []T              // One for each thread
	PostMsgQs    []map[int]*DynBuffer[T] // One for each thread, key is target thread
	ReceiveMsgQs []*DynBuffer[T]         // One for each thread
	MailFlag     []bool                  // MyThread has messages in outbox
}

func NewMailBox[T any](NP int) *MailBox[T] {
	mb := &MailBox[T]{
		NP:           NP,
		MessageChans: make([]chan []T, NP),
		PostMsgQs:    make([]map[int]*DynBuffer[T], NP),
		ReceiveMsgQs: make([]*DynBuffer[T], NP),
		MailFlag:     make([]bool, NP),
	}
	for n := 0; n < NP; n++ {
		mb.MessageChans[n] = make(chan []T, NP) // Worst case is all-to-all
		mb.PostMsgQs[n] = make(map[int]*DynBuffer[T])
		mb.ReceiveMsgQs[n] = NewDynBuffer[T](0)
	}
	return mb
}

func (mb *MailBox[T]) PostMessage(myThread, targetThread int, msg T) {
	var (
		exists bool
		tgt    *DynBuffer[T]
	)
	if targetThread < 0 || targetThread > mb.NP-1 {
		panic(fmt.Sprintf("Target thread %d out of bounds", targetThread))
	}
	if tgt, exists = mb.PostMsgQs[myThread][targetThread]; !exists {
		tgt = NewDynBuffer[T](0)
		mb.PostMsgQs[myThread][targetThread] = tgt
	}
	tgt.Add(msg)
	mb.MailFlag[myThread] = true
}

// DeliverMyMessages must be called in myThread before receivers can receive.
func (mb *MailBox[T]) DeliverMyMessages(myThread int) {
	if !mb.MailFlag[myThread] {
		return
	}
	for targetThread, msgBuffer := range mb.PostMsgQs[myThread] {
		if msgBuffer.Len() == 0 {
			continue
		}
		// The receiver owns the copy, the outbox is reused on the next round
		msgs := make([]T, msgBuffer.Len())
		copy(msgs, msgBuffer.Cells())
		mb.MessageChans[targetThread] <- msgs
		msgBuffer.Reset()
	}
	mb.MailFlag[myThread] = false
}

// ReceiveMyMessages drains everything delivered so far, call after a barrier.
func (mb *MailBox[T]) ReceiveMyMessages(myThread int) []T {
	for {
		select {
		case msgs := <-mb.MessageChans[myThread]:
			for _, msg := range msgs {
				mb.ReceiveMsgQs[myThread].Add(msg)
			}
		default:
			return mb.ReceiveMsgQs[myThread].Cells()
		}
	}
}

func (mb *MailBox[T]) ClearMyMessages(myThread int) {
	mb.ReceiveMsgQs[myThread].Reset()
}

type PartitionMap struct {
	MaxIndex       int // MaxIndex is partitioned into ParallelDegree partitions
	ParallelDegree int
	Partitions     [][2]int // Beginning and end index of partitions
}

func NewPartitionMap(ParallelDegree, maxIndex int) (pm *PartitionMap) {
	if ParallelDegree < 1 {
		ParallelDegree = 1
	}
	pm = &PartitionMap{
		MaxIndex:       maxIndex,
		ParallelDegree: ParallelDegree,
		Partitions:     make([][2]int, ParallelDegree),
	}
	for n := 0; n < ParallelDegree; n++ {
		pm.Partitions[n] = pm.Split1D(n)
	}
	return
}

func (pm *PartitionMap) GetBucketRange(bucketNum int) (kMin, kMax int) {
	kMin, kMax = pm.Partitions[bucketNum][0], pm.Partitions[bucketNum][1]
	return
}

func (pm *PartitionMap) GetBucketDimension(bn int) (kMax int) {
	if bn == -1 {
		kMax = pm.MaxIndex
		return
	}
	var (
		k1, k2 = pm.GetBucketRange(bn)
	)
	kMax = k2 - k1
	return
}

func (pm *PartitionMap) Split1D(threadNum int) (bucket [2]int) {
	// This routine splits one dimension into c.ParallelDegree pieces, with a maximum imbalance of one item
	var (
		Npart            = pm.MaxIndex / (pm.ParallelDegree)
		startAdd, endAdd int
		remainder        int
	)
	remainder = pm.MaxIndex % pm.ParallelDegree
	if remainder != 0 { // spread the remainder over the first chunks evenly
		if threadNum+1 > remainder {
			startAdd = remainder
			endAdd = 0
		} else {
			startAdd = threadNum
			endAdd = 1
		}
	}
	bucket[0] = threadNum*Npart + startAdd
	bucket[1] = bucket[0] + Npart + endAdd
	return
}

// RunParallel calls f once per non-empty partition, concurrently when there is
// more than one, and returns the error of the lowest numbered failing partition.
func (pm *PartitionMap) RunParallel(f func(bn, kMin, kMax int) error) (err error) {
	var (
		NP   = pm.ParallelDegree
		errs = make([]error, NP)
		wg   = sync.WaitGroup{}
	)
	if NP == 1 {
		return f(0, pm.Partitions[0][0], pm.Partitions[0][1])
	}
	for np := 0; np < NP; np++ {
		if pm.GetBucketDimension(np) == 0 {
			continue
		}
		wg.Add(1)
		go func(np int) {
			defer wg.Done()
			kMin, kMax := pm.GetBucketRange(np)
			errs[np] = f(np, kMin, kMax)
		}(np)
	}
	wg.Wait()
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return
}
