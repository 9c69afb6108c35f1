package parallel

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/notargets/goale/utils"
)

// ErrTeamAborted is returned by collective calls once another rank of the
// team has failed.
var ErrTeamAborted = errors.New("team aborted by a failed rank")

// Team runs NP in-process ranks as goroutines. Collective calls meet at a
// barrier, shared DOF values travel through a mailbox.
type Team struct {
	NP        int
	barrier   *barrier
	mb        *utils.MailBox[sharedValue]
	reduceBuf [][]float64
	// Per rank, local DOF index to global id for shared DOFs
	shared []map[int]int
	// Global id to the ranks holding it
	holders map[int][]int
}

type sharedValue struct {
	Src, Global int
	Val         float64
}

func NewTeam(NP int) (tm *Team) {
	if NP < 1 {
		NP = 1
	}
	tm = &Team{
		NP:        NP,
		barrier:   newBarrier(NP),
		mb:        utils.NewMailBox[sharedValue](NP),
		reduceBuf: make([][]float64, NP),
		shared:    make([]map[int]int, NP),
		holders:   make(map[int][]int),
	}
	for n := 0; n < NP; n++ {
		tm.shared[n] = make(map[int]int)
	}
	return
}

// Share declares that DOF local on rank holds the global DOF global. It must
// be called for every holder before Run.
func (tm *Team) Share(rank, local, global int) {
	if rank < 0 || rank >= tm.NP {
		panic(fmt.Errorf("rank %d out of range [0,%d)", rank, tm.NP))
	}
	if _, present := tm.shared[rank][local]; present {
		panic(fmt.Errorf("local DOF %d on rank %d is already shared", local, rank))
	}
	tm.shared[rank][local] = global
	tm.holders[global] = append(tm.holders[global], rank)
}

// Comm returns the communicator of one rank.
func (tm *Team) Comm(rank int) Communicator {
	return &teamComm{tm: tm, rank: rank}
}

// Run calls f concurrently on every rank. When a rank fails the team is
// aborted, ranks blocked in or later entering a collective call get
// ErrTeamAborted. The error of the lowest rank that failed on its own is
// returned.
func (tm *Team) Run(f func(comm Communicator) error) (err error) {
	var (
		pm   = utils.NewPartitionMap(tm.NP, tm.NP)
		errs = make([]error, tm.NP)
	)
	tm.reset()
	_ = pm.RunParallel(func(bn, _, _ int) error {
		if errs[bn] = f(tm.Comm(bn)); errs[bn] != nil {
			tm.barrier.Abort()
		}
		return nil
	})
	for _, e := range errs {
		if e != nil && !errors.Is(e, ErrTeamAborted) {
			return e
		}
		if e != nil && err == nil {
			err = e
		}
	}
	return
}

// reset clears what an aborted run may have left behind.
func (tm *Team) reset() {
	tm.barrier.Reset()
	for n := 0; n < tm.NP; n++ {
		tm.mb.ReceiveMyMessages(n)
		tm.mb.ClearMyMessages(n)
		for _, buf := range tm.mb.PostMsgQs[n] {
			buf.Reset()
		}
		tm.mb.MailFlag[n] = false
		tm.reduceBuf[n] = nil
	}
}

type teamComm struct {
	tm   *Team
	rank int
}

func (tc *teamComm) Rank() int { return tc.rank }
func (tc *teamComm) Size() int { return tc.tm.NP }

func (tc *teamComm) AllReduce(op ReduceOp, vals []float64) (err error) {
	var (
		tm = tc.tm
	)
	if op > Max {
		return fmt.Errorf("unknown reduction %v", op)
	}
	buf := make([]float64, len(vals))
	copy(buf, vals)
	tm.reduceBuf[tc.rank] = buf
	if err = tm.barrier.Wait(); err != nil {
		return
	}
	for n := 0; n < tm.NP; n++ {
		if len(tm.reduceBuf[n]) != len(vals) {
			err = fmt.Errorf("rank %d reduces %d values, rank %d reduces %d",
				tc.rank, len(vals), n, len(tm.reduceBuf[n]))
			break
		}
	}
	if err == nil {
		copy(vals, tm.reduceBuf[0])
		for n := 1; n < tm.NP; n++ {
			for i, v := range tm.reduceBuf[n] {
				vals[i] = op.Apply(vals[i], v)
			}
		}
	}
	// Nobody overwrites the buffers before everyone has read them
	if werr := tm.barrier.Wait(); werr != nil {
		return werr
	}
	return
}

func (tc *teamComm) ExchangeShared(vals []float64) (err error) {
	var (
		tm     = tc.tm
		myRank = tc.rank
		mine   = tm.shared[myRank]
	)
	for local, global := range mine {
		if local >= len(vals) {
			err = fmt.Errorf("shared DOF %d is outside of %d local values", local, len(vals))
			continue
		}
		for _, peer := range tm.holders[global] {
			if peer != myRank {
				tm.mb.PostMessage(myRank, peer, sharedValue{Src: myRank, Global: global, Val: vals[local]})
			}
		}
	}
	tm.mb.DeliverMyMessages(myRank)
	if werr := tm.barrier.Wait(); werr != nil {
		return werr
	}
	contributions := make(map[int][]sharedValue, len(mine))
	for _, msg := range tm.mb.ReceiveMyMessages(myRank) {
		contributions[msg.Global] = append(contributions[msg.Global], msg)
	}
	tm.mb.ClearMyMessages(myRank)
	for local, global := range mine {
		if local >= len(vals) {
			continue
		}
		cs := append(contributions[global], sharedValue{Src: myRank, Global: global, Val: vals[local]})
		// Rank order makes the sum identical on every holder
		sort.Slice(cs, func(i, j int) bool { return cs[i].Src < cs[j].Src })
		var sum float64
		for _, c := range cs {
			sum += c.Val
		}
		vals[local] = sum / float64(len(cs))
	}
	if werr := tm.barrier.Wait(); werr != nil {
		return werr
	}
	return
}

// barrier is a reusable rendezvous for a fixed number of goroutines. Once
// aborted every Wait returns ErrTeamAborted until Reset.
type barrier struct {
	mu         sync.Mutex
	cond       *sync.Cond
	n, waiting int
	generation int
	aborted    bool
}

func newBarrier(n int) (b *barrier) {
	b = &barrier{n: n}
	b.cond = sync.NewCond(&b.mu)
	return
}

func (b *barrier) Wait() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.aborted {
		return ErrTeamAborted
	}
	gen := b.generation
	b.waiting++
	if b.waiting == b.n {
		b.waiting = 0
		b.generation++
		b.cond.Broadcast()
		return nil
	}
	for gen == b.generation && !b.aborted {
		b.cond.Wait()
	}
	if gen == b.generation {
		return ErrTeamAborted
	}
	return nil
}

func (b *barrier) Abort() {
	b.mu.Lock()
	b.aborted = true
	b.cond.Broadcast()
	b.mu.Unlock()
}

func (b *barrier) Reset() {
	b.mu.Lock()
	b.aborted, b.waiting = false, 0
	b.mu.Unlock()
}
