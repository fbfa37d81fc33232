package defrag_test

import (
	"math/rand"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/chunkarena/memutils/defrag"
	"github.com/vkngwrapper/chunkarena/memutils/ledger"
)

func bumpAll(t *testing.T, l *ledger.Ledger, sizes ...int) []*ledger.Chunk {
	chunks := make([]*ledger.Chunk, 0, len(sizes))
	for _, size := range sizes {
		chunk, err := l.Bump(size)
		require.NoError(t, err)
		chunks = append(chunks, chunk)
	}
	return chunks
}

func TestCompactorScenario(t *testing.T) {
	l := ledger.NewLedger()
	l.Init(16)
	chunks := bumpAll(t, l, 2, 2, 2)

	_, err := l.Release(chunks[0])
	require.NoError(t, err)
	require.Equal(t, 6, l.EndIndex())

	var moves []defrag.Move
	compactor := defrag.Compactor{
		Ledger: l,
		Handler: func(move defrag.Move) error {
			moves = append(moves, move)
			return nil
		},
	}

	pass := defrag.PassContext{MaxSteps: defrag.Unbounded}
	done, err := compactor.Run(&pass)
	require.NoError(t, err)
	require.True(t, done)

	require.Equal(t, []defrag.Move{
		{Chunk: chunks[1], SrcOffset: 2, DstOffset: 0, Size: 2},
		{Chunk: chunks[2], SrcOffset: 4, DstOffset: 2, Size: 2},
	}, moves)
	require.Equal(t, defrag.Stats{
		Steps:             3,
		ChunksMoved:       2,
		ElementsMoved:     4,
		ElementsReclaimed: 2,
	}, pass.Stats)

	require.Equal(t, ledger.Chunk{Start: 0, Size: 2}, *chunks[1])
	require.Equal(t, ledger.Chunk{Start: 2, Size: 2}, *chunks[2])
	require.Equal(t, 4, l.EndIndex())
	require.Equal(t, 0, l.FragmentCount())
	require.NoError(t, l.Validate())
}

func TestCompactorIncremental(t *testing.T) {
	l := ledger.NewLedger()
	l.Init(16)
	chunks := bumpAll(t, l, 2, 2, 2)

	_, err := l.Release(chunks[0])
	require.NoError(t, err)

	compactor := defrag.Compactor{Ledger: l}

	var total defrag.Stats
	for turn := 0; turn < 3; turn++ {
		pass := defrag.PassContext{MaxSteps: 1}
		done, err := compactor.Run(&pass)
		require.NoError(t, err)
		require.Equal(t, 1, pass.Stats.Steps)
		require.NoError(t, l.Validate())
		require.Equal(t, turn == 2, done)
		total.Add(pass.Stats)
	}

	require.Equal(t, 3, total.Steps)
	require.Equal(t, 4, l.EndIndex())

	result, err := compactor.Step()
	require.NoError(t, err)
	require.Equal(t, defrag.StepIdle, result)
}

func TestCompactorZeroBudget(t *testing.T) {
	l := ledger.NewLedger()
	l.Init(16)
	chunks := bumpAll(t, l, 2, 2)

	_, err := l.Release(chunks[0])
	require.NoError(t, err)

	compactor := defrag.Compactor{Ledger: l}
	pass := defrag.PassContext{MaxSteps: 0}
	done, err := compactor.Run(&pass)
	require.NoError(t, err)
	require.False(t, done)
	require.Equal(t, defrag.Stats{}, pass.Stats)
	require.Equal(t, 1, l.FragmentCount())

	pass.MaxSteps = -1
	_, err = compactor.Run(&pass)
	require.Error(t, err)
}

func TestCompactorIdempotent(t *testing.T) {
	l := ledger.NewLedger()
	l.Init(16)
	bumpAll(t, l, 3, 5)

	called := false
	compactor := defrag.Compactor{
		Ledger: l,
		Handler: func(move defrag.Move) error {
			called = true
			return nil
		},
	}

	pass := defrag.PassContext{MaxSteps: defrag.Unbounded}
	done, err := compactor.Run(&pass)
	require.NoError(t, err)
	require.True(t, done)
	require.False(t, called)
	require.Equal(t, defrag.Stats{}, pass.Stats)
	require.Equal(t, 8, l.EndIndex())
	require.Equal(t, 2, l.AllocationCount())
}

func TestCompactorMerge(t *testing.T) {
	l := ledger.NewLedger()
	l.Init(16)
	chunks := bumpAll(t, l, 1, 2, 3, 4)

	_, err := l.Release(chunks[1])
	require.NoError(t, err)
	_, err = l.Release(chunks[0])
	require.NoError(t, err)

	compactor := defrag.Compactor{Ledger: l}

	result, err := compactor.Step()
	require.NoError(t, err)
	require.Equal(t, defrag.StepMerged, result)
	require.Equal(t, ledger.Chunk{Start: 0, Size: 3}, *chunks[0])
	require.Equal(t, 1, l.FragmentCount())
	require.NoError(t, l.Validate())

	pass := defrag.PassContext{MaxSteps: defrag.Unbounded}
	done, err := compactor.Run(&pass)
	require.NoError(t, err)
	require.True(t, done)
	require.Equal(t, ledger.Chunk{Start: 0, Size: 3}, *chunks[2])
	require.Equal(t, ledger.Chunk{Start: 3, Size: 4}, *chunks[3])
	require.Equal(t, 7, l.EndIndex())
}

func TestCompactorOverlappingMove(t *testing.T) {
	l := ledger.NewLedger()
	l.Init(16)
	chunks := bumpAll(t, l, 1, 5, 1)

	_, err := l.Release(chunks[0])
	require.NoError(t, err)

	var move defrag.Move
	compactor := defrag.Compactor{
		Ledger: l,
		Handler: func(m defrag.Move) error {
			move = m
			return nil
		},
	}

	result, err := compactor.Step()
	require.NoError(t, err)
	require.Equal(t, defrag.StepSwapped, result)
	require.Equal(t, 1, move.SrcOffset)
	require.Equal(t, 0, move.DstOffset)
	require.Equal(t, 5, move.VacatedOffset())
	require.Equal(t, 1, move.VacatedSize())

	fragment, ok := l.LowestFragment()
	require.True(t, ok)
	require.Equal(t, ledger.Chunk{Start: move.VacatedOffset(), Size: move.VacatedSize()}, *fragment)
}

func TestCompactorHandlerError(t *testing.T) {
	l := ledger.NewLedger()
	l.Init(16)
	chunks := bumpAll(t, l, 2, 2, 2)

	_, err := l.Release(chunks[0])
	require.NoError(t, err)

	copyFailed := errors.New("copy failed")
	compactor := defrag.Compactor{
		Ledger: l,
		Handler: func(move defrag.Move) error {
			return copyFailed
		},
	}

	pass := defrag.PassContext{MaxSteps: defrag.Unbounded}
	done, err := compactor.Run(&pass)
	require.ErrorIs(t, err, copyFailed)
	require.False(t, done)
	require.Equal(t, 0, pass.Stats.Steps)

	require.Equal(t, ledger.Chunk{Start: 2, Size: 2}, *chunks[1])
	require.Equal(t, 1, l.FragmentCount())
	require.NoError(t, l.Validate())
}

func TestCompactorConvergence(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for iteration := 0; iteration < 200; iteration++ {
		l := ledger.NewLedger()
		l.Init(512)

		var live []*ledger.Chunk
		for {
			chunk, err := l.Bump(rng.Intn(8) + 1)
			if err != nil {
				break
			}
			live = append(live, chunk)
		}

		rng.Shuffle(len(live), func(i, j int) { live[i], live[j] = live[j], live[i] })
		freeCount := rng.Intn(len(live) + 1)
		for _, chunk := range live[:freeCount] {
			_, err := l.Release(chunk)
			require.NoError(t, err)
			require.NoError(t, l.Validate())
		}
		survivors := live[freeCount:]

		allocatedBefore := l.AllocatedElements()
		stepBound := l.FragmentCount() + l.AllocationCount() + 1

		compactor := defrag.Compactor{Ledger: l}
		for {
			pass := defrag.PassContext{MaxSteps: rng.Intn(4) + 1}
			done, err := compactor.Run(&pass)
			require.NoError(t, err)
			require.NoError(t, l.Validate())
			stepBound -= pass.Stats.Steps
			require.GreaterOrEqual(t, stepBound, 0)
			if done {
				break
			}
		}

		require.Equal(t, 0, l.FragmentCount())
		require.Equal(t, allocatedBefore, l.EndIndex())
		require.Equal(t, len(survivors), l.AllocationCount())
	}
}

type brokenLedger struct {
	fragment ledger.Chunk
	endIndex int
}

func (b *brokenLedger) EndIndex() int      { return b.endIndex }
func (b *brokenLedger) FragmentCount() int { return 1 }
func (b *brokenLedger) LowestFragment() (*ledger.Chunk, bool) {
	return &b.fragment, true
}
func (b *brokenLedger) AllocatedAt(start int) (*ledger.Chunk, bool)  { return nil, false }
func (b *brokenLedger) FragmentedAt(start int) (*ledger.Chunk, bool) { return nil, false }
func (b *brokenLedger) AbsorbTail(fragment *ledger.Chunk)            {}
func (b *brokenLedger) SlidePast(fragment *ledger.Chunk, chunk *ledger.Chunk) {
}
func (b *brokenLedger) Merge(fragment *ledger.Chunk, next *ledger.Chunk) {}

func TestCompactorBrokenTiling(t *testing.T) {
	compactor := defrag.Compactor{
		Ledger: &brokenLedger{
			fragment: ledger.Chunk{Start: 0, Size: 2},
			endIndex: 8,
		},
	}

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		require.True(t, errors.IsAssertionFailure(err))
	}()

	_, _ = compactor.Step()
}
