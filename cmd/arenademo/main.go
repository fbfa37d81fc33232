package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/chunkarena/arena"
	"github.com/vkngwrapper/chunkarena/memutils"
	"github.com/vkngwrapper/chunkarena/memutils/defrag"
	"github.com/vkngwrapper/chunkarena/storage"
	"golang.org/x/exp/slog"
)

type options struct {
	ticks   int
	budget  int
	seed    int64
	mapped  bool
	verbose bool
	dump    bool
}

func main() {
	var opts options
	flag.IntVar(&opts.ticks, "ticks", 200, "number of random allocate/free/defragment ticks to run after the scripted demo")
	flag.IntVar(&opts.budget, "budget", 2, "compaction steps performed per tick")
	flag.Int64Var(&opts.seed, "seed", 1, "seed for the random ticks")
	flag.BoolVar(&opts.mapped, "mapped", false, "back blocks with memory mapped storage instead of the Go heap")
	flag.BoolVar(&opts.verbose, "verbose", false, "log every arena operation")
	flag.BoolVar(&opts.dump, "dump", false, "print the registry's detailed map as json when finished")
	flag.Parse()

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.HandlerOptions{Level: level}.NewTextHandler(os.Stderr))

	err := run(logger, opts)
	if err != nil {
		logger.LogAttrs(context.Background(), slog.LevelError, "demo failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger, opts options) (err error) {
	kind := storage.KindHeap
	if opts.mapped {
		kind = storage.KindMapped
	}

	registry := arena.NewRegistry(logger, arena.RegistryCreateOptions{})
	err = registry.Startup()
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, registry.Shutdown())
	}()

	err = runScripted(registry, kind)
	if err != nil {
		return errors.Wrap(err, "scripted demo")
	}

	err = runTicks(logger, registry, kind, opts)
	if err != nil {
		return errors.Wrap(err, "random ticks")
	}

	if opts.dump {
		writer := jwriter.NewWriter()
		registry.PrintDetailedMap(&writer)
		if writer.Error() != nil {
			return writer.Error()
		}
		fmt.Println(string(writer.Bytes()))
	}

	return nil
}

func printChunk(label string, handle arena.Handle) error {
	data, err := handle.Read(storage.RoleWrite)
	if err != nil {
		return err
	}

	for _, value := range decodeVec4s(data) {
		fmt.Printf("%s: %s\n", label, value)
	}
	return nil
}

func runScripted(registry *arena.Registry, kind storage.Kind) error {
	positions, err := registry.Create("PositionBlock", arena.BlockCreateInfo{
		Capacity: 16,
		Stride:   vec4Stride,
		Kind:     kind,
	})
	if err != nil {
		return err
	}
	fmt.Println("EndIndex:", positions.EndIndex())

	emitter1, err := positions.Allocate(2)
	if err != nil {
		return err
	}
	err = emitter1.Write(storage.RoleWrite, encodeVec4s(vec4{1, 1, 1, 1}, vec4{2, 2, 2, 2}))
	if err != nil {
		return err
	}
	fmt.Println("EndIndex:", positions.EndIndex())
	err = printChunk("emitter1", emitter1)
	if err != nil {
		return err
	}

	emitter2, err := positions.Allocate(2)
	if err != nil {
		return err
	}
	err = emitter2.Write(storage.RoleWrite, encodeVec4s(vec4{3, 3, 3, 3}, vec4{4, 4, 4, 4}))
	if err != nil {
		return err
	}
	fmt.Println("EndIndex:", positions.EndIndex())
	err = printChunk("emitter2", emitter2)
	if err != nil {
		return err
	}

	err = positions.Free(emitter1)
	if err != nil {
		return err
	}
	fmt.Println("EndIndex:", positions.EndIndex())

	stats, err := positions.Defragment(defrag.Unbounded)
	if err != nil {
		return err
	}
	fmt.Println("EndIndex:", positions.EndIndex())
	fmt.Printf("Defragment: %d steps, %d chunks moved\n", stats.Steps, stats.ChunksMoved)

	err = printChunk("emitter2", emitter2)
	if err != nil {
		return err
	}

	return positions.Free(emitter2)
}

type tickChunk struct {
	handle arena.Handle
	value  vec4
}

func runTicks(logger *slog.Logger, registry *arena.Registry, kind storage.Kind, opts options) error {
	block, err := registry.Create("RandomBlock", arena.BlockCreateInfo{
		Capacity: 1024,
		Stride:   vec4Stride,
		Kind:     kind,
	})
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(opts.seed))
	var live []tickChunk
	var total defrag.Stats

	for tick := 0; tick < opts.ticks; tick++ {
		if len(live) == 0 || rng.Intn(3) > 0 {
			size := rng.Intn(16) + 1
			handle, err := block.Allocate(size)
			if errors.Is(err, memutils.ErrOutOfCapacity) {
				logger.Info("block is full", slog.Int("tick", tick), slog.Int("endIndex", block.EndIndex()))
			} else if err != nil {
				return err
			} else {
				value := vec4{float32(tick), float32(size), 0, 1}
				values := make([]vec4, size)
				for i := range values {
					values[i] = value
				}

				err = handle.Write(storage.RoleWrite, encodeVec4s(values...))
				if err != nil {
					return err
				}
				live = append(live, tickChunk{handle: handle, value: value})
			}
		}

		if len(live) > 0 && rng.Intn(2) == 0 {
			index := rng.Intn(len(live))
			err = block.Free(live[index].handle)
			if err != nil {
				return err
			}
			live = append(live[:index], live[index+1:]...)
		}

		stats, err := block.Defragment(opts.budget)
		if err != nil {
			return err
		}
		total.Add(stats)

		err = block.Validate()
		if err != nil {
			return errors.Wrapf(err, "tick %d", tick)
		}
	}

	for _, chunk := range live {
		data, err := chunk.handle.Read(storage.RoleWrite)
		if err != nil {
			return err
		}

		for _, value := range decodeVec4s(data) {
			if value != chunk.value {
				return errors.Newf("chunk %s holds %s, expected %s", chunk.handle, value, chunk.value)
			}
		}
	}

	var stats memutils.DetailedStatistics
	stats.Clear()
	block.AddDetailedStatistics(&stats)

	fmt.Printf("Ticks: %d, live chunks: %d, end index: %d, fragments: %d\n",
		opts.ticks, len(live), block.EndIndex(), stats.FragmentCount)
	fmt.Printf("Compaction: %d steps, %d chunks moved, %d elements moved, %d fragments merged, %d elements reclaimed\n",
		total.Steps, total.ChunksMoved, total.ElementsMoved, total.FragmentsMerged, total.ElementsReclaimed)

	for _, chunk := range live {
		err = block.Free(chunk.handle)
		if err != nil {
			return err
		}
	}

	return nil
}
