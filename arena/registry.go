package arena

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/chunkarena/arena/internal/utils"
	"github.com/vkngwrapper/chunkarena/memutils"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
)

const registryInitialSize uint32 = 16

type registryEntry struct {
	name  string
	block *Block
}

// Registry owns a set of long-lived blocks and makes them discoverable by name. A Registry must be
// started with Startup before use; Shutdown releases every block it still owns.
//
// Names are hashed into 64-bit keys. Blocks whose names collide share a bucket and are told apart
// by comparing the full name.
type Registry struct {
	logger *slog.Logger
	flags  RegistryCreateFlags
	mutex  utils.OptionalRWMutex

	started bool
	count   int
	buckets *swiss.Map[uint64, []*registryEntry]
}

// NewRegistry creates a Registry that has not yet been started.
//
// logger - The logger used by the registry and passed on to the blocks it creates. If nil,
// output is discarded.
func NewRegistry(logger *slog.Logger, options RegistryCreateOptions) *Registry {
	if logger == nil {
		logger = discardLogger()
	}

	return &Registry{
		logger: logger,
		flags:  options.Flags,
		mutex: utils.OptionalRWMutex{
			UseMutex: options.Flags&RegistryCreateExternallySynchronized == 0,
		},
	}
}

func nameKey(name string) uint64 {
	return xxhash.Sum64String(name)
}

// Startup prepares the registry to create blocks
func (r *Registry) Startup() error {
	r.logger.Debug("Registry::Startup")

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.started {
		return errors.New("registry has already been started")
	}

	r.buckets = swiss.NewMap[uint64, []*registryEntry](registryInitialSize)
	r.count = 0
	r.started = true
	return nil
}

// Shutdown releases every block the registry still owns and returns the registry to its unstarted
// state. Release failures do not stop the shutdown; they are combined and returned together.
func (r *Registry) Shutdown() error {
	r.logger.Debug("Registry::Shutdown")

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.started {
		return memutils.ErrNotStarted
	}

	var err error
	r.buckets.Iter(func(key uint64, bucket []*registryEntry) bool {
		for _, entry := range bucket {
			if entry.block.IsReleased() {
				continue
			}
			releaseErr := entry.block.Release()
			if releaseErr != nil {
				err = errors.CombineErrors(err, errors.Wrapf(releaseErr, "failed to release block %q", entry.name))
			}
		}
		return false
	})

	r.buckets = nil
	r.count = 0
	r.started = false
	return err
}

// Create builds a new block from info and registers it under name. memutils.ErrNameAlreadyExists
// is returned if name is taken.
func (r *Registry) Create(name string, info BlockCreateInfo) (*Block, error) {
	r.logger.Debug("Registry::Create",
		slog.String("name", name),
		slog.Int("capacity", info.Capacity),
		slog.Int("stride", info.Stride),
		slog.String("kind", info.Kind.String()),
	)

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.started {
		return nil, memutils.ErrNotStarted
	}

	key := nameKey(name)
	bucket, _ := r.buckets.Get(key)
	if findEntry(bucket, name) >= 0 {
		return nil, errors.Wrapf(memutils.ErrNameAlreadyExists, "block name %q", name)
	}

	block, err := New(r.logger.With(slog.String("block", name)), info)
	if err != nil {
		return nil, err
	}

	r.buckets.Put(key, append(bucket, &registryEntry{name: name, block: block}))
	r.count++
	return block, nil
}

// Get returns the block registered under name, or memutils.ErrNameNotFound
func (r *Registry) Get(name string) (*Block, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if !r.started {
		return nil, memutils.ErrNotStarted
	}

	bucket, _ := r.buckets.Get(nameKey(name))
	index := findEntry(bucket, name)
	if index < 0 {
		return nil, errors.Wrapf(memutils.ErrNameNotFound, "block name %q", name)
	}

	return bucket[index].block, nil
}

// Remove releases the block registered under name and drops it from the registry. The name can
// be reused immediately, even if releasing the block's storage failed. A block that was already
// released directly is dropped without error.
func (r *Registry) Remove(name string) error {
	r.logger.Debug("Registry::Remove", slog.String("name", name))

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.started {
		return memutils.ErrNotStarted
	}

	key := nameKey(name)
	bucket, _ := r.buckets.Get(key)
	index := findEntry(bucket, name)
	if index < 0 {
		return errors.Wrapf(memutils.ErrNameNotFound, "block name %q", name)
	}

	return r.removeAt(key, bucket, index)
}

// RemoveBlock releases block and drops it from the registry. memutils.ErrBlockNotFound is
// returned if the registry does not own block.
func (r *Registry) RemoveBlock(block *Block) error {
	r.logger.Debug("Registry::RemoveBlock")

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.started {
		return memutils.ErrNotStarted
	}

	var foundKey uint64
	var foundBucket []*registryEntry
	foundIndex := -1
	r.buckets.Iter(func(key uint64, bucket []*registryEntry) bool {
		for index, entry := range bucket {
			if entry.block == block {
				foundKey = key
				foundBucket = bucket
				foundIndex = index
				return true
			}
		}
		return false
	})

	if foundIndex < 0 {
		return memutils.ErrBlockNotFound
	}

	return r.removeAt(foundKey, foundBucket, foundIndex)
}

func (r *Registry) removeAt(key uint64, bucket []*registryEntry, index int) error {
	entry := bucket[index]

	bucket = slices.Delete(bucket, index, index+1)
	if len(bucket) == 0 {
		r.buckets.Delete(key)
	} else {
		r.buckets.Put(key, bucket)
	}
	r.count--

	if entry.block.IsReleased() {
		return nil
	}

	err := entry.block.Release()
	if err != nil {
		return errors.Wrapf(err, "failed to release block %q", entry.name)
	}
	return nil
}

func findEntry(bucket []*registryEntry, name string) int {
	for index, entry := range bucket {
		if entry.name == name {
			return index
		}
	}

	return -1
}

// Count returns the number of blocks the registry owns
func (r *Registry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return r.count
}

// Names returns the names of every registered block in sorted order
func (r *Registry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if !r.started {
		return nil
	}

	names := make([]string, 0, r.count)
	r.buckets.Iter(func(key uint64, bucket []*registryEntry) bool {
		for _, entry := range bucket {
			names = append(names, entry.name)
		}
		return false
	})

	slices.Sort(names)
	return names
}

// PrintDetailedMap writes a json object containing the detailed map of every registered block,
// keyed by block name
func (r *Registry) PrintDetailedMap(writer *jwriter.Writer) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	objState := writer.Object()
	defer objState.End()

	objState.Name("Started").Bool(r.started)
	if !r.started {
		return
	}

	var entries []*registryEntry
	r.buckets.Iter(func(key uint64, bucket []*registryEntry) bool {
		entries = append(entries, bucket...)
		return false
	})
	slices.SortFunc(entries, func(left, right *registryEntry) bool {
		return left.name < right.name
	})

	blocksObj := objState.Name("Blocks").Object()
	defer blocksObj.End()

	for _, entry := range entries {
		blockObj := blocksObj.Name(entry.name).Object()
		blockObj.Name("Key").String(strconv.FormatUint(nameKey(entry.name), 16))
		entry.block.printDetailedMap(&blockObj)
		blockObj.End()
	}
}
