package arena

import (
	"github.com/vkngwrapper/core/v2/common"
)

// RegistryCreateFlags indicate specific registry behaviors to activate or deactivate
type RegistryCreateFlags int32

var registryCreateFlagsMapping = common.NewFlagStringMapping[RegistryCreateFlags]()

func (f RegistryCreateFlags) Register(str string) {
	registryCreateFlagsMapping.Register(f, str)
}
func (f RegistryCreateFlags) String() string {
	return registryCreateFlagsMapping.FlagsToString(f)
}

const (
	// RegistryCreateExternallySynchronized ensures that the registry will not be synchronized
	// internally. The consumer must guarantee it is used from only one goroutine at a time or is
	// synchronized by some other mechanism. Blocks handed out by the registry are never
	// synchronized, regardless of this flag.
	RegistryCreateExternallySynchronized RegistryCreateFlags = 1 << iota
)

func init() {
	RegistryCreateExternallySynchronized.Register("RegistryCreateExternallySynchronized")
}

// RegistryCreateOptions contains optional settings when creating a Registry
type RegistryCreateOptions struct {
	// Flags indicates specific registry behaviors to activate or deactivate
	Flags RegistryCreateFlags
}
