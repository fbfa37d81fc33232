package storage

// Role selects one of the buffers in a SwapBuffer
type Role uint32

const (
	// RoleRead is the buffer consumers read the previous frame's data from
	RoleRead Role = iota
	// RoleWrite is the buffer consumers write the next frame's data into
	RoleWrite
)

var roleMapping = map[Role]string{
	RoleRead:  "RoleRead",
	RoleWrite: "RoleWrite",
}

func (r Role) String() string {
	return roleMapping[r]
}
