package config

// Mount target modes
const (
	MountModeRandom = "random"
	MountModeHost   = "host"
)

// Network modes
const (
	NetworkBridge = "bridge"
	NetworkHost   = "host"
	NetworkNone   = "none"
)

// User settings
const (
	UserAuto = "auto"
)

// DefaultSentinel is the environment variable injected into the container
// so a wrapped program can tell it is already running inside one.
const DefaultSentinel = "DOCKRUN_CONTAINER"
