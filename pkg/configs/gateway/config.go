package gateway

import (
	"time"
)

// GatewayConfig is the sealed (immutable) configuration of the
// gateway process.
//
// to get `GatewayConfig` instance, use `GatewayConfigMarshall.TrySeal()` .
type GatewayConfig struct {
	port      int32
	database  string
	volume    *SharedVolumeConfig
	execution *ExecutionConfig
	builtins  *BuiltinsConfig
}

func (c *GatewayConfig) Port() int32 {
	return c.port
}

// Connection string for the backing store.
func (c *GatewayConfig) Database() string {
	return c.database
}

func (c *GatewayConfig) Volume() *SharedVolumeConfig {
	return c.volume
}

func (c *GatewayConfig) Execution() *ExecutionConfig {
	return c.execution
}

// Built-in model seeding. nil when no built-ins are configured.
func (c *GatewayConfig) Builtins() *BuiltinsConfig {
	return c.builtins
}

// SharedVolumeConfig locates the volume shared between the gateway
// and every model container it spawns.
type SharedVolumeConfig struct {
	source    string
	localRoot string
	mountPath string
}

// The engine volume name (or host path) to bind into model containers.
func (v *SharedVolumeConfig) Source() string {
	return v.source
}

// Where the shared volume is mounted in the gateway's own filesystem.
func (v *SharedVolumeConfig) LocalRoot() string {
	return v.localRoot
}

// Where the shared volume is mounted inside model containers.
// default = same as localRoot.
func (v *SharedVolumeConfig) MountPath() string {
	return v.mountPath
}

// ExecutionConfig bounds model container runs.
type ExecutionConfig struct {
	timeout       time.Duration
	maxConcurrent int64
	acquireWait   time.Duration
}

// How long one container run may take. default = 5m.
func (e *ExecutionConfig) Timeout() time.Duration {
	return e.timeout
}

// How many containers may run at once. 0 = unbounded.
func (e *ExecutionConfig) MaxConcurrent() int64 {
	return e.maxConcurrent
}

// How long a request may wait for an execution slot.
func (e *ExecutionConfig) AcquireWait() time.Duration {
	return e.acquireWait
}

// FailurePolicy: what a failed built-in registration means for the
// process.
type FailurePolicy string

const (
	// keep serving; /health reports degraded.
	ServeDegraded FailurePolicy = "serve-degraded"

	// quit the process.
	Fail FailurePolicy = "fail"
)

// BuiltinsConfig drives the startup bootstrap.
type BuiltinsConfig struct {
	dir                string
	storeRetries       uint
	storeRetryInterval time.Duration
	onFailure          FailurePolicy
}

// Directory holding one subdirectory per built-in model.
func (b *BuiltinsConfig) Dir() string {
	return b.dir
}

// How often to probe the store before giving up. default = 30.
func (b *BuiltinsConfig) StoreRetries() uint {
	return b.storeRetries
}

// Delay between store probes. default = 2s.
func (b *BuiltinsConfig) StoreRetryInterval() time.Duration {
	return b.storeRetryInterval
}

// default = serve-degraded.
func (b *BuiltinsConfig) OnFailure() FailurePolicy {
	return b.onFailure
}
