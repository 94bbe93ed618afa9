package gateway

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Marshalled[S any] interface {
	trySeal(string) S
}

// seal marshalled object.
//
// this function CAN CAUSE PANIC if misconfiguration is found.
//
// All types named `pkg/configs/gateway.XxxMarshall` are `Marshalled[*Xxx]` .
func TrySeal[S any](conf Marshalled[S]) S {
	return conf.trySeal("(root)")
}

// load gateway config from a file.
//
// args:
//   - filepath: filepath refers a config file.
//
// returns *GatewayConfig, error:
//
//	When loading success, returns `(*GatewayConfig, nil)`.
//	Otherwise, returns `(nil, error)`.
func LoadGatewayConfig(filepath string) (*GatewayConfig, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}
	return Unmarshal(content)
}

func Unmarshal(conf []byte) (out *GatewayConfig, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("misconfiguration: %v", r)
		}
	}()

	var _out *GatewayConfigMarshall
	if err := yaml.Unmarshal(conf, &_out); err != nil {
		return nil, err
	}
	out = TrySeal(_out)
	return out, nil
}

// Configuration of the gateway.
//
// This type is marshalling value and mutable.
// Consider to use immutable version, `GatewayConfig`.
// You can get `GatewayConfig` instance with `TrySeal(...)` .
type GatewayConfigMarshall struct {
	Port      int32                       `yaml:"port"`
	Database  string                      `yaml:"database"`
	Volume    *SharedVolumeConfigMarshall `yaml:"sharedVolume"`
	Execution *ExecutionConfigMarshall    `yaml:"execution,omitempty"`
	Builtins  *BuiltinsConfigMarshall     `yaml:"builtins,omitempty"`
}

var _ Marshalled[*GatewayConfig] = &GatewayConfigMarshall{}

func (g *GatewayConfigMarshall) trySeal(path string) *GatewayConfig {
	execution := g.Execution
	if execution == nil {
		execution = &ExecutionConfigMarshall{}
	}

	var builtins *BuiltinsConfig
	if g.Builtins != nil {
		builtins = g.Builtins.trySeal(path + ".builtins")
	}

	return &GatewayConfig{
		port:      required(g.Port, path+".port"),
		database:  required(g.Database, path+".database"),
		volume:    nonnil(g.Volume, path+".sharedVolume").trySeal(path + ".sharedVolume"),
		execution: execution.trySeal(path + ".execution"),
		builtins:  builtins,
	}
}

type SharedVolumeConfigMarshall struct {
	Source    string `yaml:"source"`
	LocalRoot string `yaml:"localRoot"`
	MountPath string `yaml:"mountPath,omitempty"`
}

func (v *SharedVolumeConfigMarshall) trySeal(path string) *SharedVolumeConfig {
	mountPath := v.MountPath
	if mountPath == "" {
		mountPath = v.LocalRoot
	}
	return &SharedVolumeConfig{
		source:    required(v.Source, path+".source"),
		localRoot: required(v.LocalRoot, path+".localRoot"),
		mountPath: mountPath,
	}
}

type ExecutionConfigMarshall struct {
	Timeout       string `yaml:"timeout,omitempty"`
	MaxConcurrent int64  `yaml:"maxConcurrent,omitempty"`
	AcquireWait   string `yaml:"acquireWait,omitempty"`
}

func (e *ExecutionConfigMarshall) trySeal(path string) *ExecutionConfig {
	return &ExecutionConfig{
		timeout:       duration(e.Timeout, 5*time.Minute, path+".timeout"),
		maxConcurrent: e.MaxConcurrent,
		acquireWait:   duration(e.AcquireWait, 0, path+".acquireWait"),
	}
}

type BuiltinsConfigMarshall struct {
	Dir                string `yaml:"dir"`
	StoreRetries       *uint  `yaml:"storeRetries,omitempty"`
	StoreRetryInterval string `yaml:"storeRetryInterval,omitempty"`
	OnFailure          string `yaml:"onFailure,omitempty"`
}

func (b *BuiltinsConfigMarshall) trySeal(path string) *BuiltinsConfig {
	retries := uint(30)
	if b.StoreRetries != nil {
		retries = *b.StoreRetries
	}

	onFailure := ServeDegraded
	switch b.OnFailure {
	case "", string(ServeDegraded):
		// default
	case string(Fail):
		onFailure = Fail
	default:
		panic(fmt.Sprintf(
			`%s.onFailure should be "%s" or "%s", but "%s"`,
			path, ServeDegraded, Fail, b.OnFailure,
		))
	}

	return &BuiltinsConfig{
		dir:                required(b.Dir, path+".dir"),
		storeRetries:       retries,
		storeRetryInterval: duration(b.StoreRetryInterval, 2*time.Second, path+".storeRetryInterval"),
		onFailure:          onFailure,
	}
}

func duration(v string, fallback time.Duration, path string) time.Duration {
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Sprintf("%s can not be parsed as duration: %v", path, err))
	}
	return d
}

func nonnil[T any](v *T, path string) *T {
	if v == nil {
		panic(path + " is required")
	}
	return v
}

func required[T comparable](v T, path string) T {
	if v == *new(T) {
		panic(path + " is required")
	}
	return v
}
