// Package version contains the Minecraft Bedrock edition protocol versions the
// translation layer supports and how each version's bundled resources are encoded.
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Encoding is the binary framing of an NBT resource blob.
type Encoding uint8

const (
	// Compressed is a gzip compressed, big endian NBT tag.
	Compressed Encoding = iota
	// Network is the network little endian (varint) NBT framing used on the wire.
	Network
)

func (e Encoding) String() string {
	switch e {
	case Compressed:
		return "compressed"
	case Network:
		return "network"
	}
	return "Encoding(" + strconv.Itoa(int(e)) + ")"
}

// Codec is the handle a host uses to switch the packet codec of a session.
// Hosts can substitute their own implementation via Descriptor.Codec.
type Codec interface {
	ProtocolVersion() int32
	MinecraftVersion() string
}

type codec struct {
	protocol int32
	version  string
}

func (c codec) ProtocolVersion() int32   { return c.protocol }
func (c codec) MinecraftVersion() string { return c.version }

// NewCodec returns the default Codec for a protocol version.
func NewCodec(protocol int32, version string) Codec {
	return codec{protocol: protocol, version: version}
}

// Descriptor describes one supported protocol version.
// A Descriptor must not be modified after it was passed to NewRegistry.
type Descriptor struct {
	Protocol int32  // network protocol number
	Version  string // Minecraft version label, e.g. 1.20.10
	Codec    Codec

	BiomeEncoding        Encoding
	EntityEncoding       Encoding
	BlockPaletteEncoding Encoding
}

// FileVersion is the version label as used in bundled file names, e.g. 1_20_10.
func (d *Descriptor) FileVersion() string {
	return strings.ReplaceAll(d.Version, ".", "_")
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("%s(%d)", d.Version, d.Protocol)
}

func desc(protocol int32, version string, biome, entity, blocks Encoding) *Descriptor {
	return &Descriptor{
		Protocol:             protocol,
		Version:              version,
		Codec:                NewCodec(protocol, version),
		BiomeEncoding:        biome,
		EntityEncoding:       entity,
		BlockPaletteEncoding: blocks,
	}
}

var (
	Bedrock_1_20_0  = desc(589, "1.20.0", Network, Network, Compressed)
	Bedrock_1_20_10 = desc(594, "1.20.10", Network, Network, Compressed)
	Bedrock_1_20_30 = desc(618, "1.20.30", Network, Network, Compressed)
	Bedrock_1_20_40 = desc(622, "1.20.40", Compressed, Compressed, Compressed)
	Bedrock_1_20_50 = desc(630, "1.20.50", Compressed, Compressed, Compressed)
	Bedrock_1_20_60 = desc(649, "1.20.60", Compressed, Compressed, Compressed)

	// Versions ordered from lowest to highest.
	// The last entry is the canonical protocol the server speaks.
	Versions = []*Descriptor{
		Bedrock_1_20_0,
		Bedrock_1_20_10,
		Bedrock_1_20_30,
		Bedrock_1_20_40,
		Bedrock_1_20_50,
		Bedrock_1_20_60,
	}
)

// ErrNoProtocols is returned when creating a Registry without any descriptor.
var ErrNoProtocols = errors.New("no supported protocol versions")

// Registry is the immutable table of supported protocol versions.
// It is safe for concurrent use.
type Registry struct {
	ordered    []*Descriptor
	byProtocol map[int32]*Descriptor
	byVersion  map[string]*Descriptor
}

// Default is the Registry of all Versions.
var Default = MustNewRegistry(Versions...)

// NewRegistry returns a Registry of the given descriptors, which must be
// ordered from the oldest to the newest protocol.
func NewRegistry(descs ...*Descriptor) (*Registry, error) {
	if len(descs) == 0 {
		return nil, ErrNoProtocols
	}
	r := &Registry{
		ordered:    make([]*Descriptor, 0, len(descs)),
		byProtocol: make(map[int32]*Descriptor, len(descs)),
		byVersion:  make(map[string]*Descriptor, len(descs)),
	}
	for i, d := range descs {
		if d == nil {
			return nil, fmt.Errorf("descriptor at index %d is nil", i)
		}
		if d.Version == "" {
			return nil, fmt.Errorf("descriptor for protocol %d has no version label", d.Protocol)
		}
		if _, ok := r.byProtocol[d.Protocol]; ok {
			return nil, fmt.Errorf("duplicate protocol %d", d.Protocol)
		}
		if _, ok := r.byVersion[d.Version]; ok {
			return nil, fmt.Errorf("duplicate version label %q", d.Version)
		}
		if i > 0 && d.Protocol <= descs[i-1].Protocol {
			return nil, fmt.Errorf("protocol %s is not newer than %s", d, descs[i-1])
		}
		if d.Codec == nil {
			cp := *d
			cp.Codec = NewCodec(d.Protocol, d.Version)
			d = &cp
		}
		r.ordered = append(r.ordered, d)
		r.byProtocol[d.Protocol] = d
		r.byVersion[d.Version] = d
	}
	return r, nil
}

// MustNewRegistry is like NewRegistry but panics on error.
func MustNewRegistry(descs ...*Descriptor) *Registry {
	r, err := NewRegistry(descs...)
	if err != nil {
		panic(err)
	}
	return r
}

// Supported returns all descriptors ordered from oldest to newest.
// The returned slice must not be modified.
func (r *Registry) Supported() []*Descriptor { return r.ordered }

// Legacy returns all descriptors except the canonical one, oldest first.
func (r *Registry) Legacy() []*Descriptor { return r.ordered[:len(r.ordered)-1] }

// ByProtocol looks up the descriptor of a protocol number.
func (r *Registry) ByProtocol(protocol int32) (*Descriptor, bool) {
	d, ok := r.byProtocol[protocol]
	return d, ok
}

// ByVersion looks up the descriptor of a version label like 1.20.10.
func (r *Registry) ByVersion(label string) (*Descriptor, bool) {
	d, ok := r.byVersion[label]
	return d, ok
}

// Min is the oldest supported protocol.
func (r *Registry) Min() *Descriptor { return r.ordered[0] }

// Max is the newest supported protocol.
func (r *Registry) Max() *Descriptor { return r.ordered[len(r.ordered)-1] }

// Canonical is the protocol the server natively speaks, which is always Max.
func (r *Registry) Canonical() *Descriptor { return r.Max() }

// NeedsTranslation reports whether packets of a peer speaking protocol
// must be rewritten.
func (r *Registry) NeedsTranslation(protocol int32) bool {
	return protocol != r.Canonical().Protocol
}

// Filter returns a Registry restricted to the given version labels.
// The canonical version is always kept. An empty label list returns r.
func (r *Registry) Filter(labels []string) (*Registry, error) {
	if len(labels) == 0 {
		return r, nil
	}
	keep := make(map[string]bool, len(labels))
	for _, l := range labels {
		if _, ok := r.byVersion[l]; !ok {
			return nil, fmt.Errorf("unsupported version %q (supported: %s)", l, r)
		}
		keep[l] = true
	}
	keep[r.Canonical().Version] = true
	var descs []*Descriptor
	for _, d := range r.ordered {
		if keep[d.Version] {
			descs = append(descs, d)
		}
	}
	return NewRegistry(descs...)
}

// String returns the supported range, e.g. 1.20.0-1.20.60.
func (r *Registry) String() string {
	return fmt.Sprintf("%s-%s", r.Min().Version, r.Max().Version)
}
