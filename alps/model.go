// Package alps decodes the ALPS GlidePoint family of PS/2 touchpad wire
// protocols. Five historically distinct packet layouts (V1 through V5) are
// supported, along with the 3-byte companion PS/2 protocol that some models
// interleave with the primary 6/8-byte stream.
//
// The package is organized as a pipeline: a Framer resynchronizes a raw byte
// stream into complete packets, a Decoder turns packets into normalized
// touch/button fields per protocol variant, and ResolveBitmap converts
// per-axis occupancy masks into bounding-box contact points for the variants
// that report multi-touch as row/column bitmaps.
package alps

import "fmt"

// ProtoVersion identifies one of the five ALPS packet layout families.
type ProtoVersion int

const (
	ProtoV1 ProtoVersion = iota + 1
	ProtoV2
	ProtoV3
	ProtoV4
	ProtoV5
)

func (v ProtoVersion) String() string {
	switch v {
	case ProtoV1:
		return "v1"
	case ProtoV2:
		return "v2"
	case ProtoV3:
		return "v3"
	case ProtoV4:
		return "v4"
	case ProtoV5:
		return "v5"
	default:
		return fmt.Sprintf("ProtoVersion(%d)", int(v))
	}
}

// FieldLayout selects the bit layout of position/bitmap packets within the V3
// family. Pinnacle and Rushmore differ in which bit marks a bitmap sub-packet
// and in bitmap mask widths. Dolphin is the V5 layout; it is decoded through
// the same packet flow as V3.
type FieldLayout int

const (
	LayoutPinnacle FieldLayout = iota
	LayoutRushmore
	LayoutDolphin
)

func (l FieldLayout) String() string {
	switch l {
	case LayoutPinnacle:
		return "pinnacle"
	case LayoutRushmore:
		return "rushmore"
	case LayoutDolphin:
		return "dolphin"
	default:
		return fmt.Sprintf("FieldLayout(%d)", int(l))
	}
}

// Flags describe per-model hardware features.
type Flags uint8

const (
	// FlagDualPoint marks models with a trackstick multiplexed onto the wire.
	FlagDualPoint Flags = 1 << iota
	// FlagPassthrough marks models with a pass-through PS/2 port.
	FlagPassthrough
	// FlagWheel marks models with a hardware scroll wheel.
	FlagWheel
	// FlagFwBk1 and FlagFwBk2 mark the two mutually exclusive front/back
	// button layouts.
	FlagFwBk1
	FlagFwBk2
	// FlagFourButtons marks models with a 4-direction button.
	FlagFourButtons
	// FlagPS2Interleaved marks models that interleave bare 3-byte PS/2
	// packets with the 6-byte ALPS stream.
	FlagPS2Interleaved
)

// Model is the immutable per-device protocol descriptor resolved by the
// attach-time handshake. All core components read it; none mutate it.
type Model struct {
	Version ProtoVersion
	Layout  FieldLayout

	// Byte0 and Mask0 validate the leading byte of a packet:
	// (b & Mask0) == Byte0.
	Byte0 byte
	Mask0 byte

	// PacketSize is 8 for V4 and 6 for everything else.
	PacketSize int

	Flags Flags

	// Axis maxima in device coordinates and the bit widths of the bitmap
	// masks, used to scale bitmap runs into device coordinates.
	XMax, YMax   int
	XBits, YBits int
}

// NewModel returns the default descriptor for a protocol version, mirroring
// the per-version hardware defaults of the original ALPS drivers. The caller
// may override Byte0/Mask0/Flags with values from a handshake signature table.
func NewModel(v ProtoVersion) Model {
	m := Model{
		Version:    v,
		Byte0:      0x8f,
		Mask0:      0x8f,
		PacketSize: 6,
		Flags:      FlagDualPoint,
		XMax:       2000,
		YMax:       1400,
		XBits:      15,
		YBits:      11,
	}
	switch v {
	case ProtoV1, ProtoV2:
		m.XMax = 1100
		m.YMax = 800
	case ProtoV3:
		m.Layout = LayoutPinnacle
	case ProtoV4:
		m.PacketSize = 8
	case ProtoV5:
		m.Layout = LayoutDolphin
		m.Byte0 = 0xc8
		m.Mask0 = 0xc8
		m.Flags = 0
		m.XMax = 1360
		m.YMax = 660
		m.XBits = 23
		m.YBits = 12
	}
	return m
}

// NewRushmoreModel returns the descriptor for the Rushmore V3 variant, which
// shares the V3 defaults but uses the Rushmore field layout and wider bitmap
// masks.
func NewRushmoreModel() Model {
	m := NewModel(ProtoV3)
	m.Layout = LayoutRushmore
	m.XBits = 16
	m.YBits = 12
	return m
}

// Presets maps human-readable names to model descriptors, for tools that
// attach to recorded streams without performing a hardware handshake.
var Presets = map[string]Model{
	"v1":       NewModel(ProtoV1),
	"v2":       NewModel(ProtoV2),
	"pinnacle": NewModel(ProtoV3),
	"rushmore": NewRushmoreModel(),
	"v4":       NewModel(ProtoV4),
	"dolphin":  NewModel(ProtoV5),
}
