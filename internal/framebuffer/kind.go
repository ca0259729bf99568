package framebuffer

// LayerKind is the semantic role of a layer, stored next to its
// free-text name so channel lookups never depend on string matching.
type LayerKind int

const (
	KindCustom LayerKind = iota
	KindBeauty
	KindDepth
	KindNormal
	KindPosition
)

func (k LayerKind) String() string {
	switch k {
	case KindBeauty:
		return "beauty"
	case KindDepth:
		return "depth"
	case KindNormal:
		return "normal"
	case KindPosition:
		return "position"
	}
	return "custom"
}

// HasAlpha reports whether layers of this kind are allocated with an
// alpha plane. Only the beauty layer carries one; depth, normal,
// position and custom AOVs are color-only.
func (k LayerKind) HasAlpha() bool { return k == KindBeauty }

// Well-known layer names as sent by the renderer.
const (
	NameRGBA  = "RGBA"
	NameRGB   = "rgb"
	NameDepth = "depth"
	NameZ     = "Z"
	NameN     = "N"
	NameP     = "P"
)

// kindByName maps the renderer's layer names to their kind. Matching is
// exact and case-sensitive; "z" or "Depth" are custom layers.
var kindByName = map[string]LayerKind{
	NameRGBA:  KindBeauty,
	NameRGB:   KindBeauty,
	"beauty":  KindBeauty,
	NameDepth: KindDepth,
	NameZ:     KindDepth,
	NameN:     KindNormal,
	NameP:     KindPosition,
}

// KindOf infers a layer kind from its name.
func KindOf(name string) LayerKind {
	if k, ok := kindByName[name]; ok {
		return k
	}
	return KindCustom
}

// Channel is a symbolic output channel a consumer asks for.
type Channel int

const (
	ChanRed Channel = iota
	ChanGreen
	ChanBlue
	ChanAlpha
	ChanZ
	ChanNormalX
	ChanNormalY
	ChanNormalZ
	ChanPositionX
	ChanPositionY
	ChanPositionZ
)

// Kind returns the layer kind that carries ch, and its component index
// inside that layer (0..2, or 0 for alpha and Z).
//
//	ChanRed, ChanGreen, ChanBlue, ChanAlpha -> KindBeauty
//	ChanZ                                   -> KindDepth
//	ChanNormalX, ChanNormalY, ChanNormalZ   -> KindNormal
//	ChanPositionX, ChanPositionY, ChanPositionZ -> KindPosition
//
// Unknown channels map to KindCustom, which never matches a lookup.
func (ch Channel) Kind() (LayerKind, int) {
	switch ch {
	case ChanRed, ChanGreen, ChanBlue:
		return KindBeauty, int(ch - ChanRed)
	case ChanAlpha:
		return KindBeauty, 0
	case ChanZ:
		return KindDepth, 0
	case ChanNormalX, ChanNormalY, ChanNormalZ:
		return KindNormal, int(ch - ChanNormalX)
	case ChanPositionX, ChanPositionY, ChanPositionZ:
		return KindPosition, int(ch - ChanPositionX)
	}
	return KindCustom, 0
}
