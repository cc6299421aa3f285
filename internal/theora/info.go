package theora

// Supported bitstream version. Streams with a newer minor version may use
// features this decoder does not understand.
const (
	VersionMajor = 3
	VersionMinor = 2
)

// MaxFramePixels is the largest coded frame area, in pixels, a stream may
// declare. Reference frames for anything bigger are not allocated.
const MaxFramePixels = 8192 * 8192

// PixelFormat is the chroma subsampling of decoded frames.
type PixelFormat uint8

const (
	PF420      PixelFormat = 0
	PFReserved PixelFormat = 1
	PF422      PixelFormat = 2
	PF444      PixelFormat = 3
)

func (pf PixelFormat) String() string {
	switch pf {
	case PF420:
		return "4:2:0"
	case PF422:
		return "4:2:2"
	case PF444:
		return "4:4:4"
	default:
		return "reserved"
	}
}

// ColorSpace is the color space the encoder declared for the source.
type ColorSpace uint8

const (
	ColorSpaceUnspecified ColorSpace = iota
	ColorSpaceITURec470M
	ColorSpaceITURec470BG
)

func (cs ColorSpace) String() string {
	switch cs {
	case ColorSpaceITURec470M:
		return "rec470m"
	case ColorSpaceITURec470BG:
		return "rec470bg"
	default:
		return "unspecified"
	}
}

// Info holds the fields of the identification header.
type Info struct {
	VersionMajor    uint8
	VersionMinor    uint8
	VersionSubminor uint8

	// FrameWidth and FrameHeight are the coded size, a multiple of 16.
	FrameWidth  uint32
	FrameHeight uint32

	// The picture region is the displayable part of the coded frame.
	// PicY is measured from the top of the frame.
	PicWidth  uint32
	PicHeight uint32
	PicX      uint32
	PicY      uint32

	FPSNumerator      uint32
	FPSDenominator    uint32
	AspectNumerator   uint32
	AspectDenominator uint32

	ColorSpace           ColorSpace
	PixelFormat          PixelFormat
	TargetBitrate        uint32
	Quality              uint8
	KeyframeGranuleShift uint8
}

// FrameRate returns the frame rate in frames per second.
func (i Info) FrameRate() float64 {
	if i.FPSDenominator == 0 {
		return 0
	}
	return float64(i.FPSNumerator) / float64(i.FPSDenominator)
}

func (i Info) checkFrameSize() error {
	if uint64(i.FrameWidth)*uint64(i.FrameHeight) > MaxFramePixels {
		return badHeader("frame %dx%d exceeds %d pixels", i.FrameWidth, i.FrameHeight, MaxFramePixels)
	}
	return nil
}

// decoded reports whether an identification header has been parsed.
func (i *Info) decoded() bool {
	return i.FrameWidth > 0
}

func (i *Info) unpack(r *bitReader) error {
	// VMAJ VMIN VREV FMBW FMBH PICW PICH PICX PICY FRN FRD PARN PARD CS NOMBR QUAL KFGSHIFT PF reserved
	widths := []uint{8, 8, 8, 16, 16, 24, 24, 8, 8, 32, 32, 24, 24, 8, 24, 6, 5, 2, 3}
	fields := make([]uint32, len(widths))
	for idx, n := range widths {
		v, err := r.readBits(n)
		if err != nil {
			return badHeader("identification header truncated")
		}
		fields[idx] = v
	}

	vmaj, vmin := fields[0], fields[1]
	if vmaj > VersionMajor || (vmaj == VersionMajor && vmin > VersionMinor) {
		return ErrVersion
	}

	out := Info{
		VersionMajor:         uint8(vmaj),
		VersionMinor:         uint8(vmin),
		VersionSubminor:      uint8(fields[2]),
		FrameWidth:           fields[3] << 4,
		FrameHeight:          fields[4] << 4,
		PicWidth:             fields[5],
		PicHeight:            fields[6],
		PicX:                 fields[7],
		FPSNumerator:         fields[9],
		FPSDenominator:       fields[10],
		AspectNumerator:      fields[11],
		AspectDenominator:    fields[12],
		ColorSpace:           ColorSpace(fields[13]),
		TargetBitrate:        fields[14],
		Quality:              uint8(fields[15]),
		KeyframeGranuleShift: uint8(fields[16]),
		PixelFormat:          PixelFormat(fields[17]),
	}
	picYBottom := fields[8]
	if err := out.checkFrameSize(); err != nil {
		return err
	}

	switch {
	case out.FrameWidth == 0 || out.FrameHeight == 0:
		return badHeader("zero frame size")
	case out.PicWidth+out.PicX > out.FrameWidth, out.PicHeight+picYBottom > out.FrameHeight:
		return badHeader("picture region %dx%d+%d+%d outside %dx%d frame",
			out.PicWidth, out.PicHeight, out.PicX, picYBottom, out.FrameWidth, out.FrameHeight)
	case out.FPSNumerator == 0 || out.FPSDenominator == 0:
		return badHeader("zero frame rate term")
	case out.PixelFormat == PFReserved:
		return badHeader("reserved pixel format")
	}
	// The bitstream stores the picture offset from the bottom of the frame.
	out.PicY = out.FrameHeight - out.PicHeight - picYBottom

	*i = out
	return nil
}
