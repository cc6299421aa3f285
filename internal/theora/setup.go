package theora

import "math/bits"

const (
	numHuffmanTables = 80
	maxHuffmanTokens = 32
	maxHuffmanDepth  = 32
	maxBaseMatrices  = 384
)

// QuantRange describes how base matrices are interpolated across quality
// indices for one (qti, pli) pair. Sizes[k] spans qi values between
// BaseIndices[k] and BaseIndices[k+1]; the sizes sum to 63.
type QuantRange struct {
	BaseIndices []int
	Sizes       []int
}

// HuffCode is one entry of a Huffman table.
type HuffCode struct {
	Code  uint32
	Len   uint8
	Token uint8
}

// Setup holds the fields of the setup header.
type Setup struct {
	LoopFilterLimits [64]uint8
	ACScale          [64]uint16
	DCScale          [64]uint16
	BaseMatrices     [][64]uint8
	// QuantRanges is indexed by [qti][pli]: intra/inter, then Y/Cb/Cr.
	QuantRanges [2][3]QuantRange
	Huffman     [numHuffmanTables][]HuffCode
}

func ilog(v uint32) uint {
	return uint(bits.Len32(v))
}

func unpackSetup(r *bitReader) (*Setup, error) {
	s := &Setup{}
	if err := s.unpackLoopFilter(r); err != nil {
		return nil, err
	}
	if err := s.unpackQuant(r); err != nil {
		return nil, err
	}
	for hti := 0; hti < numHuffmanTables; hti++ {
		var codes []HuffCode
		if err := unpackHuffTree(r, 0, 0, &codes); err != nil {
			return nil, err
		}
		s.Huffman[hti] = codes
	}
	return s, nil
}

func (s *Setup) unpackLoopFilter(r *bitReader) error {
	nbits, err := r.readBits(3)
	if err != nil {
		return badHeader("loop filter limits truncated")
	}
	for qi := range s.LoopFilterLimits {
		v, err := r.readBits(uint(nbits))
		if err != nil {
			return badHeader("loop filter limits truncated")
		}
		s.LoopFilterLimits[qi] = uint8(v)
	}
	return nil
}

func (s *Setup) unpackQuant(r *bitReader) error {
	if err := unpackScale(r, &s.ACScale); err != nil {
		return err
	}
	if err := unpackScale(r, &s.DCScale); err != nil {
		return err
	}

	v, err := r.readBits(9)
	if err != nil {
		return badHeader("base matrix count truncated")
	}
	nbms := int(v) + 1
	if nbms > maxBaseMatrices {
		return badHeader("%d base matrices", nbms)
	}
	s.BaseMatrices = make([][64]uint8, nbms)
	for bmi := range s.BaseMatrices {
		for ci := 0; ci < 64; ci++ {
			v, err := r.readBits(8)
			if err != nil {
				return badHeader("base matrices truncated")
			}
			s.BaseMatrices[bmi][ci] = uint8(v)
		}
	}

	indexBits := ilog(uint32(nbms - 1))
	for qti := 0; qti < 2; qti++ {
		for pli := 0; pli < 3; pli++ {
			newRange := uint32(1)
			if qti > 0 || pli > 0 {
				if newRange, err = r.readBits(1); err != nil {
					return badHeader("quant ranges truncated")
				}
			}
			if newRange == 0 {
				var copyPrevType uint32
				if qti > 0 {
					if copyPrevType, err = r.readBits(1); err != nil {
						return badHeader("quant ranges truncated")
					}
				}
				if copyPrevType == 1 {
					s.QuantRanges[qti][pli] = s.QuantRanges[qti-1][pli].clone()
				} else {
					prev := qti*3 + pli - 1
					s.QuantRanges[qti][pli] = s.QuantRanges[prev/3][prev%3].clone()
				}
				continue
			}

			var qr QuantRange
			qi := 0
			for {
				bmi, err := r.readBits(indexBits)
				if err != nil {
					return badHeader("quant ranges truncated")
				}
				if int(bmi) >= nbms {
					return badHeader("base matrix index %d out of range", bmi)
				}
				qr.BaseIndices = append(qr.BaseIndices, int(bmi))
				if qi >= 63 {
					break
				}
				size, err := r.readBits(ilog(uint32(62 - qi)))
				if err != nil {
					return badHeader("quant ranges truncated")
				}
				qr.Sizes = append(qr.Sizes, int(size)+1)
				qi += int(size) + 1
			}
			if qi > 63 {
				return badHeader("quant ranges overrun qi 63")
			}
			s.QuantRanges[qti][pli] = qr
		}
	}
	return nil
}

func unpackScale(r *bitReader, dst *[64]uint16) error {
	v, err := r.readBits(4)
	if err != nil {
		return badHeader("scale table truncated")
	}
	nbits := uint(v) + 1
	for qi := range dst {
		v, err := r.readBits(nbits)
		if err != nil {
			return badHeader("scale table truncated")
		}
		dst[qi] = uint16(v)
	}
	return nil
}

func unpackHuffTree(r *bitReader, code uint32, depth uint8, codes *[]HuffCode) error {
	if depth > maxHuffmanDepth {
		return badHeader("huffman code longer than %d bits", maxHuffmanDepth)
	}
	leaf, err := r.readBits(1)
	if err != nil {
		return badHeader("huffman tables truncated")
	}
	if leaf == 1 {
		if len(*codes) >= maxHuffmanTokens {
			return badHeader("huffman table has more than %d tokens", maxHuffmanTokens)
		}
		token, err := r.readBits(5)
		if err != nil {
			return badHeader("huffman tables truncated")
		}
		*codes = append(*codes, HuffCode{Code: code, Len: depth, Token: uint8(token)})
		return nil
	}
	if err := unpackHuffTree(r, code<<1, depth+1, codes); err != nil {
		return err
	}
	return unpackHuffTree(r, code<<1|1, depth+1, codes)
}

func (q QuantRange) clone() QuantRange {
	return QuantRange{
		BaseIndices: append([]int(nil), q.BaseIndices...),
		Sizes:       append([]int(nil), q.Sizes...),
	}
}

// matrix computes the dequantization matrix for one quality index.
func (s *Setup) matrix(qti, pli, qi int) [64]uint16 {
	qr := s.QuantRanges[qti][pli]

	qri, start := 0, 0
	for qri < len(qr.Sizes)-1 && qi > start+qr.Sizes[qri] {
		start += qr.Sizes[qri]
		qri++
	}
	size := qr.Sizes[qri]
	bmi := qr.BaseIndices[qri]
	bmj := qr.BaseIndices[qri+1]
	end := start + size

	var out [64]uint16
	for ci := 0; ci < 64; ci++ {
		bm := (2*(end-qi)*int(s.BaseMatrices[bmi][ci]) +
			2*(qi-start)*int(s.BaseMatrices[bmj][ci]) + size) / (2 * size)

		qmin := 8
		if ci == 0 {
			qmin = 16
		}
		if qti == 1 {
			qmin *= 2
		}
		scale := int(s.ACScale[qi])
		if ci == 0 {
			scale = int(s.DCScale[qi])
		}
		q := (scale * bm / 100) * 4
		if q > 4096 {
			q = 4096
		}
		if q < qmin {
			q = qmin
		}
		out[ci] = uint16(q)
	}
	return out
}
