package sink

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/gracefulearth/image/tiff"
	"github.com/gracefulearth/imagevideo"
)

const (
	tagImageWidth      = 256
	tagImageLength     = 257
	tagBitsPerSample   = 258
	tagCompression     = 259
	tagPhotometric     = 262
	tagStripOffsets    = 273
	tagSamplesPerPixel = 277
	tagRowsPerStrip    = 278
	tagStripByteCounts = 279
	tagPlanarConfig    = 284

	dtShort = 3
	dtLong  = 4

	photometricBlackIsZero = 1
	photometricRGB         = 2
)

// binaryWriter accumulates the first error so the page assembly below can
// stay linear.
type binaryWriter struct {
	w      io.Writer
	offset int64
	err    error
}

func (bw *binaryWriter) bytes(data []byte) {
	if bw.err != nil {
		return
	}
	var n int
	n, bw.err = bw.w.Write(data)
	bw.offset += int64(n)
}

func (bw *binaryWriter) u16(v uint16) {
	bw.bytes(binary.LittleEndian.AppendUint16(nil, v))
}

func (bw *binaryWriter) u32(v uint32) {
	bw.bytes(binary.LittleEndian.AppendUint32(nil, v))
}

func (bw *binaryWriter) pad() {
	if bw.offset%2 != 0 {
		bw.bytes([]byte{0})
	}
}

type ifdEntry struct {
	tag, kind uint16
	count     uint32
	value     uint32 // SHORT values sit in the low half
}

// TIFF writes one uncompressed baseline page per frame into a multipage
// little-endian TIFF file.
type TIFF struct {
	spec     Spec
	file     *os.File
	bw       *binaryWriter
	nextLink int64 // where the offset of the next IFD goes
	pages    int
}

func CreateTIFF(path string, spec Spec) (*TIFF, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create TIFF file: %w", err)
	}
	t := &TIFF{spec: spec, file: file, bw: &binaryWriter{w: file}}
	t.bw.bytes([]byte("II"))
	t.bw.u16(42)
	t.nextLink = t.bw.offset
	t.bw.u32(0)
	if t.bw.err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write TIFF header: %w", t.bw.err)
	}
	return t, nil
}

func (t *TIFF) WriteFrame(frame imagevideo.OutputFrame) error {
	if err := t.spec.check(frame); err != nil {
		return err
	}
	bw := t.bw

	stripOffset := bw.offset
	bw.bytes(frame.Pix)
	bw.pad()

	samples := uint16(frame.Channels)
	bits := ifdEntry{tag: tagBitsPerSample, kind: dtShort, count: 1, value: 8}
	photometric := uint32(photometricBlackIsZero)
	if samples == 3 {
		bits = ifdEntry{tag: tagBitsPerSample, kind: dtShort, count: 3, value: uint32(bw.offset)}
		bw.u16(8)
		bw.u16(8)
		bw.u16(8)
		photometric = photometricRGB
	}

	entries := []ifdEntry{
		{tag: tagImageWidth, kind: dtLong, count: 1, value: uint32(frame.Width)},
		{tag: tagImageLength, kind: dtLong, count: 1, value: uint32(frame.Height)},
		bits,
		{tag: tagCompression, kind: dtShort, count: 1, value: 1},
		{tag: tagPhotometric, kind: dtShort, count: 1, value: photometric},
		{tag: tagStripOffsets, kind: dtLong, count: 1, value: uint32(stripOffset)},
		{tag: tagSamplesPerPixel, kind: dtShort, count: 1, value: uint32(samples)},
		{tag: tagRowsPerStrip, kind: dtLong, count: 1, value: uint32(frame.Height)},
		{tag: tagStripByteCounts, kind: dtLong, count: 1, value: uint32(len(frame.Pix))},
		{tag: tagPlanarConfig, kind: dtShort, count: 1, value: 1},
	}

	ifdOffset := bw.offset
	bw.u16(uint16(len(entries)))
	for _, e := range entries {
		bw.u16(e.tag)
		bw.u16(e.kind)
		bw.u32(e.count)
		if e.kind == dtShort && e.count == 1 {
			bw.u16(uint16(e.value))
			bw.u16(0)
		} else {
			bw.u32(e.value)
		}
	}
	link := bw.offset
	bw.u32(0)
	if bw.err != nil {
		return fmt.Errorf("failed to write TIFF page %d: %w", t.pages, bw.err)
	}

	if _, err := t.file.WriteAt(binary.LittleEndian.AppendUint32(nil, uint32(ifdOffset)), t.nextLink); err != nil {
		return fmt.Errorf("failed to link TIFF page %d: %w", t.pages, err)
	}
	t.nextLink = link
	t.pages++
	return nil
}

// Pages is the number of pages written so far.
func (t *TIFF) Pages() int {
	return t.pages
}

func (t *TIFF) Close() error {
	return t.file.Close()
}

// DecodeMultipage decodes every page of a TIFF file.
func DecodeMultipage(data []byte) ([]image.Image, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("TIFF data too short: %d bytes", len(data))
	}
	var order binary.ByteOrder
	switch string(data[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("not a TIFF file")
	}

	var pages []image.Image
	seen := map[uint32]bool{}
	patched := bytes.Clone(data)
	for offset := order.Uint32(data[4:8]); offset != 0; {
		if seen[offset] || int(offset)+2 > len(data) {
			return nil, fmt.Errorf("corrupt TIFF IFD chain at offset %d", offset)
		}
		seen[offset] = true

		// point the header at this IFD and let the decoder read it as page one
		order.PutUint32(patched[4:8], offset)
		img, err := tiff.Decode(bytes.NewReader(patched))
		if err != nil {
			return nil, fmt.Errorf("failed to decode TIFF page %d: %w", len(pages), err)
		}
		pages = append(pages, img)

		entries := int(order.Uint16(data[offset:]))
		link := int(offset) + 2 + entries*12
		if link+4 > len(data) {
			return nil, fmt.Errorf("corrupt TIFF IFD at offset %d", offset)
		}
		offset = order.Uint32(data[link:])
	}
	return pages, nil
}

// ReadMultipage decodes every page of a TIFF file on disk.
func ReadMultipage(path string) ([]image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeMultipage(data)
}
