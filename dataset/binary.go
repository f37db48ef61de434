package dataset

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"math"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the payload compression of the binary format.
type Compression uint8

const (
	// CompressionNone stores the payload raw.
	CompressionNone Compression = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 Compression = 1
	// CompressionZSTD uses Zstandard (better ratio).
	CompressionZSTD Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// ParseCompression parses a compression name as accepted by String.
func ParseCompression(s string) (Compression, error) {
	switch s {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return CompressionNone, fmt.Errorf("dataset: unknown compression %q", s)
	}
}

// Binary layout, little endian:
//
//	[0:4]   magic "SFMX"
//	[4]     version
//	[5]     compression
//	[6:8]   reserved
//	[8:16]  rows
//	[16:24] cols
//	[24:28] CRC-32C of the raw payload
//	[28:36] stored payload length
//	[36:]   payload (rows*cols float64, possibly compressed)
const (
	binaryMagic      = "SFMX"
	binaryVersion    = 1
	binaryHeaderSize = 36
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// EncodeBinary writes m in the binary format.
// LZ4 falls back to an uncompressed payload when the data does not compress.
func EncodeBinary(w io.Writer, m *Matrix, c Compression) error {
	if err := m.validate(); err != nil {
		return err
	}

	raw := make([]byte, 8*len(m.Data))
	for k, v := range m.Data {
		binary.LittleEndian.PutUint64(raw[8*k:], math.Float64bits(v))
	}
	sum := crc32.Checksum(raw, castagnoli)

	payload := raw
	if len(raw) == 0 {
		c = CompressionNone
	}
	switch c {
	case CompressionNone:
	case CompressionLZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(raw)))
		n, err := lz4.CompressBlock(raw, dst, nil)
		if err != nil {
			return fmt.Errorf("dataset: lz4: %w", err)
		}
		if n == 0 || n >= len(raw) {
			c = CompressionNone
		} else {
			payload = dst[:n]
		}
	case CompressionZSTD:
		enc := getZstdEncoder()
		payload = enc.EncodeAll(raw, nil)
		zstdEncoderPool.Put(enc)
	default:
		return fmt.Errorf("dataset: unknown compression %v", c)
	}

	var hdr [binaryHeaderSize]byte
	copy(hdr[0:4], binaryMagic)
	hdr[4] = binaryVersion
	hdr[5] = byte(c)
	binary.LittleEndian.PutUint64(hdr[8:], uint64(m.Rows))
	binary.LittleEndian.PutUint64(hdr[16:], uint64(m.Cols))
	binary.LittleEndian.PutUint32(hdr[24:], sum)
	binary.LittleEndian.PutUint64(hdr[28:], uint64(len(payload)))

	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// DecodeBinary parses a matrix in the binary format.
func DecodeBinary(data []byte) (*Matrix, error) {
	if len(data) < binaryHeaderSize {
		return nil, fmt.Errorf("%w: header truncated", ErrCorrupt)
	}
	if string(data[0:4]) != binaryMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrCorrupt, data[0:4])
	}
	if data[4] != binaryVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, data[4])
	}

	c := Compression(data[5])
	rows := binary.LittleEndian.Uint64(data[8:])
	cols := binary.LittleEndian.Uint64(data[16:])
	sum := binary.LittleEndian.Uint32(data[24:])
	stored := binary.LittleEndian.Uint64(data[28:])

	if rows > math.MaxInt32 || cols > math.MaxInt32 || rows*cols > math.MaxInt32 {
		return nil, fmt.Errorf("%w: dimensions %dx%d too large", ErrCorrupt, rows, cols)
	}
	if stored != uint64(len(data)-binaryHeaderSize) {
		return nil, fmt.Errorf("%w: payload length %d, header says %d", ErrCorrupt, len(data)-binaryHeaderSize, stored)
	}
	payload := data[binaryHeaderSize:]
	rawLen := int(rows * cols * 8)

	var raw []byte
	switch c {
	case CompressionNone:
		raw = payload
	case CompressionLZ4:
		raw = make([]byte, rawLen)
		n, err := lz4.UncompressBlock(payload, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %v", ErrCorrupt, err)
		}
		raw = raw[:n]
	case CompressionZSTD:
		dec := getZstdDecoder()
		out, err := dec.DecodeAll(payload, make([]byte, 0, rawLen))
		zstdDecoderPool.Put(dec)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrCorrupt, err)
		}
		raw = out
	default:
		return nil, fmt.Errorf("%w: unknown compression %d", ErrCorrupt, c)
	}

	if len(raw) != rawLen {
		return nil, fmt.Errorf("%w: payload is %d bytes, want %d", ErrCorrupt, len(raw), rawLen)
	}
	if crc32.Checksum(raw, castagnoli) != sum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}

	m := NewMatrix(int(rows), int(cols))
	for k := range m.Data {
		m.Data[k] = math.Float64frombits(binary.LittleEndian.Uint64(raw[8*k:]))
	}
	return m, nil
}
