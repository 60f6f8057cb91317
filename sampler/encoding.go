package sampler

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/visionkit/bovw/filterbank"
)

// Batch artifact layout (little endian):
//
//	[4]byte  magic "BVWB"
//	uint8    format version
//	uint8    compression type
//	uint32   image index
//	uint32   alpha
//	uint32   channels
//	uint32   uncompressed payload size
//	uint32   compressed payload size (0 = stored uncompressed)
//	[]byte   payload: alpha*channels float64 values
const (
	batchMagic   = "BVWB"
	batchVersion = 1
	headerSize   = 4 + 1 + 1 + 4 + 4 + 4 + 4 + 4
)

// Compression selects the payload compression of batch artifacts.
type Compression uint8

const (
	// CompressionNone stores payloads raw.
	CompressionNone Compression = 0
	// CompressionLZ4 is fast with a modest ratio.
	CompressionLZ4 Compression = 1
	// CompressionZSTD trades a little speed for a better ratio.
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
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ErrBadArtifact is returned when a batch artifact fails to decode.
var ErrBadArtifact = errors.New("malformed batch artifact")

// Shared zstd coder pair. EncodeAll/DecodeAll on these are safe for
// concurrent use, so one pair serves all workers.
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	zstdDecoder, _ = zstd.NewReader(nil)
)

// EncodeBatch serializes a batch for storage. Incompressible payloads
// fall back to raw storage regardless of the requested compression.
func EncodeBatch(b *Batch, compression Compression) ([]byte, error) {
	if b.Index < 0 || b.Index > math.MaxUint32 {
		return nil, fmt.Errorf("%w: batch index %d not set or out of range", filterbank.ErrInvalidInput, b.Index)
	}
	if b.Channels < 1 || b.Alpha() < 1 {
		return nil, fmt.Errorf("%w: batch has %d channels and %d rows", filterbank.ErrInvalidInput, b.Channels, b.Alpha())
	}
	if len(b.Data)%b.Channels != 0 {
		return nil, fmt.Errorf("%w: batch data length %d is not a multiple of %d channels",
			filterbank.ErrInvalidInput, len(b.Data), b.Channels)
	}

	payload := make([]byte, 8*len(b.Data))
	for i, v := range b.Data {
		binary.LittleEndian.PutUint64(payload[i*8:], math.Float64bits(v))
	}

	var compressed []byte
	switch compression {
	case CompressionNone:
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(payload)))
		n, err := lz4.CompressBlock(payload, buf, nil)
		if err != nil {
			return nil, fmt.Errorf("sampler: lz4 compress: %w", err)
		}
		if n > 0 {
			compressed = buf[:n]
		}
	case CompressionZSTD:
		compressed = zstdEncoder.EncodeAll(payload, nil)
	default:
		return nil, fmt.Errorf("sampler: unknown compression %d", compression)
	}

	// Keep the raw payload when compression does not pay for itself.
	if compressed == nil || len(compressed) >= len(payload) {
		compressed = nil
	}

	body := payload
	compressedSize := 0
	if compressed != nil {
		body = compressed
		compressedSize = len(compressed)
	}

	out := make([]byte, headerSize+len(body))
	copy(out, batchMagic)
	out[4] = batchVersion
	out[5] = byte(compression)
	binary.LittleEndian.PutUint32(out[6:], uint32(b.Index))
	binary.LittleEndian.PutUint32(out[10:], uint32(b.Alpha()))
	binary.LittleEndian.PutUint32(out[14:], uint32(b.Channels))
	binary.LittleEndian.PutUint32(out[18:], uint32(len(payload)))
	binary.LittleEndian.PutUint32(out[22:], uint32(compressedSize))
	copy(out[headerSize:], body)
	return out, nil
}

// DecodeBatch deserializes a batch artifact.
func DecodeBatch(data []byte) (*Batch, error) {
	if len(data) < headerSize || string(data[:4]) != batchMagic {
		return nil, fmt.Errorf("%w: bad header", ErrBadArtifact)
	}
	if data[4] != batchVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrBadArtifact, data[4])
	}

	compression := Compression(data[5])
	index := int(binary.LittleEndian.Uint32(data[6:]))
	alpha := int(binary.LittleEndian.Uint32(data[10:]))
	channels := int(binary.LittleEndian.Uint32(data[14:]))
	rawSize := int(binary.LittleEndian.Uint32(data[18:]))
	compressedSize := int(binary.LittleEndian.Uint32(data[22:]))

	if rawSize != 8*alpha*channels {
		return nil, fmt.Errorf("%w: payload size %d does not match %dx%d", ErrBadArtifact, rawSize, alpha, channels)
	}

	body := data[headerSize:]
	var payload []byte
	if compressedSize == 0 {
		if len(body) != rawSize {
			return nil, fmt.Errorf("%w: truncated payload", ErrBadArtifact)
		}
		payload = body
	} else {
		if len(body) != compressedSize {
			return nil, fmt.Errorf("%w: truncated payload", ErrBadArtifact)
		}
		var err error
		switch compression {
		case CompressionLZ4:
			payload = make([]byte, rawSize)
			if _, err = lz4.UncompressBlock(body, payload); err != nil {
				return nil, fmt.Errorf("%w: lz4: %s", ErrBadArtifact, err)
			}
		case CompressionZSTD:
			payload, err = zstdDecoder.DecodeAll(body, make([]byte, 0, rawSize))
			if err != nil {
				return nil, fmt.Errorf("%w: zstd: %s", ErrBadArtifact, err)
			}
		default:
			return nil, fmt.Errorf("%w: unknown compression %d", ErrBadArtifact, compression)
		}
		if len(payload) != rawSize {
			return nil, fmt.Errorf("%w: decompressed size mismatch", ErrBadArtifact)
		}
	}

	b := &Batch{
		Index:    index,
		Channels: channels,
		Data:     make([]float64, alpha*channels),
	}
	for i := range b.Data {
		b.Data[i] = math.Float64frombits(binary.LittleEndian.Uint64(payload[i*8:]))
	}
	return b, nil
}
