// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventstore

import (
	"encoding/binary"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/zeebo/blake3"
)

// Compression identifies the algorithm applied to a stored record's
// payload. The tag is stored as the first byte of each record — these
// values are format constants, changing them breaks existing stores.
type Compression uint8

const (
	// CompressionNone stores the payload uncompressed. Chosen
	// automatically when compression does not shrink the payload.
	CompressionNone Compression = 0

	// CompressionLZ4 is LZ4 block compression: fast, modest ratio.
	CompressionLZ4 Compression = 1

	// CompressionZstd is zstd at the default level. Event payloads
	// are JSON-shaped text, where zstd's ratio is worth the CPU.
	// This is the default write-side choice.
	CompressionZstd Compression = 2
)

// String returns the human-readable name of a compression tag.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression parses a compression tag from its string form
// (config files use the names).
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression tag: %q", name)
	}
}

// recordDomainKey is the 32-byte BLAKE3 keyed-hash domain for event
// records. Fixed constant — changing it invalidates every stored
// hash. ASCII encoding of the domain name, zero-padded, so the key is
// inspectable in hex dumps.
var recordDomainKey = [32]byte{
	't', 'h', 'r', 'e', 'a', 'd', 's', '.',
	'e', 'v', 'e', 'n', 't', 's', 't', 'o', 'r', 'e', '.',
	'r', 'e', 'c', 'o', 'r', 'd', 0, 0, 0, 0, 0, 0, 0,
}

// recordHeaderSize is tag (1) + uncompressed length (4) + hash (32).
const recordHeaderSize = 1 + 4 + 32

// zstd encoder/decoder are reused across calls; both are safe for
// concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("eventstore: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("eventstore: zstd decoder initialization failed: " + err.Error())
	}
}

// hashPayload computes the record-domain keyed BLAKE3 hash of the
// uncompressed payload.
func hashPayload(payload []byte) [32]byte {
	hasher, err := blake3.NewKeyed(recordDomainKey[:])
	if err != nil {
		// The key is a compile-time 32-byte constant; NewKeyed only
		// fails on wrong key length.
		panic("eventstore: blake3 keyed hasher: " + err.Error())
	}
	hasher.Write(payload)
	var digest [32]byte
	hasher.Sum(digest[:0])
	return digest
}

// encodeRecord frames an uncompressed payload into the stored record
// form: tag byte, uncompressed length, keyed hash, compressed bytes.
// When the requested algorithm does not shrink the payload the record
// falls back to CompressionNone.
func encodeRecord(payload []byte, compression Compression) ([]byte, error) {
	compressed := payload
	tag := CompressionNone

	switch compression {
	case CompressionNone:
		// Nothing to do.
	case CompressionLZ4:
		bound := lz4.CompressBlockBound(len(payload))
		destination := make([]byte, bound)
		written, err := lz4.CompressBlock(payload, destination, nil)
		if err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		// CompressBlock returns 0 for incompressible input.
		if written > 0 && written < len(payload) {
			compressed = destination[:written]
			tag = CompressionLZ4
		}
	case CompressionZstd:
		encoded := zstdEncoder.EncodeAll(payload, nil)
		if len(encoded) < len(payload) {
			compressed = encoded
			tag = CompressionZstd
		}
	default:
		return nil, fmt.Errorf("unsupported compression tag: %d", compression)
	}

	digest := hashPayload(payload)
	record := make([]byte, recordHeaderSize, recordHeaderSize+len(compressed))
	record[0] = byte(tag)
	binary.BigEndian.PutUint32(record[1:5], uint32(len(payload)))
	copy(record[5:37], digest[:])
	return append(record, compressed...), nil
}

// decodeRecord unframes a stored record, decompresses the payload,
// and verifies its keyed hash. Any mismatch is corruption and returns
// an error.
func decodeRecord(record []byte) ([]byte, error) {
	if len(record) < recordHeaderSize {
		return nil, fmt.Errorf("record too short: %d bytes", len(record))
	}
	tag := Compression(record[0])
	uncompressedSize := int(binary.BigEndian.Uint32(record[1:5]))
	var storedDigest [32]byte
	copy(storedDigest[:], record[5:37])
	compressed := record[recordHeaderSize:]

	var payload []byte
	switch tag {
	case CompressionNone:
		if len(compressed) != uncompressedSize {
			return nil, fmt.Errorf("uncompressed record: size %d does not match header %d",
				len(compressed), uncompressedSize)
		}
		payload = compressed
	case CompressionLZ4:
		payload = make([]byte, uncompressedSize)
		read, err := lz4.UncompressBlock(compressed, payload)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if read != uncompressedSize {
			return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, uncompressedSize)
		}
	case CompressionZstd:
		decoded, err := zstdDecoder.DecodeAll(compressed, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		if len(decoded) != uncompressedSize {
			return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(decoded), uncompressedSize)
		}
		payload = decoded
	default:
		return nil, fmt.Errorf("unsupported compression tag: %d", tag)
	}

	if hashPayload(payload) != storedDigest {
		return nil, fmt.Errorf("record hash mismatch (corrupt store)")
	}
	return payload, nil
}
