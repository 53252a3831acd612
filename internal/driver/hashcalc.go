package driver

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Digest is a SHA-256 value identifying a unit and the options it was
// checked with.
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// IsZero reports whether d was never computed.
func (d Digest) IsZero() bool { return d == Digest{} }

// combineDigest: H(content || part1 || part2 ...), parts in fixed order.
func combineDigest(content []byte, parts ...[]byte) Digest {
	h := sha256.New()
	_, _ = h.Write(content)
	for _, p := range parts {
		var n [binary.MaxVarintLen64]byte
		_, _ = h.Write(n[:binary.PutUvarint(n[:], uint64(len(p)))])
		_, _ = h.Write(p)
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// unitDigest keys a unit in the disk cache. Everything that changes the
// diagnostics or the report of a unit takes part: its path, its content,
// the options that reach the checker and the cache schema.
func unitDigest(path string, content []byte, opts *Options) Digest {
	var buf []byte
	buf = binary.AppendUvarint(buf, uint64(diskCacheSchemaVersion))
	buf = binary.AppendVarint(buf, int64(opts.MaxDiagnostics))
	buf = binary.AppendVarint(buf, int64(opts.MaxDepth))
	if opts.Dedup {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	return combineDigest(content, []byte(path), buf)
}
