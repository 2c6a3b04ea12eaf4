package argon2

import (
	"encoding/binary"
	"hash"

	"golang.org/x/crypto/blake2b"
)

const (
	blake2bSize = blake2b.Size
	// prehashSize is the length of H0 plus the two 32-bit words appended when seeding lanes.
	prehashSize = blake2bSize + 8
)

// initialHash computes H0 over the parameters and inputs. The returned array has room
// for the block index and lane words used by seedLanes.
func initialHash(password, salt, secret, data []byte, p Params, variant Variant, version Version) [prehashSize]byte {
	var (
		h0  [prehashSize]byte
		buf [24]byte
	)

	b2, _ := blake2b.New512(nil)
	binary.LittleEndian.PutUint32(buf[0:], p.Parallelism)
	binary.LittleEndian.PutUint32(buf[4:], p.KeyLength)
	binary.LittleEndian.PutUint32(buf[8:], p.Memory)
	binary.LittleEndian.PutUint32(buf[12:], p.Time)
	binary.LittleEndian.PutUint32(buf[16:], uint32(version))
	binary.LittleEndian.PutUint32(buf[20:], uint32(variant))
	b2.Write(buf[:])

	writeWithLength(b2, password)
	writeWithLength(b2, salt)
	writeWithLength(b2, secret)
	writeWithLength(b2, data)

	b2.Sum(h0[:0])
	return h0
}

func writeWithLength(h hash.Hash, b []byte) {
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], uint32(len(b)))
	h.Write(n[:])
	h.Write(b)
}

// hashVariable is the variable-length hash H' of RFC 9106 section 3.3.
// Outputs up to 64 bytes are a single BLAKE2b call; longer outputs chain 64-byte
// digests and keep the first 32 bytes of each.
func hashVariable(out, in []byte) {
	var (
		prefix [4]byte
		digest [blake2b.Size]byte
	)
	binary.LittleEndian.PutUint32(prefix[:], uint32(len(out)))

	if len(out) <= blake2b.Size {
		b2, _ := blake2b.New(len(out), nil)
		b2.Write(prefix[:])
		b2.Write(in)
		b2.Sum(out[:0])
		return
	}

	b2, _ := blake2b.New512(nil)
	b2.Write(prefix[:])
	b2.Write(in)
	b2.Sum(digest[:0])
	copy(out, digest[:32])
	rest := out[32:]

	for len(rest) > blake2b.Size {
		digest = blake2b.Sum512(digest[:])
		copy(rest, digest[:32])
		rest = rest[32:]
	}

	last, _ := blake2b.New(len(rest), nil)
	last.Write(digest[:])
	last.Sum(rest[:0])
}
