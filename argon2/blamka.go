package argon2

import "math/bits"

const (
	blockSize  = 1024
	blockWords = blockSize / 8
)

// block is one 1 KiB memory cell viewed as 128 little-endian words.
type block [blockWords]uint64

// compress computes G(x, y) into out. When xor is set the result is folded into the
// previous contents of out (version 1.3 behaviour for passes after the first).
func compress(out, x, y *block, xor bool) {
	var r, z block
	for i := range r {
		r[i] = x[i] ^ y[i]
	}
	z = r

	// Rows: eight consecutive 16-word groups.
	for i := 0; i < blockWords; i += 16 {
		permute(&z, i, i+1, i+2, i+3, i+4, i+5, i+6, i+7,
			i+8, i+9, i+10, i+11, i+12, i+13, i+14, i+15)
	}
	// Columns: word pairs taken with a stride of 16.
	for i := 0; i < 16; i += 2 {
		permute(&z, i, i+1, i+16, i+17, i+32, i+33, i+48, i+49,
			i+64, i+65, i+80, i+81, i+96, i+97, i+112, i+113)
	}

	if xor {
		for i := range out {
			out[i] ^= r[i] ^ z[i]
		}
		return
	}
	for i := range out {
		out[i] = r[i] ^ z[i]
	}
}

// permute applies the BlaMka round P to sixteen words of b addressed by index.
func permute(b *block, i0, i1, i2, i3, i4, i5, i6, i7, i8, i9, i10, i11, i12, i13, i14, i15 int) {
	v0, v1, v2, v3 := b[i0], b[i1], b[i2], b[i3]
	v4, v5, v6, v7 := b[i4], b[i5], b[i6], b[i7]
	v8, v9, v10, v11 := b[i8], b[i9], b[i10], b[i11]
	v12, v13, v14, v15 := b[i12], b[i13], b[i14], b[i15]

	v0, v4, v8, v12 = mix(v0, v4, v8, v12)
	v1, v5, v9, v13 = mix(v1, v5, v9, v13)
	v2, v6, v10, v14 = mix(v2, v6, v10, v14)
	v3, v7, v11, v15 = mix(v3, v7, v11, v15)

	v0, v5, v10, v15 = mix(v0, v5, v10, v15)
	v1, v6, v11, v12 = mix(v1, v6, v11, v12)
	v2, v7, v8, v13 = mix(v2, v7, v8, v13)
	v3, v4, v9, v14 = mix(v3, v4, v9, v14)

	b[i0], b[i1], b[i2], b[i3] = v0, v1, v2, v3
	b[i4], b[i5], b[i6], b[i7] = v4, v5, v6, v7
	b[i8], b[i9], b[i10], b[i11] = v8, v9, v10, v11
	b[i12], b[i13], b[i14], b[i15] = v12, v13, v14, v15
}

// mix is the BlaMka variant of the BLAKE2b G function.
func mix(a, b, c, d uint64) (uint64, uint64, uint64, uint64) {
	a = fBlaMka(a, b)
	d = bits.RotateLeft64(d^a, -32)
	c = fBlaMka(c, d)
	b = bits.RotateLeft64(b^c, -24)
	a = fBlaMka(a, b)
	d = bits.RotateLeft64(d^a, -16)
	c = fBlaMka(c, d)
	b = bits.RotateLeft64(b^c, -63)
	return a, b, c, d
}

func fBlaMka(x, y uint64) uint64 {
	return x + y + 2*uint64(uint32(x))*uint64(uint32(y))
}
