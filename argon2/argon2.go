package argon2

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
)

const syncPoints = 4

type options struct {
	secret         []byte
	associatedData []byte
	memoryLimit    uint32
}

// Option customises a single derivation.
type Option func(*options)

// WithSecret binds a secret key (K in RFC 9106) into the derivation.
func WithSecret(secret []byte) Option {
	return func(o *options) { o.secret = secret }
}

// WithAssociatedData binds associated data (X in RFC 9106) into the derivation.
func WithAssociatedData(data []byte) Option {
	return func(o *options) { o.associatedData = data }
}

// WithMemoryLimit refuses to allocate arenas larger than kib KiB. A request above
// the limit fails with ErrAllocationFailure instead of running with less memory.
// Zero leaves only MemoryCeiling in force.
func WithMemoryLimit(kib uint32) Option {
	return func(o *options) { o.memoryLimit = kib }
}

// Derive computes the Argon2 tag of password and salt.
//
// The password and salt are treated as opaque bytes; empty inputs are accepted.
// The same inputs always produce the same output.
func Derive(password, salt []byte, params Params, variant Variant, version Version) ([]byte, error) {
	return DeriveContext(context.Background(), password, salt, params, variant, version)
}

// DeriveContext is Derive with cancellation checked at every synchronisation point
// and optional secret, associated data and memory limit.
func DeriveContext(ctx context.Context, password, salt []byte, params Params, variant Variant, version Version, opts ...Option) ([]byte, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if !variant.Valid() {
		return nil, fmt.Errorf("%w: unknown variant %d", ErrInvalidParameters, uint32(variant))
	}
	if !version.Valid() {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidParameters, uint32(version))
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	limit := MemoryCeiling
	if o.memoryLimit > 0 && o.memoryLimit < limit {
		limit = o.memoryLimit
	}
	if params.Memory > limit {
		return nil, fmt.Errorf("%w: %d KiB requested, limit is %d KiB", ErrAllocationFailure, params.Memory, limit)
	}

	in := instance{
		params:  params,
		variant: variant,
		version: version,
		blocks:  params.blocks(),
		lanes:   params.Parallelism,
	}
	in.laneLength = in.blocks / in.lanes
	in.segmentLength = in.laneLength / syncPoints

	memory, err := allocate(in.blocks)
	if err != nil {
		return nil, err
	}
	defer clear(memory)
	in.memory = memory

	h0 := initialHash(password, salt, o.secret, o.associatedData, params, variant, version)
	defer clear(h0[:])

	in.seedLanes(&h0)
	if err := in.fill(ctx); err != nil {
		return nil, err
	}
	return in.finalize(), nil
}

// allocate reserves the arena as a single contiguous slice. Callers bound n
// by MemoryCeiling first; the Go runtime aborts rather than returning an error
// when an allocation cannot be satisfied.
func allocate(n uint32) ([]block, error) {
	if uint64(n)*blockSize > math.MaxInt {
		return nil, fmt.Errorf("%w: %d blocks exceed the address space", ErrAllocationFailure, n)
	}
	return make([]block, n), nil
}

// instance is the state of one derivation. memory is indexed as
// lane*laneLength + slice*segmentLength + index.
type instance struct {
	params  Params
	variant Variant
	version Version

	memory        []block
	blocks        uint32
	lanes         uint32
	laneLength    uint32
	segmentLength uint32
}

// seedLanes fills the first two blocks of every lane from H0.
func (in *instance) seedLanes(h0 *[prehashSize]byte) {
	var buf [blockSize]byte
	defer clear(buf[:])

	for lane := uint32(0); lane < in.lanes; lane++ {
		binary.LittleEndian.PutUint32(h0[blake2bSize+4:], lane)
		for i := uint32(0); i < 2; i++ {
			binary.LittleEndian.PutUint32(h0[blake2bSize:], i)
			hashVariable(buf[:], h0[:])
			b := &in.memory[lane*in.laneLength+i]
			for w := range b {
				b[w] = binary.LittleEndian.Uint64(buf[w*8:])
			}
		}
	}
}

// fill runs Time passes over the arena. Lanes of a slice are processed
// concurrently and joined before the next slice starts.
func (in *instance) fill(ctx context.Context) error {
	var wg sync.WaitGroup
	for pass := uint32(0); pass < in.params.Time; pass++ {
		for slice := uint32(0); slice < syncPoints; slice++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			if in.lanes == 1 {
				in.fillSegment(pass, slice, 0)
				continue
			}
			wg.Add(int(in.lanes))
			for lane := uint32(0); lane < in.lanes; lane++ {
				go func(lane uint32) {
					defer wg.Done()
					in.fillSegment(pass, slice, lane)
				}(lane)
			}
			wg.Wait()
		}
	}
	return ctx.Err()
}

func (in *instance) dataIndependent(pass, slice uint32) bool {
	switch in.variant {
	case Argon2i:
		return true
	case Argon2id:
		return pass == 0 && slice < syncPoints/2
	default:
		return false
	}
}

func (in *instance) fillSegment(pass, slice, lane uint32) {
	var addresses, input, zero block

	independent := in.dataIndependent(pass, slice)
	if independent {
		input[0] = uint64(pass)
		input[1] = uint64(lane)
		input[2] = uint64(slice)
		input[3] = uint64(in.blocks)
		input[4] = uint64(in.params.Time)
		input[5] = uint64(in.variant)
	}

	start := uint32(0)
	if pass == 0 && slice == 0 {
		// Blocks 0 and 1 of each lane come from seedLanes.
		start = 2
		if independent {
			nextAddresses(&addresses, &input, &zero)
		}
	}

	xor := in.version == Version13 && pass > 0
	laneStart := lane * in.laneLength
	offset := laneStart + slice*in.segmentLength + start

	for index := start; index < in.segmentLength; index, offset = index+1, offset+1 {
		prev := offset - 1
		if offset == laneStart {
			prev = laneStart + in.laneLength - 1
		}

		var pseudoRand uint64
		if independent {
			if index%blockWords == 0 {
				nextAddresses(&addresses, &input, &zero)
			}
			pseudoRand = addresses[index%blockWords]
		} else {
			pseudoRand = in.memory[prev][0]
		}

		ref := in.referenceIndex(pseudoRand, pass, slice, lane, index)
		compress(&in.memory[offset], &in.memory[prev], &in.memory[ref], xor)
	}
}

// nextAddresses bumps the counter in input and computes G(0, G(0, input)).
func nextAddresses(addresses, input, zero *block) {
	input[6]++
	compress(addresses, zero, input, false)
	compress(addresses, zero, addresses, false)
}

// referenceIndex maps the pseudo-random value J1||J2 to the absolute index of the
// reference block, following RFC 9106 section 3.4.
func (in *instance) referenceIndex(pseudoRand uint64, pass, slice, lane, index uint32) uint32 {
	j1 := pseudoRand & 0xFFFFFFFF
	j2 := uint32(pseudoRand >> 32)

	refLane := j2 % in.lanes
	if pass == 0 && slice == 0 {
		refLane = lane
	}
	sameLane := refLane == lane

	// Size of the window of blocks that may be referenced.
	var area uint64
	if pass == 0 {
		area = uint64(slice * in.segmentLength)
	} else {
		area = uint64(in.laneLength - in.segmentLength)
	}
	if sameLane {
		area += uint64(index) - 1
	} else if index == 0 {
		area--
	}

	x := (j1 * j1) >> 32
	y := (area * x) >> 32
	relative := area - 1 - y

	var startPos uint64
	if pass != 0 && slice != syncPoints-1 {
		startPos = uint64((slice + 1) * in.segmentLength)
	}

	return refLane*in.laneLength + uint32((startPos+relative)%uint64(in.laneLength))
}

// finalize XORs the last block of every lane and hashes it to the tag length.
func (in *instance) finalize() []byte {
	var (
		final block
		buf   [blockSize]byte
	)
	defer clear(buf[:])

	for lane := uint32(0); lane < in.lanes; lane++ {
		last := &in.memory[lane*in.laneLength+in.laneLength-1]
		for i := range final {
			final[i] ^= last[i]
		}
	}
	for i, w := range final {
		binary.LittleEndian.PutUint64(buf[i*8:], w)
	}

	out := make([]byte, in.params.KeyLength)
	hashVariable(out, buf[:])
	return out
}
