package argon2

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"testing"

	xargon2 "golang.org/x/crypto/argon2"
)

func repeat(b byte, n int) []byte {
	return bytes.Repeat([]byte{b}, n)
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return b
}

func TestRFC9106Vectors(t *testing.T) {
	params := Params{Memory: 32, Time: 3, Parallelism: 4, KeyLength: 32}

	cases := []struct {
		variant Variant
		want    string
	}{
		{Argon2d, "512b391b6f1162975371d30919734294f868e3be3984f3c1a13a4db9fabe4acb"},
		{Argon2i, "c814d9d1dc7f37aa13f0d77f2494bda1c8de6b016dd388d29952a4c4672b6ce8"},
		{Argon2id, "0d640df58d78766c08c037a34a8b53c9d01ef0452d75b65eb52520e96b01e659"},
	}

	for _, tc := range cases {
		t.Run(tc.variant.String(), func(t *testing.T) {
			got, err := DeriveContext(
				context.Background(),
				repeat(0x01, 32),
				repeat(0x02, 16),
				params,
				tc.variant,
				Version13,
				WithSecret(repeat(0x03, 8)),
				WithAssociatedData(repeat(0x04, 12)),
			)
			if err != nil {
				t.Fatalf("DeriveContext error: %v", err)
			}
			if want := mustHex(t, tc.want); !bytes.Equal(got, want) {
				t.Fatalf("tag mismatch:\n got %x\nwant %x", got, want)
			}
		})
	}
}

func TestReferenceVectorsBothVersions(t *testing.T) {
	params := Params{Memory: 65536, Time: 2, Parallelism: 1, KeyLength: 32}

	cases := []struct {
		version Version
		want    string
	}{
		{Version10, "f6c4db4a54e2a370627aff3db6176b94a2a209a62c8e36152711802f7b30c694"},
		{Version13, "c1628832147d9720c5bd1cfd61367078729f6dfb6f8fea9ff98158e0d7816ed0"},
	}

	for _, tc := range cases {
		got, err := Derive([]byte("password"), []byte("somesalt"), params, Argon2i, tc.version)
		if err != nil {
			t.Fatalf("Derive(v=%d) error: %v", tc.version, err)
		}
		if want := mustHex(t, tc.want); !bytes.Equal(got, want) {
			t.Fatalf("v=%d tag mismatch:\n got %x\nwant %x", tc.version, got, want)
		}
	}
}

func TestMatchesXCryptoImplementation(t *testing.T) {
	cases := []Params{
		{Memory: 8, Time: 1, Parallelism: 1, KeyLength: 32},
		{Memory: 64, Time: 3, Parallelism: 2, KeyLength: 16},
		{Memory: 1000, Time: 2, Parallelism: 4, KeyLength: 64},
		{Memory: 259, Time: 1, Parallelism: 3, KeyLength: 100},
		{Memory: 19456, Time: 2, Parallelism: 1, KeyLength: 32},
	}
	password := []byte("correct horse battery staple")
	salt := []byte("0123456789abcdef")

	for _, p := range cases {
		gotID, err := Derive(password, salt, p, Argon2id, Version13)
		if err != nil {
			t.Fatalf("Derive argon2id %+v: %v", p, err)
		}
		wantID := xargon2.IDKey(password, salt, p.Time, p.Memory, uint8(p.Parallelism), p.KeyLength)
		if !bytes.Equal(gotID, wantID) {
			t.Fatalf("argon2id mismatch for %+v:\n got %x\nwant %x", p, gotID, wantID)
		}

		gotI, err := Derive(password, salt, p, Argon2i, Version13)
		if err != nil {
			t.Fatalf("Derive argon2i %+v: %v", p, err)
		}
		wantI := xargon2.Key(password, salt, p.Time, p.Memory, uint8(p.Parallelism), p.KeyLength)
		if !bytes.Equal(gotI, wantI) {
			t.Fatalf("argon2i mismatch for %+v:\n got %x\nwant %x", p, gotI, wantI)
		}
	}
}

func TestDeriveDeterministic(t *testing.T) {
	p := Params{Memory: 64, Time: 2, Parallelism: 2, KeyLength: 32}
	for _, v := range []Variant{Argon2d, Argon2i, Argon2id} {
		a, err := Derive([]byte("pw"), []byte("saltsalt"), p, v, Version13)
		if err != nil {
			t.Fatalf("Derive error: %v", err)
		}
		b, err := Derive([]byte("pw"), []byte("saltsalt"), p, v, Version13)
		if err != nil {
			t.Fatalf("Derive error: %v", err)
		}
		if !bytes.Equal(a, b) {
			t.Fatalf("%s: expected identical output for identical input", v)
		}
	}
}

func TestDeriveSeparatesInputs(t *testing.T) {
	p := Params{Memory: 32, Time: 1, Parallelism: 1, KeyLength: 32}
	base, err := Derive([]byte("pw"), []byte("saltsalt"), p, Argon2id, Version13)
	if err != nil {
		t.Fatalf("Derive error: %v", err)
	}

	variants := map[string]func() ([]byte, error){
		"password": func() ([]byte, error) { return Derive([]byte("pW"), []byte("saltsalt"), p, Argon2id, Version13) },
		"salt":     func() ([]byte, error) { return Derive([]byte("pw"), []byte("saltsalT"), p, Argon2id, Version13) },
		"variant":  func() ([]byte, error) { return Derive([]byte("pw"), []byte("saltsalt"), p, Argon2d, Version13) },
		"version":  func() ([]byte, error) { return Derive([]byte("pw"), []byte("saltsalt"), p, Argon2id, Version10) },
		"memory": func() ([]byte, error) {
			q := p
			q.Memory = 33
			return Derive([]byte("pw"), []byte("saltsalt"), q, Argon2id, Version13)
		},
	}
	for name, fn := range variants {
		out, err := fn()
		if err != nil {
			t.Fatalf("%s: Derive error: %v", name, err)
		}
		if bytes.Equal(out, base) {
			t.Fatalf("%s: changing the input did not change the output", name)
		}
	}
}

func TestDeriveAcceptsEmptyAndBinaryPassword(t *testing.T) {
	p := Params{Memory: 16, Time: 1, Parallelism: 1, KeyLength: 32}

	empty, err := Derive(nil, []byte("saltsalt"), p, Argon2id, Version13)
	if err != nil {
		t.Fatalf("empty password rejected: %v", err)
	}
	if len(empty) != 32 {
		t.Fatalf("expected 32-byte output, got %d", len(empty))
	}

	withNUL, err := Derive([]byte("a\x00b"), []byte("saltsalt"), p, Argon2id, Version13)
	if err != nil {
		t.Fatalf("password with NUL rejected: %v", err)
	}
	truncated, err := Derive([]byte("a"), []byte("saltsalt"), p, Argon2id, Version13)
	if err != nil {
		t.Fatalf("Derive error: %v", err)
	}
	if bytes.Equal(withNUL, truncated) {
		t.Fatal("password was truncated at NUL byte")
	}

	if _, err := Derive([]byte{0xff, 0xfe, 0x80}, []byte("saltsalt"), p, Argon2id, Version13); err != nil {
		t.Fatalf("non-UTF8 password rejected: %v", err)
	}
}

func TestParamsValidation(t *testing.T) {
	cases := []struct {
		name   string
		params Params
	}{
		{"memory below 8 per lane", Params{Memory: 15, Time: 1, Parallelism: 2, KeyLength: 32}},
		{"zero memory", Params{Memory: 0, Time: 1, Parallelism: 1, KeyLength: 32}},
		{"zero time", Params{Memory: 64, Time: 0, Parallelism: 1, KeyLength: 32}},
		{"zero parallelism", Params{Memory: 64, Time: 1, Parallelism: 0, KeyLength: 32}},
		{"parallelism too large", Params{Memory: 1 << 31, Time: 1, Parallelism: 1 << 24, KeyLength: 32}},
		{"short key", Params{Memory: 64, Time: 1, Parallelism: 1, KeyLength: 3}},
	}

	for _, tc := range cases {
		if _, err := Derive([]byte("pw"), []byte("saltsalt"), tc.params, Argon2id, Version13); !errors.Is(err, ErrInvalidParameters) {
			t.Fatalf("%s: expected ErrInvalidParameters, got %v", tc.name, err)
		}
	}

	if err := (Params{Memory: 16, Time: 1, Parallelism: 2, KeyLength: 4}).Validate(); err != nil {
		t.Fatalf("expected minimum legal params to validate, got %v", err)
	}
}

func TestDeriveRejectsUnknownVariantAndVersion(t *testing.T) {
	p := Params{Memory: 16, Time: 1, Parallelism: 1, KeyLength: 32}
	if _, err := Derive(nil, nil, p, Variant(7), Version13); !errors.Is(err, ErrInvalidParameters) {
		t.Fatalf("expected ErrInvalidParameters for unknown variant, got %v", err)
	}
	if _, err := Derive(nil, nil, p, Argon2id, Version(0x12)); !errors.Is(err, ErrInvalidParameters) {
		t.Fatalf("expected ErrInvalidParameters for unknown version, got %v", err)
	}
}

func TestDeriveMemoryLimitSurfacesAllocationFailure(t *testing.T) {
	p := Params{Memory: 4096, Time: 1, Parallelism: 1, KeyLength: 32}
	_, err := DeriveContext(context.Background(), []byte("pw"), []byte("saltsalt"), p, Argon2id, Version13, WithMemoryLimit(1024))
	if !errors.Is(err, ErrAllocationFailure) {
		t.Fatalf("expected ErrAllocationFailure, got %v", err)
	}

	if _, err := DeriveContext(context.Background(), []byte("pw"), []byte("saltsalt"), p, Argon2id, Version13, WithMemoryLimit(4096)); err != nil {
		t.Fatalf("expected request at the limit to succeed, got %v", err)
	}
}

func TestDeriveMemoryCeiling(t *testing.T) {
	p := Params{Memory: ^uint32(0), Time: 1, Parallelism: 1, KeyLength: 32}

	if _, err := Derive([]byte("pw"), []byte("saltsalt"), p, Argon2id, Version13); !errors.Is(err, ErrAllocationFailure) {
		t.Fatalf("expected ErrAllocationFailure without a limit, got %v", err)
	}
	// A per-call limit above the ceiling does not lift it.
	_, err := DeriveContext(context.Background(), []byte("pw"), []byte("saltsalt"), p, Argon2id, Version13, WithMemoryLimit(^uint32(0)))
	if !errors.Is(err, ErrAllocationFailure) {
		t.Fatalf("expected ErrAllocationFailure above the ceiling, got %v", err)
	}

	p.Memory = MemoryCeiling + 1
	if _, err := Derive([]byte("pw"), []byte("saltsalt"), p, Argon2id, Version13); !errors.Is(err, ErrAllocationFailure) {
		t.Fatalf("expected ErrAllocationFailure just above the ceiling, got %v", err)
	}
}

func TestDeriveContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Params{Memory: 64, Time: 1, Parallelism: 1, KeyLength: 32}
	if _, err := DeriveContext(ctx, []byte("pw"), []byte("saltsalt"), p, Argon2id, Version13); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestParseVariant(t *testing.T) {
	for _, v := range []Variant{Argon2d, Argon2i, Argon2id} {
		got, err := ParseVariant(v.String())
		if err != nil {
			t.Fatalf("ParseVariant(%q) error: %v", v.String(), err)
		}
		if got != v {
			t.Fatalf("ParseVariant(%q) = %v", v.String(), got)
		}
	}
	for _, s := range []string{"", "argon2", "Argon2id", "argon2di", "scrypt"} {
		if _, err := ParseVariant(s); err == nil {
			t.Fatalf("expected ParseVariant(%q) to fail", s)
		}
	}
}

func TestArenaRounding(t *testing.T) {
	p := Params{Memory: 259, Time: 1, Parallelism: 3, KeyLength: 32}
	if got := p.blocks(); got != 252 {
		t.Fatalf("expected 252 blocks, got %d", got)
	}
}

func BenchmarkDeriveDefault(b *testing.B) {
	p := Params{Memory: 19456, Time: 2, Parallelism: 1, KeyLength: 32}
	password := []byte("correct horse battery staple")
	salt := []byte("0123456789abcdef")

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Derive(password, salt, p, Argon2id, Version13); err != nil {
			b.Fatal(err)
		}
	}
}
