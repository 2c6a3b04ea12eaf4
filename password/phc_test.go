package password

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/MrEthical07/goHash/argon2"
)

const referencePHC = "$argon2i$v=19$m=65536,t=2,p=1$c29tZXNhbHQ$wWKIMhR9lyDFvRz9YTZweHKfbftvj+qf+YFY4NeBbtA"

func TestDecodeReference(t *testing.T) {
	parsed, err := Decode(referencePHC)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if parsed.Variant != argon2.Argon2i || parsed.Version != argon2.Version13 {
		t.Fatalf("unexpected variant/version: %s/%d", parsed.Variant, parsed.Version)
	}
	if parsed.Params.Memory != 65536 || parsed.Params.Time != 2 || parsed.Params.Parallelism != 1 {
		t.Fatalf("unexpected params: %+v", parsed.Params)
	}
	if string(parsed.Salt) != "somesalt" {
		t.Fatalf("unexpected salt %q", parsed.Salt)
	}
	if len(parsed.Hash) != 32 || parsed.Params.KeyLength != 32 {
		t.Fatalf("unexpected hash length %d / key length %d", len(parsed.Hash), parsed.Params.KeyLength)
	}

	if got := Encode(parsed); got != referencePHC {
		t.Fatalf("re-encode mismatch:\n got %s\nwant %s", got, referencePHC)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := PHC{
		Variant: argon2.Argon2d,
		Version: argon2.Version10,
		Params:  argon2.Params{Memory: 4096, Time: 7, Parallelism: 3},
		Salt:    bytes.Repeat([]byte{0xfe}, 13),
		Hash:    bytes.Repeat([]byte{0x01}, 47),
	}

	out, err := Decode(Encode(in))
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if out.Variant != in.Variant || out.Version != in.Version {
		t.Fatalf("variant/version mismatch: %+v", out)
	}
	if out.Params.Memory != 4096 || out.Params.Time != 7 || out.Params.Parallelism != 3 || out.Params.KeyLength != 47 {
		t.Fatalf("params mismatch: %+v", out.Params)
	}
	if !bytes.Equal(out.Salt, in.Salt) || !bytes.Equal(out.Hash, in.Hash) {
		t.Fatal("salt or hash mismatch after round trip")
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	h := PHC{
		Variant: argon2.Argon2id,
		Version: argon2.Version13,
		Params:  argon2.Params{Memory: 19456, Time: 2, Parallelism: 1},
		Salt:    []byte("0123456789abcdef"),
		Hash:    bytes.Repeat([]byte{0x7f}, 32),
	}
	first := Encode(h)
	if first != Encode(h) {
		t.Fatal("expected Encode to be deterministic")
	}
	parts := strings.Split(first, "$")
	if strings.Contains(parts[4], "=") || strings.Contains(parts[5], "=") {
		t.Fatalf("unexpected base64 padding in %s", first)
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	valid := referencePHC
	cases := map[string]string{
		"empty":               "",
		"no leading dollar":   strings.TrimPrefix(valid, "$"),
		"short salt":          "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"truncated":           valid[:strings.LastIndex(valid, "$")+6],
		"missing hash":        "$argon2i$v=19$m=65536,t=2,p=1$c29tZXNhbHQ",
		"extra field":         valid + "$",
		"unknown variant":     strings.Replace(valid, "argon2i", "argon2x", 1),
		"upper-case variant":  strings.Replace(valid, "argon2i", "Argon2i", 1),
		"missing version":     "$argon2i$m=65536,t=2,p=1$c29tZXNhbHQ$wWKIMhR9lyDFvRz9YTZweHKfbftvj+qf+YFY4NeBbtA",
		"unsupported version": strings.Replace(valid, "v=19", "v=20", 1),
		"leading zero":        strings.Replace(valid, "m=65536", "m=065536", 1),
		"signed number":       strings.Replace(valid, "t=2", "t=+2", 1),
		"params out of order": strings.Replace(valid, "m=65536,t=2", "t=2,m=65536", 1),
		"missing param":       strings.Replace(valid, ",p=1", "", 1),
		"extra param":         strings.Replace(valid, "p=1", "p=1,keyid=x", 1),
		"memory too low":      strings.Replace(valid, "m=65536,t=2,p=1", "m=8,t=2,p=4", 1),
		"zero time":           strings.Replace(valid, "t=2", "t=0", 1),
		"overflowing number":  strings.Replace(valid, "m=65536", "m=4294967296", 1),
		"padded salt":         strings.Replace(valid, "c29tZXNhbHQ", "c29tZXNhbHQ=", 1),
		"newline in hash":     strings.Replace(valid, "wWKIMhR9", "wWKI\nMhR9", 1),
		"url-safe alphabet":   strings.Replace(valid, "+qf+", "-qf-", 1),
		"corrupted character": strings.Replace(valid, "wWKIMhR9", "wWKI*hR9", 1),
		"non-canonical tail":  strings.Replace(valid, "c29tZXNhbHQ", "c29tZXNhbHR", 1),
		"hash too short":      "$argon2i$v=19$m=65536,t=2,p=1$c29tZXNhbHQ$aGFzaA",
	}

	for name, encoded := range cases {
		_, err := Decode(encoded)
		if !errors.Is(err, ErrMalformedHash) {
			t.Fatalf("%s: expected ErrMalformedHash, got %v", name, err)
		}
		var decodeErr *DecodeError
		if !errors.As(err, &decodeErr) || decodeErr.Field == "" {
			t.Fatalf("%s: expected *DecodeError with a field, got %T", name, err)
		}
	}
}

func TestDecodeErrorNamesField(t *testing.T) {
	_, err := Decode("$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA")
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected *DecodeError, got %v", err)
	}
	if decodeErr.Field != "salt" {
		t.Fatalf("expected salt field, got %q", decodeErr.Field)
	}
}
