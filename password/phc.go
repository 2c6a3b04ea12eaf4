package password

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"

	"github.com/MrEthical07/goHash/argon2"
)

const (
	// MinSaltLength is the shortest salt accepted in an encoded hash.
	MinSaltLength = 8
	// MaxSaltLength is the longest salt accepted in an encoded hash.
	MaxSaltLength = 64
	// MinHashLength is the shortest derived output accepted in an encoded hash.
	MinHashLength = 10
	// MaxHashLength is the longest derived output accepted in an encoded hash.
	MaxHashLength = 64
)

var (
	b64             = base64.RawStdEncoding.Strict()
	errNonCanonical = errors.New("non-canonical base64")
)

// PHC is the decoded form of an encoded hash string:
//
//	$<variant>$v=<version>$m=<memory>,t=<time>,p=<parallelism>$<salt>$<hash>
//
// Params.KeyLength always equals len(Hash) for decoded values.
type PHC struct {
	Variant argon2.Variant
	Version argon2.Version
	Params  argon2.Params
	Salt    []byte
	Hash    []byte
}

// Encode serialises h. Identical values always produce identical strings.
func Encode(h PHC) string {
	var b strings.Builder
	b.Grow(64 + b64.EncodedLen(len(h.Salt)) + b64.EncodedLen(len(h.Hash)))

	b.WriteByte('$')
	b.WriteString(h.Variant.String())
	b.WriteString("$v=")
	b.WriteString(strconv.FormatUint(uint64(h.Version), 10))
	b.WriteString("$m=")
	b.WriteString(strconv.FormatUint(uint64(h.Params.Memory), 10))
	b.WriteString(",t=")
	b.WriteString(strconv.FormatUint(uint64(h.Params.Time), 10))
	b.WriteString(",p=")
	b.WriteString(strconv.FormatUint(uint64(h.Params.Parallelism), 10))
	b.WriteByte('$')
	b.WriteString(b64.EncodeToString(h.Salt))
	b.WriteByte('$')
	b.WriteString(b64.EncodeToString(h.Hash))

	return b.String()
}

// Decode parses an encoded hash. It accepts only the canonical form produced by
// Encode and returns a *DecodeError on any deviation; no partial result is returned.
func Decode(encoded string) (PHC, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return PHC{}, malformed("format", "expected 5 '$'-prefixed fields")
	}

	variant, err := argon2.ParseVariant(parts[1])
	if err != nil {
		return PHC{}, malformed("variant", "unsupported algorithm "+strconv.Quote(parts[1]))
	}

	version, err := parseVersion(parts[2])
	if err != nil {
		return PHC{}, err
	}

	params, err := parseParams(parts[3])
	if err != nil {
		return PHC{}, err
	}

	salt, err := decodeBase64(parts[4])
	if err != nil {
		return PHC{}, malformed("salt", "invalid base64")
	}
	if len(salt) < MinSaltLength || len(salt) > MaxSaltLength {
		return PHC{}, malformed("salt", "length out of range")
	}

	hash, err := decodeBase64(parts[5])
	if err != nil {
		return PHC{}, malformed("hash", "invalid base64")
	}
	if len(hash) < MinHashLength || len(hash) > MaxHashLength {
		return PHC{}, malformed("hash", "length out of range")
	}

	params.KeyLength = uint32(len(hash))
	if err := params.Validate(); err != nil {
		return PHC{}, malformed("params", err.Error())
	}

	return PHC{
		Variant: variant,
		Version: version,
		Params:  params,
		Salt:    salt,
		Hash:    hash,
	}, nil
}

// decodeBase64 rejects anything Encode would not have produced, including the
// line breaks the standard decoder skips.
func decodeBase64(s string) ([]byte, error) {
	raw, err := b64.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if b64.EncodeToString(raw) != s {
		return nil, errNonCanonical
	}
	return raw, nil
}

func parseVersion(part string) (argon2.Version, error) {
	value, ok := strings.CutPrefix(part, "v=")
	if !ok {
		return 0, malformed("version", "missing v= prefix")
	}
	v, ok := parseDecimal(value)
	if !ok {
		return 0, malformed("version", "invalid number")
	}
	version := argon2.Version(v)
	if !version.Valid() {
		return 0, malformed("version", "unsupported version "+value)
	}
	return version, nil
}

// parseParams requires exactly m, t and p in that order so that each tuple has a
// single encoding.
func parseParams(part string) (argon2.Params, error) {
	var params argon2.Params

	fields := strings.Split(part, ",")
	if len(fields) != 3 {
		return params, malformed("params", "expected m=,t=,p=")
	}

	keys := [3]string{"m", "t", "p"}
	targets := [3]*uint32{&params.Memory, &params.Time, &params.Parallelism}

	for i, field := range fields {
		key, value, ok := strings.Cut(field, "=")
		if !ok || key != keys[i] {
			return params, malformed("params", "expected "+keys[i]+"= at position "+strconv.Itoa(i+1))
		}
		n, ok := parseDecimal(value)
		if !ok {
			return params, malformed("params", "invalid value for "+key)
		}
		*targets[i] = n
	}

	return params, nil
}

// parseDecimal accepts a canonical unsigned 32-bit decimal: digits only, no sign,
// no leading zeros.
func parseDecimal(s string) (uint32, bool) {
	if s == "" || len(s) > 10 {
		return 0, false
	}
	if len(s) > 1 && s[0] == '0' {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}
