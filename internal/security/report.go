package security

import "fmt"

// Cost pairs accepted as the minimum for argon2id by the OWASP password
// storage guidance. Each trades memory for passes at equal strength.
var costBaseline = []struct{ memory, time uint32 }{
	{memory: 47104, time: 1},
	{memory: 19456, time: 2},
	{memory: 12288, time: 3},
	{memory: 9216, time: 4},
	{memory: 7168, time: 5},
}

const (
	recommendedVariant    = "argon2id"
	recommendedVersion    = 0x13
	recommendedSaltLength = 16
	recommendedKeyLength  = 32
)

// Input is the configuration being graded.
type Input struct {
	Variant     string
	Version     uint32
	Memory      uint32
	Time        uint32
	Parallelism uint32
	SaltLength  uint32
	KeyLength   uint32
	MaxMemory   uint32

	LocalBudgetKiB   int64
	ClusterBudgetKiB int64
	AuditEnabled     bool
}

// Finding is one deviation from the baseline.
type Finding struct {
	Field   string
	Message string
}

// Report echoes the graded configuration with its findings.
type Report struct {
	Input
	MeetsBaseline bool
	Findings      []Finding
}

// BuildReport grades in. MeetsBaseline covers the parameters that decide the
// strength of new hashes; operational findings do not affect it.
func BuildReport(in Input) Report {
	r := Report{Input: in, MeetsBaseline: true}
	weak := func(field, format string, args ...any) {
		r.MeetsBaseline = false
		r.Findings = append(r.Findings, Finding{Field: field, Message: fmt.Sprintf(format, args...)})
	}
	note := func(field, msg string) {
		r.Findings = append(r.Findings, Finding{Field: field, Message: msg})
	}

	if in.Variant != recommendedVariant {
		weak("variant", "%s is not recommended for password storage; use %s", in.Variant, recommendedVariant)
	}
	if in.Version != recommendedVersion {
		weak("version", "version %d is superseded by %d", in.Version, recommendedVersion)
	}
	if !meetsCost(in.Memory, in.Time) {
		weak("cost", "m=%d,t=%d is below the m=19456,t=2 baseline or an equivalent pair", in.Memory, in.Time)
	}
	if in.SaltLength < recommendedSaltLength {
		weak("salt_length", "salt of %d bytes is shorter than %d", in.SaltLength, recommendedSaltLength)
	}
	if in.KeyLength < recommendedKeyLength {
		weak("key_length", "output of %d bytes is shorter than %d", in.KeyLength, recommendedKeyLength)
	}

	if in.MaxMemory == 0 {
		note("max_memory", "stored hashes may request up to the 16 GiB arena ceiling during verification")
	}
	if in.LocalBudgetKiB == 0 && in.ClusterBudgetKiB == 0 {
		note("admission", "no admission budget; concurrent hashing memory is unbounded")
	}

	return r
}

func meetsCost(memory, passes uint32) bool {
	for _, c := range costBaseline {
		if memory >= c.memory && passes >= c.time {
			return true
		}
	}
	return false
}
