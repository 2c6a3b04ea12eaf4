package goHash

import "github.com/MrEthical07/goHash/internal/security"

// SecurityReport grades the Engine configuration. See Engine.SecurityReport.
type SecurityReport = security.Report

// SecurityFinding is one deviation reported in a SecurityReport.
type SecurityFinding = security.Finding

// SecurityReport grades the configured hashing parameters against the OWASP
// argon2id baseline and flags unbounded memory use. It never changes behavior.
func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	pw := e.config.Password
	return security.BuildReport(security.Input{
		Variant:          pw.Variant.String(),
		Version:          uint32(pw.Version),
		Memory:           pw.Memory,
		Time:             pw.Time,
		Parallelism:      pw.Parallelism,
		SaltLength:       pw.SaltLength,
		KeyLength:        pw.KeyLength,
		MaxMemory:        pw.MaxMemory,
		LocalBudgetKiB:   e.config.Admission.MemoryKiB,
		ClusterBudgetKiB: e.config.Admission.ClusterMemoryKiB,
		AuditEnabled:     e.config.Audit.Enabled,
	})
}
