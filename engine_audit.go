package goHash

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goHash/argon2"
	"github.com/MrEthical07/goHash/password"
)

const (
	auditEventHashSuccess       = "hash_success"
	auditEventHashFailure       = "hash_failure"
	auditEventVerifyMatch       = "verify_match"
	auditEventVerifyMismatch    = "verify_mismatch"
	auditEventVerifyFailure     = "verify_failure"
	auditEventAdmissionRejected = "admission_rejected"
)

// AuditErrorCode is the stable, non-sensitive error label carried by audit events.
type AuditErrorCode string

const (
	auditErrMalformedHash     AuditErrorCode = "malformed_hash"
	auditErrInvalidParameters AuditErrorCode = "invalid_parameters"
	auditErrAllocation        AuditErrorCode = "allocation_failure"
	auditErrRandomness        AuditErrorCode = "randomness_unavailable"
	auditErrOverloaded        AuditErrorCode = "overloaded"
	auditErrUnavailable       AuditErrorCode = "backend_unavailable"
	auditErrCanceled          AuditErrorCode = "canceled"
	auditErrInternal          AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	duration time.Duration,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		RequestID: RequestIDFromContext(ctx),
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Duration:  duration,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, password.ErrMalformedHash):
		return auditErrMalformedHash
	case errors.Is(err, argon2.ErrInvalidParameters):
		return auditErrInvalidParameters
	case errors.Is(err, argon2.ErrAllocationFailure):
		return auditErrAllocation
	case errors.Is(err, password.ErrRandomnessUnavailable):
		return auditErrRandomness
	case errors.Is(err, ErrOverloaded):
		return auditErrOverloaded
	case errors.Is(err, ErrAdmissionUnavailable):
		return auditErrUnavailable
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return auditErrCanceled
	default:
		return auditErrInternal
	}
}
