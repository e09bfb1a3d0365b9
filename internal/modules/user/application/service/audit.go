package service

import "context"

// AuditLogger appends rows to the persisted audit log.
type AuditLogger interface {
	Record(ctx context.Context, level, message, userID string, metadata map[string]interface{})
}

type nopAudit struct{}

func (nopAudit) Record(context.Context, string, string, string, map[string]interface{}) {}

func auditOrNop(a AuditLogger) AuditLogger {
	if a == nil {
		return nopAudit{}
	}
	return a
}
