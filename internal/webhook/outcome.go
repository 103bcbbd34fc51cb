package webhook

import (
	"instagram-agent/internal/audit"
	"instagram-agent/internal/model"
	"instagram-agent/internal/quota"
	"instagram-agent/prometheus"
)

// recordAttempt writes the outbound audit row for one send attempt and,
// when the send went through, consumes a quota slot. Every attempt,
// success or failure, produces exactly one Message record.
func recordAttempt(auditLog *audit.Log, limiter *quota.Limiter, msg model.Message) error {
	if _, err := auditLog.RecordMessage(msg); err != nil {
		return err
	}
	prometheus.RecordMessage(msg.MessageType, msg.Sent)
	if msg.Sent {
		return limiter.Increment(msg.TenantID)
	}
	return nil
}
