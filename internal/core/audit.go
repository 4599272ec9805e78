package core

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
)

const (
	auditKey     = "audit_logs"
	auditMaxKeep = 1000
)

type AuditLog struct {
	Timestamp int64                  `json:"timestamp"`
	Action    string                 `json:"action"`
	Actor     string                 `json:"actor"`
	IP        string                 `json:"ip"`
	Details   map[string]interface{} `json:"details"`
}

// LogAudit records an admin-visible event. Storage failures are logged and
// never block the caller.
func LogAudit(ctx context.Context, action, actor, ip string, details map[string]interface{}) {
	slog.Info("audit log", "action", action, "actor", actor, "ip", ip, "details", details)
	AuditLogsTotal.WithLabelValues(action).Inc()

	if AuditDB == nil {
		return
	}

	entry := AuditLog{
		Timestamp: time.Now().Unix(),
		Action:    action,
		Actor:     actor,
		IP:        ip,
		Details:   details,
	}
	data, _ := json.Marshal(entry)
	if err := AuditDB.LPush(ctx, auditKey, data).Err(); err != nil {
		slog.Error("Failed to store audit log", "action", action, "error", err)
		return
	}
	AuditDB.LTrim(ctx, auditKey, 0, auditMaxKeep-1)
}

func RecentAudit(ctx context.Context, n int64) ([]AuditLog, error) {
	raw, err := AuditDB.LRange(ctx, auditKey, 0, n-1).Result()
	if err != nil {
		return nil, err
	}
	logs := make([]AuditLog, 0, len(raw))
	for _, l := range raw {
		var entry AuditLog
		if err := json.Unmarshal([]byte(l), &entry); err == nil {
			logs = append(logs, entry)
		}
	}
	return logs, nil
}
