package audit

import (
	"context"

	"github.com/agentmart/relay-service/pkg/log"
)

// Audit actions for the relay.
const (
	ActionAuth        = "relay.auth"
	ActionAuthFailed  = "relay.auth_failed"
	ActionJoinChat    = "relay.join_chat"
	ActionJoinDenied  = "relay.join_denied"
	ActionLeaveChat   = "relay.leave_chat"
	ActionSendMessage = "relay.send_message"
	ActionDisconnect  = "relay.disconnect"
)

// Field constants for audit entries.
const (
	FieldAction   = "action"
	FieldTargetID = "target_id"
	FieldDetail   = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action string, userID string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Msg(msg)
}

// LogWithDetail emits an audit log with extra detail field.
func LogWithDetail(ctx context.Context, action string, userID string, detail string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(FieldDetail, detail).
		Msg(msg)
}
