package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AuditLog is one entry of the queue audit trail. UserID is the acting
// doctor, nil for anonymous actions such as patient registration.
type AuditLog struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action    string     `gorm:"type:varchar(100);not null;index" json:"action"`
	Metadata  JSON       `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// JSON is a jsonb column value
type JSON map[string]interface{}

// Value implements driver.Valuer
func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner
func (j *JSON) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*j = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported jsonb value of type %T", value)
	}

	decoded := JSON{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*j = decoded
	return nil
}

// AuditLogFilter narrows an audit trail read. Results are newest first.
type AuditLogFilter struct {
	Action string
	Limit  int
}

// Audit actions
const (
	AuditActionUserSignup           = "user.signup"
	AuditActionUserLogin            = "user.login"
	AuditActionPatientRegister      = "patient.register"
	AuditActionPatientDelete        = "patient.delete"
	AuditActionPatientNotify        = "patient.notify"
	AuditActionQueueClaim           = "queue.claim"
	AuditActionQueueSweep           = "queue.sweep"
	AuditActionConsultationComplete = "consultation.complete"
	AuditActionConsultationSkip     = "consultation.skip"
)
