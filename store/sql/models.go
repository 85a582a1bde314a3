package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type sessionStateRecord struct {
	bun.BaseModel `bun:"table:auth_session_states,alias:ass"`

	ID        string            `bun:"id,pk"`
	SessionID string            `bun:"session_id,notnull,unique"`
	AuthType  string            `bun:"auth_type,notnull"`
	State     map[string]string `bun:"state,type:jsonb,notnull"`
	CreatedAt time.Time         `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time         `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
