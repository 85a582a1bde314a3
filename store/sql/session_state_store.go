package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-authclient/core"
)

// SessionStateStore persists exported strategy state keyed by session id,
// one row per session, newest snapshot wins.
type SessionStateStore struct {
	db   *bun.DB
	repo repository.Repository[*sessionStateRecord]
}

func (s *SessionStateStore) Save(ctx context.Context, sessionID string, state core.StateMap) error {
	if s == nil || s.repo == nil || s.db == nil {
		return fmt.Errorf("sqlstore: session state store is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return fmt.Errorf("sqlstore: session id is required")
	}

	now := time.Now().UTC()
	snapshot := core.CloneStateMap(state)
	authType := snapshot["auth_type"]
	if authType == "" {
		authType = core.DefaultStrategyTag
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		result, err := tx.NewUpdate().
			Model((*sessionStateRecord)(nil)).
			Set("state = ?", snapshot).
			Set("auth_type = ?", authType).
			Set("updated_at = ?", now).
			Where("session_id = ?", sessionID).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected > 0 {
			return nil
		}

		record := &sessionStateRecord{
			ID:        uuid.NewString(),
			SessionID: sessionID,
			AuthType:  authType,
			State:     snapshot,
			CreatedAt: now,
			UpdatedAt: now,
		}
		_, createErr := s.repo.CreateTx(ctx, tx, record)
		return createErr
	})
}

// Load returns the stored snapshot for sessionID, or an empty map when no
// snapshot exists. A missing snapshot is not an error.
func (s *SessionStateStore) Load(ctx context.Context, sessionID string) (core.StateMap, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: session state store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("session_id", "=", strings.TrimSpace(sessionID)),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.StateMap{}, nil
		}
		return nil, err
	}
	if len(records) == 0 {
		return core.StateMap{}, nil
	}
	return core.CloneStateMap(records[0].State), nil
}

func (s *SessionStateStore) Delete(ctx context.Context, sessionID string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: session state store is not configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return fmt.Errorf("sqlstore: session id is required")
	}
	_, err := s.db.NewDelete().
		Model((*sessionStateRecord)(nil)).
		Where("session_id = ?", sessionID).
		Exec(ctx)
	return err
}

var _ core.StateStore = (*SessionStateStore)(nil)
