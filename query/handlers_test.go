package query

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-authclient/core"
)

type stubSessionReader struct {
	statusFn func(ctx context.Context, sessionID string) (core.SessionStatus, error)
	exportFn func(ctx context.Context, sessionID string) (core.StateMap, error)
}

func (s stubSessionReader) SessionStatus(ctx context.Context, sessionID string) (core.SessionStatus, error) {
	if s.statusFn == nil {
		return core.SessionStatus{}, errors.New("unexpected SessionStatus call")
	}
	return s.statusFn(ctx, sessionID)
}

func (s stubSessionReader) ExportSessionState(ctx context.Context, sessionID string) (core.StateMap, error) {
	if s.exportFn == nil {
		return nil, errors.New("unexpected ExportSessionState call")
	}
	return s.exportFn(ctx, sessionID)
}

func TestSessionStatusQuery_DelegatesToReader(t *testing.T) {
	expected := core.SessionStatus{SessionID: "sess-1", AuthType: "oauth2", Ready: true, CanSignHeaders: true}

	reader := stubSessionReader{
		statusFn: func(_ context.Context, sessionID string) (core.SessionStatus, error) {
			if sessionID != "sess-1" {
				t.Fatalf("expected session sess-1, got %q", sessionID)
			}
			return expected, nil
		},
	}

	status, err := NewSessionStatusQuery(reader).Query(context.Background(), SessionStatusMessage{SessionID: "sess-1"})
	if err != nil {
		t.Fatalf("query status: %v", err)
	}
	if status != expected {
		t.Fatalf("unexpected status: %#v", status)
	}
}

func TestExportSessionStateQuery_DelegatesToReader(t *testing.T) {
	reader := stubSessionReader{
		exportFn: func(_ context.Context, sessionID string) (core.StateMap, error) {
			return core.StateMap{"app_id": "my-app"}, nil
		},
	}

	state, err := NewExportSessionStateQuery(reader).Query(context.Background(), ExportSessionStateMessage{SessionID: "sess-1"})
	if err != nil {
		t.Fatalf("query export: %v", err)
	}
	if state["app_id"] != "my-app" {
		t.Fatalf("unexpected state: %v", state)
	}
}

func TestQueries_PropagateReaderErrors(t *testing.T) {
	boom := errors.New("boom")
	reader := stubSessionReader{
		statusFn: func(context.Context, string) (core.SessionStatus, error) {
			return core.SessionStatus{}, boom
		},
	}

	if _, err := NewSessionStatusQuery(reader).Query(context.Background(), SessionStatusMessage{SessionID: "x"}); !errors.Is(err, boom) {
		t.Fatalf("expected reader error, got %v", err)
	}
}

func TestQueries_RequireReader(t *testing.T) {
	if _, err := NewSessionStatusQuery(nil).Query(context.Background(), SessionStatusMessage{SessionID: "x"}); err == nil {
		t.Fatalf("expected missing reader error")
	}
	if _, err := NewExportSessionStateQuery(nil).Query(context.Background(), ExportSessionStateMessage{SessionID: "x"}); err == nil {
		t.Fatalf("expected missing reader error")
	}
}

func TestQueryMessages_Validate(t *testing.T) {
	if err := (SessionStatusMessage{SessionID: "sess-1"}).Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	if err := (SessionStatusMessage{SessionID: "  "}).Validate(); err == nil {
		t.Fatalf("expected blank session id to be rejected")
	}
	if err := (ExportSessionStateMessage{}).Validate(); err == nil {
		t.Fatalf("expected blank session id to be rejected")
	}
	if (SessionStatusMessage{}).Type() != TypeSessionStatus {
		t.Fatalf("unexpected status type")
	}
	if (ExportSessionStateMessage{}).Type() != TypeExportSessionState {
		t.Fatalf("unexpected export type")
	}
}
