package sqlstore_test

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"testing"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	authmigrations "github.com/goliatone/go-authclient/migrations"
	sqlstore "github.com/goliatone/go-authclient/store/sql"

	"github.com/goliatone/go-authclient/core"
)

type testPersistenceConfig struct {
	driver string
	server string
}

func (c testPersistenceConfig) GetDebug() bool {
	return false
}

func (c testPersistenceConfig) GetDriver() string {
	return c.driver
}

func (c testPersistenceConfig) GetServer() string {
	return c.server
}

func (c testPersistenceConfig) GetPingTimeout() time.Duration {
	return time.Second
}

func (c testPersistenceConfig) GetOtelIdentifier() string {
	return "go-authclient-tests"
}

func TestMigrationSmokeApplySQLite(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	var tableName string
	if err := client.DB().NewRaw(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
		"auth_session_states",
	).Scan(context.Background(), &tableName); err != nil {
		t.Fatalf("query sqlite master: %v", err)
	}
	if tableName != "auth_session_states" {
		t.Fatalf("expected auth_session_states table, got %q", tableName)
	}
}

func TestSessionStateStore_SaveIsUpsertBySessionID(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	store := factory.SessionStateStore()
	if store == nil {
		t.Fatalf("expected session state store from factory")
	}

	first := core.StateMap{
		"auth_type":    "oauth2",
		"app_id":       "my-app",
		"access_token": "tok-1",
	}
	if err := store.Save(ctx, "sess-1", first); err != nil {
		t.Fatalf("first save: %v", err)
	}

	second := core.StateMap{
		"auth_type":     "oauth2",
		"app_id":        "my-app",
		"access_token":  "tok-2",
		"refresh_token": "ref-2",
	}
	if err := store.Save(ctx, "sess-1", second); err != nil {
		t.Fatalf("second save: %v", err)
	}

	var rowCount int
	if err := client.DB().NewRaw(
		"SELECT COUNT(*) FROM auth_session_states WHERE session_id = ?",
		"sess-1",
	).Scan(ctx, &rowCount); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if rowCount != 1 {
		t.Fatalf("expected one row per session after upsert, got %d", rowCount)
	}

	loaded, err := store.Load(ctx, "sess-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded["access_token"] != "tok-2" || loaded["refresh_token"] != "ref-2" {
		t.Fatalf("expected latest snapshot to win, got %v", loaded)
	}
}

func TestSessionStateStore_RecordsAuthTypeColumn(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	store := factory.SessionStateStore()

	if err := store.Save(ctx, "sess-oauth2", core.StateMap{
		"auth_type":    "oauth2",
		"access_token": "tok-1",
	}); err != nil {
		t.Fatalf("save oauth2 snapshot: %v", err)
	}
	if err := store.Save(ctx, "sess-untagged", core.StateMap{
		"app_id": "my-app",
	}); err != nil {
		t.Fatalf("save untagged snapshot: %v", err)
	}

	authType := func(sessionID string) string {
		t.Helper()
		var value string
		if err := client.DB().NewRaw(
			"SELECT auth_type FROM auth_session_states WHERE session_id = ?",
			sessionID,
		).Scan(ctx, &value); err != nil {
			t.Fatalf("select auth_type for %s: %v", sessionID, err)
		}
		return value
	}

	if got := authType("sess-oauth2"); got != "oauth2" {
		t.Fatalf("expected oauth2 column value, got %q", got)
	}
	if got := authType("sess-untagged"); got != core.DefaultStrategyTag {
		t.Fatalf("expected default tag for untagged snapshot, got %q", got)
	}
}

func TestSessionStateStore_LoadMissingSessionReturnsEmptySnapshot(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}

	snapshot, err := factory.SessionStateStore().Load(ctx, "never-saved")
	if err != nil {
		t.Fatalf("load missing session: %v", err)
	}
	if len(snapshot) != 0 {
		t.Fatalf("expected empty snapshot for missing session, got %v", snapshot)
	}
}

func TestSessionStateStore_DeleteRemovesSnapshot(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	store := factory.SessionStateStore()

	if err := store.Save(ctx, "sess-drop", core.StateMap{"auth_type": "none", "app_id": "x"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(ctx, "sess-drop"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	snapshot, err := store.Load(ctx, "sess-drop")
	if err != nil {
		t.Fatalf("load after delete: %v", err)
	}
	if len(snapshot) != 0 {
		t.Fatalf("expected empty snapshot after delete, got %v", snapshot)
	}

	// Deleting an absent session is not an error.
	if err := store.Delete(ctx, "sess-drop"); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestSessionStateStore_RejectsBlankSessionID(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	store := factory.SessionStateStore()

	if err := store.Save(ctx, "   ", core.StateMap{"auth_type": "none"}); err == nil {
		t.Fatalf("expected blank session id to be rejected on save")
	}
	if err := store.Delete(ctx, ""); err == nil {
		t.Fatalf("expected blank session id to be rejected on delete")
	}
}

func newSQLiteClient(t *testing.T) (*persistence.Client, func()) {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:authclient-test-%d?mode=memory&cache=shared&_foreign_keys=on",
		time.Now().UnixNano(),
	)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := testPersistenceConfig{
		driver: "sqlite3",
		server: dsn,
	}
	client, err := persistence.New(cfg, sqlDB, sqlitedialect.New())
	if err != nil {
		_ = sqlDB.Close()
		t.Fatalf("new persistence client: %v", err)
	}

	ctx := context.Background()
	_, err = authmigrations.Register(ctx, func(_ context.Context, dialect string, _ string, fsys fs.FS) error {
		if dialect != authmigrations.DialectSQLite {
			return nil
		}
		client.RegisterSQLMigrations(fsys)
		return nil
	}, authmigrations.WithValidationTargets(authmigrations.DialectSQLite))
	if err != nil {
		_ = client.Close()
		t.Fatalf("register migrations: %v", err)
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		t.Fatalf("migrate: %v", err)
	}

	return client, func() {
		_ = client.Close()
	}
}
