package sqlstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openSQLite(t *testing.T, key string) *Store {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "shop.db")
	s, err := Open(context.Background(), SQLite, dsn, key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_UnknownDialect(t *testing.T) {
	if _, err := Open(context.Background(), "oracle", "x", "items"); err == nil {
		t.Fatal("expected error for unknown dialect")
	}
}

func TestOpen_EmptyKey(t *testing.T) {
	if _, err := Open(context.Background(), SQLite, ":memory:", ""); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestSQLite_LoadAbsent(t *testing.T) {
	s := openSQLite(t, "items")
	data, ok, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ok || data != nil {
		t.Fatalf("expected absent, got ok=%v data=%q", ok, data)
	}
}

func TestSQLite_SaveUpserts(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t, "items")

	for _, blob := range []string{`["first"]`, `["second"]`} {
		if err := s.Save(ctx, []byte(blob)); err != nil {
			t.Fatalf("save %s: %v", blob, err)
		}
	}
	out, ok, err := s.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if string(out) != `["second"]` {
		t.Fatalf("got %q", out)
	}

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM shop_kv`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected a single row, got %d", n)
	}
}

func TestSQLite_KeysAreIsolated(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "shop.db")
	a, err := Open(ctx, SQLite, dsn, "a")
	if err != nil {
		t.Fatalf("open a: %v", err)
	}
	if err := a.Save(ctx, []byte(`["a"]`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	a.Close()

	b, err := Open(ctx, SQLite, dsn, "b")
	if err != nil {
		t.Fatalf("open b: %v", err)
	}
	defer b.Close()
	if _, ok, _ := b.Load(ctx); ok {
		t.Fatal("key b must be absent")
	}
}

// Server-backed dialects run only when a DSN is provided.
func TestServerDialects(t *testing.T) {
	cases := []struct {
		dialect string
		env     string
	}{
		{Postgres, "TEST_POSTGRES_URL"},
		{MySQL, "TEST_MYSQL_DSN"},
	}
	for _, c := range cases {
		t.Run(c.dialect, func(t *testing.T) {
			dsn := os.Getenv(c.env)
			if dsn == "" {
				t.Skipf("%s not set; skipping", c.env)
			}
			ctx := context.Background()
			key := fmt.Sprintf("shop-test-%d", time.Now().UnixNano())
			s, err := Open(ctx, c.dialect, dsn, key)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			t.Cleanup(func() {
				q := `DELETE FROM shop_kv WHERE k = ?`
				if c.dialect == Postgres {
					q = `DELETE FROM shop_kv WHERE k = $1`
				}
				s.db.ExecContext(context.Background(), q, key)
				s.Close()
			})

			if _, ok, err := s.Load(ctx); err != nil || ok {
				t.Fatalf("expected absent: ok=%v err=%v", ok, err)
			}
			for _, blob := range []string{`[1]`, `[2]`} {
				if err := s.Save(ctx, []byte(blob)); err != nil {
					t.Fatalf("save: %v", err)
				}
			}
			out, ok, err := s.Load(ctx)
			if err != nil || !ok || string(out) != `[2]` {
				t.Fatalf("load: %q ok=%v err=%v", out, ok, err)
			}
		})
	}
}
