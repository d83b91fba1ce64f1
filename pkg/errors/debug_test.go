package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestDumpPgxError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "stores_slug_key", TableName: "stores", Detail: "Key (slug)=(x) already exists."}
	err := Wrap(CodeConflict, fmt.Errorf("insert store: %w", pgErr), "slug taken")

	d := Dump(err)
	if d.Code != CodeConflict || d.PGCode != "23505" || d.PGConstraint != "stores_slug_key" || d.PGTable != "stores" {
		t.Fatalf("unexpected dump %+v", d)
	}
	if len(d.Chain) != 3 {
		t.Fatalf("expected three links in chain, got %v", d.Chain)
	}

	fields := d.Fields()
	if fields["pg_constraint"] != "stores_slug_key" || fields["error_code"] != "CONFLICT" {
		t.Fatalf("unexpected fields %v", fields)
	}
}

func TestDumpPqError(t *testing.T) {
	d := Dump(&pq.Error{Code: "23503", Constraint: "products_store_id_fkey", Table: "products"})
	if d.PGCode != "23503" || d.PGConstraint != "products_store_id_fkey" || d.Code != "" {
		t.Fatalf("unexpected dump %+v", d)
	}
	if _, ok := d.Fields()["error_code"]; ok {
		t.Fatalf("plain errors carry no code")
	}
}

func TestDumpNil(t *testing.T) {
	if d := Dump(nil); d.TopMessage != "" || len(d.Fields()) != 0 {
		t.Fatalf("expected empty dump, got %+v", d)
	}
}
