package querybuilder

import (
	"reflect"
	"testing"
	"time"
)

func TestSelect_ToSQL(t *testing.T) {
	t.Parallel()

	sql, args, err := Select("*").
		From("goals").
		Where(Eq("user_id", "u-1"), EqLiteral("status", "ACTUAL")).
		OrderBy("created_at", "id").
		Limit(1).
		ToSQL()
	if err != nil {
		t.Fatalf("to sql: %v", err)
	}

	want := "SELECT * FROM goals WHERE user_id = $1 AND status = 'ACTUAL' ORDER BY created_at, id LIMIT 1"
	if sql != want {
		t.Fatalf("unexpected sql:\n got: %s\nwant: %s", sql, want)
	}
	if !reflect.DeepEqual(args, []any{"u-1"}) {
		t.Fatalf("unexpected args: %#v", args)
	}
}

func TestSelect_ComparisonConditions(t *testing.T) {
	t.Parallel()

	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	sql, args, err := Select("s.*").
		From("sessions s JOIN session_entries e ON e.session_id = s.id").
		Where(
			Eq("e.user_id", "u-1"),
			Eq("s.finished", false),
			Lte("s.start_date", day),
			Gte("s.end_date", day),
		).
		ToSQL()
	if err != nil {
		t.Fatalf("to sql: %v", err)
	}

	want := "SELECT s.* FROM sessions s JOIN session_entries e ON e.session_id = s.id" +
		" WHERE e.user_id = $1 AND s.finished = $2 AND s.start_date <= $3 AND s.end_date >= $4"
	if sql != want {
		t.Fatalf("unexpected sql:\n got: %s\nwant: %s", sql, want)
	}
	if len(args) != 4 {
		t.Fatalf("unexpected args: %#v", args)
	}
}

func TestSelect_LtCondition(t *testing.T) {
	t.Parallel()

	sql, args, err := Select("*").
		From("sessions").
		Where(Lt("end_date", "2026-03-01"), Eq("finished", false)).
		ToSQL()
	if err != nil {
		t.Fatalf("to sql: %v", err)
	}

	want := "SELECT * FROM sessions WHERE end_date < $1 AND finished = $2"
	if sql != want {
		t.Fatalf("unexpected sql: %s", sql)
	}
	if !reflect.DeepEqual(args, []any{"2026-03-01", false}) {
		t.Fatalf("unexpected args: %#v", args)
	}
}

func TestSelect_InCondition(t *testing.T) {
	t.Parallel()

	sql, args, err := Select("id").
		From("leagues").
		Where(In("tier", []any{1, 2, 3})).
		ToSQL()
	if err != nil {
		t.Fatalf("to sql: %v", err)
	}

	want := "SELECT id FROM leagues WHERE tier IN ($1, $2, $3)"
	if sql != want {
		t.Fatalf("unexpected sql: %s", sql)
	}
	if !reflect.DeepEqual(args, []any{1, 2, 3}) {
		t.Fatalf("unexpected args: %#v", args)
	}
}

func TestSelect_EmptyInNeverMatches(t *testing.T) {
	t.Parallel()

	sql, args, err := Select("id").
		From("leagues").
		Where(In("tier", nil)).
		ToSQL()
	if err != nil {
		t.Fatalf("to sql: %v", err)
	}

	want := "SELECT id FROM leagues WHERE 1=0"
	if sql != want {
		t.Fatalf("unexpected sql: %s", sql)
	}
	if len(args) != 0 {
		t.Fatalf("unexpected args: %#v", args)
	}
}

func TestSelect_MissingTable(t *testing.T) {
	t.Parallel()

	if _, _, err := Select("id").ToSQL(); err == nil {
		t.Fatalf("expected error for missing table")
	}
}

func TestInsert_WithConflictSuffix(t *testing.T) {
	t.Parallel()

	sql, args, err := InsertInto("user_points").
		Columns("user_id", "recycle_points", "version").
		Values("u-1", 10, 1).
		Suffix("ON CONFLICT (user_id) DO NOTHING").
		ToSQL()
	if err != nil {
		t.Fatalf("to sql: %v", err)
	}

	want := "INSERT INTO user_points (user_id, recycle_points, version) VALUES ($1, $2, $3) ON CONFLICT (user_id) DO NOTHING"
	if sql != want {
		t.Fatalf("unexpected sql: %s", sql)
	}
	if !reflect.DeepEqual(args, []any{"u-1", 10, 1}) {
		t.Fatalf("unexpected args: %#v", args)
	}
}

func TestInsert_RowArityMismatch(t *testing.T) {
	t.Parallel()

	_, _, err := InsertInto("user_points").
		Columns("user_id", "recycle_points").
		Values("u-1").
		ToSQL()
	if err == nil {
		t.Fatalf("expected error for row arity mismatch")
	}
}

func TestUpdate_SetExprWithWhere(t *testing.T) {
	t.Parallel()

	sql, args, err := Update("user_points").
		Set("recycle_points", 12).
		SetExpr("version", "version + 1").
		Where(Eq("user_id", "u-1"), Eq("version", int64(3))).
		ToSQL()
	if err != nil {
		t.Fatalf("to sql: %v", err)
	}

	want := "UPDATE user_points SET recycle_points = $1, version = version + 1 WHERE user_id = $2 AND version = $3"
	if sql != want {
		t.Fatalf("unexpected sql:\n got: %s\nwant: %s", sql, want)
	}
	if !reflect.DeepEqual(args, []any{12, "u-1", int64(3)}) {
		t.Fatalf("unexpected args: %#v", args)
	}
}

func TestUpdate_ExprConditionRewritesPlaceholders(t *testing.T) {
	t.Parallel()

	sql, args, err := Update("goals").
		Set("status", "INACTIVE").
		Where(Expr("next_check <= ? AND status = ?", "2026-03-01", "ACTUAL")).
		ToSQL()
	if err != nil {
		t.Fatalf("to sql: %v", err)
	}

	want := "UPDATE goals SET status = $1 WHERE next_check <= $2 AND status = $3"
	if sql != want {
		t.Fatalf("unexpected sql: %s", sql)
	}
	if !reflect.DeepEqual(args, []any{"INACTIVE", "2026-03-01", "ACTUAL"}) {
		t.Fatalf("unexpected args: %#v", args)
	}
}

func TestInsertModel(t *testing.T) {
	t.Parallel()

	type pointsRow struct {
		UserID  string `db:"user_id"`
		Recycle int    `db:"recycle_points"`
		Skipped string `db:"-"`
		NoTag   string
	}

	sql, args, err := InsertModel("user_points", pointsRow{
		UserID:  "u-1",
		Recycle: 10,
		Skipped: "ignored",
		NoTag:   "ignored",
	}, "")
	if err != nil {
		t.Fatalf("insert model: %v", err)
	}

	want := "INSERT INTO user_points (user_id, recycle_points) VALUES ($1, $2)"
	if sql != want {
		t.Fatalf("unexpected sql: %s", sql)
	}
	if !reflect.DeepEqual(args, []any{"u-1", 10}) {
		t.Fatalf("unexpected args: %#v", args)
	}
}

func TestInsertModel_RejectsNonStruct(t *testing.T) {
	t.Parallel()

	if _, _, err := InsertModel("user_points", 42, ""); err == nil {
		t.Fatalf("expected error for non-struct model")
	}

	var row *struct {
		ID string `db:"id"`
	}
	if _, _, err := InsertModel("user_points", row, ""); err == nil {
		t.Fatalf("expected error for nil model")
	}
}
