package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func newRun(name string, startedAt int64) *Run {
	return &Run{
		CommandName:     name,
		CommandType:     "connect",
		Profile:         "dev",
		Region:          "eu-west-1",
		InstanceID:      "i-0123",
		CommandLine:     "aws ssm start-session --profile dev --region eu-west-1 --target i-0123",
		StartedAtUnixMs: startedAt,
	}
}

func TestRecordStart_FillsDefaults(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	defer store.Close()

	r := newRun("web", 0)
	if err := store.RecordStart(context.Background(), r); err != nil {
		t.Fatalf("RecordStart() error = %v", err)
	}

	if _, err := uuid.Parse(r.RunID); err != nil {
		t.Errorf("RunID %q is not a uuid: %v", r.RunID, err)
	}
	if r.StartedAtUnixMs == 0 {
		t.Error("StartedAtUnixMs was not set")
	}
}

func TestRecordStart_Validation(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	if err := store.RecordStart(ctx, nil); err == nil {
		t.Error("RecordStart(nil) should fail")
	}
	if err := store.RecordStart(ctx, &Run{CommandLine: "x"}); err == nil {
		t.Error("RecordStart without name should fail")
	}
	if err := store.RecordStart(ctx, &Run{CommandName: "x"}); err == nil {
		t.Error("RecordStart without command line should fail")
	}
}

func TestRecordStart_DuplicateID(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	r := newRun("web", 1000)
	r.RunID = "fixed"
	if err := store.RecordStart(ctx, r); err != nil {
		t.Fatalf("RecordStart() error = %v", err)
	}
	dup := newRun("web", 2000)
	dup.RunID = "fixed"
	if err := store.RecordStart(ctx, dup); err == nil {
		t.Error("duplicate RunID should fail")
	}
}

func TestRecordEnd(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	r := newRun("web", 1000)
	if err := store.RecordStart(ctx, r); err != nil {
		t.Fatalf("RecordStart() error = %v", err)
	}
	if err := store.RecordEnd(ctx, r.RunID, 255, 5000); err != nil {
		t.Fatalf("RecordEnd() error = %v", err)
	}

	runs, err := store.QueryRuns(ctx, RunQuery{})
	if err != nil {
		t.Fatalf("QueryRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("QueryRuns() returned %d runs, want 1", len(runs))
	}
	got := runs[0]
	if got.ExitCode == nil || *got.ExitCode != 255 {
		t.Errorf("ExitCode = %v, want 255", got.ExitCode)
	}
	if got.EndedAtUnixMs == nil || *got.EndedAtUnixMs != 5000 {
		t.Errorf("EndedAtUnixMs = %v, want 5000", got.EndedAtUnixMs)
	}
	if got.Region != "eu-west-1" || got.InstanceID != "i-0123" {
		t.Errorf("unexpected run fields: %+v", got)
	}
}

func TestRecordEnd_NotFound(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	defer store.Close()

	err := store.RecordEnd(context.Background(), "missing", 0, 1)
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("RecordEnd() error = %v, want ErrRunNotFound", err)
	}
	if err := store.RecordEnd(context.Background(), "", 0, 1); err == nil {
		t.Error("RecordEnd with empty id should fail")
	}
}

func TestQueryRuns_OrderFilterLimit(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	defer store.Close()

	ctx := context.Background()
	for i, name := range []string{"web", "db", "web", "web"} {
		if err := store.RecordStart(ctx, newRun(name, int64(1000*(i+1)))); err != nil {
			t.Fatalf("RecordStart() error = %v", err)
		}
	}

	all, err := store.QueryRuns(ctx, RunQuery{})
	if err != nil {
		t.Fatalf("QueryRuns() error = %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("QueryRuns() returned %d runs, want 4", len(all))
	}
	if all[0].StartedAtUnixMs != 4000 || all[3].StartedAtUnixMs != 1000 {
		t.Errorf("runs not ordered most recent first: %d .. %d", all[0].StartedAtUnixMs, all[3].StartedAtUnixMs)
	}
	if all[0].ExitCode != nil || all[0].EndedAtUnixMs != nil {
		t.Error("unfinished run should have nil exit code and end time")
	}

	web, err := store.QueryRuns(ctx, RunQuery{CommandName: "web", Limit: 2})
	if err != nil {
		t.Fatalf("QueryRuns() error = %v", err)
	}
	if len(web) != 2 {
		t.Fatalf("QueryRuns(web, 2) returned %d runs, want 2", len(web))
	}
	for _, r := range web {
		if r.CommandName != "web" {
			t.Errorf("unexpected command %s", r.CommandName)
		}
	}
}
