package camera

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestMemoryRegistryCRUD(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistry()

	a, err := r.Create(ctx, validInput("HEIMDALL-N1"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	b, err := r.Create(ctx, validInput("HEIMDALL-N2"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.ID != 1 || b.ID != 2 {
		t.Fatalf("ids = %d, %d", a.ID, b.ID)
	}

	if _, err := r.Create(ctx, validInput("HEIMDALL-N1")); !errors.Is(err, ErrDuplicateCameraID) {
		t.Fatalf("duplicate create err = %v", err)
	}

	got, err := r.GetByCameraID(ctx, "HEIMDALL-N2")
	if err != nil {
		t.Fatalf("GetByCameraID: %v", err)
	}
	if diff := cmp.Diff(b, got); diff != "" {
		t.Fatalf("GetByCameraID mismatch:\n%s", diff)
	}

	st := StatusOffline
	upd, err := r.Update(ctx, a.ID, Input{Status: &st, Latitude: f(0)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if upd.Status != StatusOffline || upd.Latitude != 0 || upd.Range != 800 {
		t.Fatalf("partial update applied wrongly: %+v", upd)
	}

	if _, err := r.Update(ctx, a.ID, Input{CameraID: s("HEIMDALL-N2")}); !errors.Is(err, ErrDuplicateCameraID) {
		t.Fatalf("rename onto existing id err = %v", err)
	}
	if _, err := r.Update(ctx, 99, Input{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update missing err = %v", err)
	}
	if _, err := r.Update(ctx, a.ID, Input{Range: f(5)}); !hasField(err, "range") {
		t.Fatalf("invalid patch err = %v", err)
	}

	if err := r.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := r.Delete(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v", err)
	}
	list, _ := r.List(ctx)
	if len(list) != 1 || list[0].CameraID != "HEIMDALL-N2" {
		t.Fatalf("list = %+v", list)
	}
}

func TestMemoryRegistryRecordDetection(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistry()
	c, _ := r.Create(ctx, validInput("HEIMDALL-C1"))

	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := r.RecordDetection(ctx, "HEIMDALL-C1", at); err != nil {
		t.Fatalf("RecordDetection: %v", err)
	}
	got, _ := r.Get(ctx, c.ID)
	if got.LastDetection == nil || !got.LastDetection.Equal(at) {
		t.Fatalf("last detection = %v", got.LastDetection)
	}
	*got.LastDetection = time.Time{}
	again, _ := r.Get(ctx, c.ID)
	if !again.LastDetection.Equal(at) {
		t.Fatalf("Get must return a copy of the timestamp")
	}
	if err := r.RecordDetection(ctx, "missing", at); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing camera err = %v", err)
	}
}

func TestSeedReportsFailingCamera(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRegistry()
	bad := validInput("BAD")
	bad.FOV = f(10)
	cams, err := Seed(ctx, r, []Input{validInput("OK"), bad})
	if len(cams) != 1 {
		t.Fatalf("seeded %d cameras, want 1", len(cams))
	}
	var se *SeedError
	if !errors.As(err, &se) || se.CameraID != "BAD" {
		t.Fatalf("err = %v, want SeedError for BAD", err)
	}
	if !hasField(err, "fov") {
		t.Fatalf("seed error should unwrap to validation error: %v", err)
	}
}

func TestCountByStatus(t *testing.T) {
	cams := []Camera{{Status: StatusActive}, {Status: StatusActive}, {Status: StatusOffline}}
	got := CountByStatus(cams)
	want := map[Status]int{StatusActive: 2, StatusMaintenance: 0, StatusOffline: 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("CountByStatus mismatch:\n%s", diff)
	}
}
