package migration

import (
	"testing"
	"testing/fstest"
)

func TestLoad_OrdersByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"V10__later.sql": {Data: []byte("SELECT 10;")},
		"V2__second.sql": {Data: []byte("SELECT 2;")},
		"V1__first.sql":  {Data: []byte("SELECT 1;")},
		"notes.md":       {Data: []byte("ignored")},
		"migrations.go":  {Data: []byte("ignored")},
		"V_badname.sql":  {Data: []byte("ignored")},
	}

	migs, err := load(fsys)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(migs) != 3 {
		t.Fatalf("expected 3 migrations, got %d", len(migs))
	}
	for i, want := range []int64{1, 2, 10} {
		if migs[i].Version != want {
			t.Fatalf("position %d: expected version %d, got %d", i, want, migs[i].Version)
		}
	}
	if migs[0].Name != "first" {
		t.Fatalf("unexpected name: %q", migs[0].Name)
	}
	if migs[0].Checksum == "" || migs[0].Checksum == migs[1].Checksum {
		t.Fatalf("checksums not derived from content")
	}
}

func TestLoad_RejectsDuplicateVersions(t *testing.T) {
	fsys := fstest.MapFS{
		"V1__a.sql": {Data: []byte("SELECT 1;")},
		"V1__b.sql": {Data: []byte("SELECT 2;")},
	}
	if _, err := load(fsys); err == nil {
		t.Fatalf("expected duplicate version error")
	}
}

func TestLoad_RejectsEmptyFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"V1__a.sql": {Data: []byte("   \n")},
	}
	if _, err := load(fsys); err == nil {
		t.Fatalf("expected empty migration error")
	}
}
