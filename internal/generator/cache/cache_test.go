package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/beacon-tools/beacon/internal/generator/emit"
	"github.com/beacon-tools/beacon/internal/generator/model"
)

func testGroup(typeName string, fields ...string) emit.Group {
	owner := model.TypeDescriptor{
		PkgPath:  "example.com/app/views",
		PkgName:  "views",
		Name:     typeName,
		Exported: true,
	}
	records := make([]model.PropertyRecord, len(fields))
	for i, f := range fields {
		records[i] = model.PropertyRecord{
			Owner:        owner,
			FieldName:    f,
			PropertyName: strings.ToUpper(f[:1]) + f[1:],
			TypeExpr:     "string",
			TypeKind:     model.KindValue,
		}
	}
	return emit.Group{Owner: owner, Records: records}
}

func TestFileHasher(t *testing.T) {
	fh := NewFileHasher()

	h1 := fh.HashString("hello")
	h2 := fh.HashString("hello")
	if h1 != h2 {
		t.Error("identical content must hash identically")
	}
	if fh.HashString("other") == h1 {
		t.Error("different content must hash differently")
	}

	path := filepath.Join(t.TempDir(), "f.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	fromFile, err := fh.HashFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if fromFile != h1 {
		t.Error("HashFile and HashString must agree")
	}
}

func TestStoreHitRequiresMatchingHash(t *testing.T) {
	s := NewStore()
	s.Set("views.Person", "hash-a", "person_beacon.go", "source")

	if _, ok := s.Get("views.Person", "hash-a"); !ok {
		t.Error("matching hash should hit")
	}
	if _, ok := s.Get("views.Person", "hash-b"); ok {
		t.Error("stale hash should miss")
	}
	if _, ok := s.Get("views.Address", "hash-a"); ok {
		t.Error("unknown key should miss")
	}

	s.Invalidate("views.Person")
	if _, ok := s.Get("views.Person", "hash-a"); ok {
		t.Error("invalidated entry should miss")
	}
}

func TestStorePrune(t *testing.T) {
	s := NewStore()
	s.Set("views.Person", "h", "f", "src")
	s.entries["views.Person"].CachedAt = time.Now().Add(-time.Hour)
	s.Set("views.Address", "h", "f", "src")

	if removed := s.Prune(30 * time.Minute); removed != 1 {
		t.Errorf("Prune removed %d, want 1", removed)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestCoordinatorCachesUnchangedGroups(t *testing.T) {
	coord := NewCoordinator(NewStore(), emit.Config{GenerateChanging: true})
	groups := []emit.Group{testGroup("Person", "firstName"), testGroup("Address", "city")}

	first, metrics, err := coord.EmitGroups(context.Background(), groups)
	if err != nil {
		t.Fatal(err)
	}
	if metrics.CacheMisses != 2 || metrics.CacheHits != 0 {
		t.Errorf("first pass: hits=%d misses=%d", metrics.CacheHits, metrics.CacheMisses)
	}
	for _, r := range first {
		if r.Cached || r.Err != nil || r.Source == "" {
			t.Errorf("unexpected result: %+v", r)
		}
	}

	second, metrics, err := coord.EmitGroups(context.Background(), groups)
	if err != nil {
		t.Fatal(err)
	}
	if metrics.CacheHits != 2 || metrics.CacheMisses != 0 {
		t.Errorf("second pass: hits=%d misses=%d", metrics.CacheHits, metrics.CacheMisses)
	}
	for i, r := range second {
		if !r.Cached {
			t.Errorf("result %d not cached", i)
		}
		if r.Source != first[i].Source {
			t.Errorf("cached source differs for %s", r.GroupKey)
		}
	}
	if metrics.HitRate() != 100.0 {
		t.Errorf("hit rate = %f", metrics.HitRate())
	}
}

func TestCoordinatorReemitsChangedGroup(t *testing.T) {
	coord := NewCoordinator(NewStore(), emit.Config{GenerateChanging: true})
	group := testGroup("Person", "firstName")

	if _, _, err := coord.EmitGroups(context.Background(), []emit.Group{group}); err != nil {
		t.Fatal(err)
	}

	changed := testGroup("Person", "firstName", "lastName")
	results, metrics, err := coord.EmitGroups(context.Background(), []emit.Group{changed})
	if err != nil {
		t.Fatal(err)
	}
	if metrics.CacheMisses != 1 {
		t.Errorf("changed group should miss, misses=%d", metrics.CacheMisses)
	}
	if !strings.Contains(results[0].Source, "SetLastName") {
		t.Error("re-emitted source must reflect the new record")
	}
}

func TestCoordinatorCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	coord := NewCoordinator(NewStore(), emit.Config{})
	_, _, err := coord.EmitGroups(ctx, []emit.Group{testGroup("Person", "name")})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestDiskRoundTrip(t *testing.T) {
	dir := t.TempDir()

	s := NewStore()
	s.Set("views.Person", "hash-a", "person_beacon.go", "package views\n")
	if err := Save(s, dir, "fp-1"); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(dir, "fp-1")
	if err != nil {
		t.Fatal(err)
	}
	entry, ok := loaded.Get("views.Person", "hash-a")
	if !ok {
		t.Fatal("persisted entry missing after load")
	}
	if entry.Source != "package views\n" || entry.Filename != "person_beacon.go" {
		t.Errorf("entry = %+v", entry)
	}
}

func TestDiskFingerprintMismatch(t *testing.T) {
	dir := t.TempDir()

	s := NewStore()
	s.Set("views.Person", "hash-a", "f", "src")
	if err := Save(s, dir, "fp-1"); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(dir, "fp-2")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Len() != 0 {
		t.Error("fingerprint mismatch must yield a cold cache")
	}
}

func TestDiskMissingFile(t *testing.T) {
	loaded, err := Load(t.TempDir(), "fp-1")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Len() != 0 {
		t.Error("missing cache file must yield an empty store")
	}
}

func TestDiskCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, cacheFileName), []byte("not msgpack"), 0o644); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(dir, "fp-1")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Len() != 0 {
		t.Error("corrupt cache file must yield an empty store")
	}
}
