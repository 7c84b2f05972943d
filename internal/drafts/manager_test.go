package drafts

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/HendryAvila/sdd-quill/internal/entity"
	"github.com/HendryAvila/sdd-quill/internal/validation"
)

// baseTime is the frozen clock most manager tests run at.
var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// setNow freezes the package clock at the given instant for one test.
func setNow(t *testing.T, at time.Time) {
	t.Helper()
	timeNow = func() time.Time { return at }
	t.Cleanup(func() { timeNow = time.Now })
}

// newTestManager creates a manager over a temp dir with the default TTL
// and a sweep interval long enough to never fire during a test.
func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(Config{
		DataDir:       t.TempDir(),
		TTL:           24 * time.Hour,
		SweepInterval: time.Hour,
	}, nil)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(m.Destroy)
	return m
}

// --- Create ---

func TestCreate_IDFormat(t *testing.T) {
	setNow(t, baseTime)
	m := newTestManager(t)

	d, err := m.Create(entity.Requirement, "user-auth", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	pattern := regexp.MustCompile(`^req-user-auth-\d+$`)
	if !pattern.MatchString(d.ID) {
		t.Errorf("id = %q, want match for %s", d.ID, pattern)
	}
}

func TestCreate_SlugIsSlugified(t *testing.T) {
	setNow(t, baseTime)
	m := newTestManager(t)

	d, err := m.Create(entity.Plan, "Q3 Launch Plan!", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !regexp.MustCompile(`^plan-q3-launch-plan-\d+$`).MatchString(d.ID) {
		t.Errorf("id = %q, want slugified middle", d.ID)
	}
}

func TestCreate_NoSlugFallsBackToDatestamp(t *testing.T) {
	setNow(t, baseTime)
	m := newTestManager(t)

	d, err := m.Create(entity.Decision, "", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !regexp.MustCompile(`^dec-20260301120000-\d+$`).MatchString(d.ID) {
		t.Errorf("id = %q, want datestamp middle", d.ID)
	}
}

func TestCreate_CollisionBumpsSuffix(t *testing.T) {
	setNow(t, baseTime)
	m := newTestManager(t)

	d1, _ := m.Create(entity.Requirement, "user-auth", "")
	d2, _ := m.Create(entity.Requirement, "user-auth", "")
	if d1.ID == d2.ID {
		t.Errorf("two creations at the same frozen instant produced the same id %q", d1.ID)
	}
}

func TestCreate_InitialState(t *testing.T) {
	setNow(t, baseTime)
	m := newTestManager(t)

	d, err := m.Create(entity.Requirement, "user-auth", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if d.CurrentStep != 1 {
		t.Errorf("CurrentStep = %d, want 1", d.CurrentStep)
	}
	if d.TotalSteps != 6 {
		t.Errorf("TotalSteps = %d, want 6", d.TotalSteps)
	}
	if len(d.Data) != 1 || d.Data["slug"] != "user-auth" {
		t.Errorf("Data = %#v, want only the slug seed", d.Data)
	}
	if len(d.ValidationResults) != 0 {
		t.Errorf("ValidationResults = %v, want empty", d.ValidationResults)
	}
	if !d.ExpiresAt.Equal(baseTime.Add(24 * time.Hour)) {
		t.Errorf("ExpiresAt = %v, want creation + 24h", d.ExpiresAt)
	}
}

func TestCreate_SeedsName(t *testing.T) {
	setNow(t, baseTime)
	m := newTestManager(t)

	d, _ := m.Create(entity.Component, "session", "Session Manager")
	if d.Data["name"] != "Session Manager" {
		t.Errorf("Data[name] = %v, want Session Manager", d.Data["name"])
	}
}

func TestCreate_TotalStepsPerType(t *testing.T) {
	setNow(t, baseTime)
	m := newTestManager(t)

	want := map[entity.Type]int{
		entity.Requirement:  6,
		entity.Component:    7,
		entity.Plan:         6,
		entity.Constitution: 5,
		entity.Decision:     6,
	}
	for typ, n := range want {
		d, err := m.Create(typ, "", "")
		if err != nil {
			t.Fatalf("Create(%s) failed: %v", typ, err)
		}
		if d.TotalSteps != n {
			t.Errorf("%s TotalSteps = %d, want %d", typ, d.TotalSteps, n)
		}
	}
}

func TestCreate_InvalidType(t *testing.T) {
	m := newTestManager(t)
	if _, err := m.Create(entity.Type("epic"), "", ""); err == nil {
		t.Fatal("Create with invalid type should fail")
	}
}

// --- Get / expiry ---

func TestGet_ReturnsClone(t *testing.T) {
	setNow(t, baseTime)
	m := newTestManager(t)
	d, _ := m.Create(entity.Requirement, "user-auth", "")

	got := m.Get(d.ID)
	got.Data["poison"] = true

	if _, ok := m.Get(d.ID).Data["poison"]; ok {
		t.Error("mutating a returned draft leaked into the stored record")
	}
}

func TestGet_Unknown(t *testing.T) {
	m := newTestManager(t)
	if m.Get("req-bogus-1") != nil {
		t.Error("Get for unknown id should return nil")
	}
}

func TestGet_ExpiredIsAbsent(t *testing.T) {
	setNow(t, baseTime)
	m := newTestManager(t)
	d, _ := m.Create(entity.Requirement, "user-auth", "")

	setNow(t, baseTime.Add(24*time.Hour+time.Minute))
	if m.Get(d.ID) != nil {
		t.Error("expired draft should read as absent")
	}
}

func TestGet_JustBeforeExpiry(t *testing.T) {
	setNow(t, baseTime)
	m := newTestManager(t)
	d, _ := m.Create(entity.Requirement, "user-auth", "")

	setNow(t, baseTime.Add(24*time.Hour)) // exactly at the boundary
	if m.Get(d.ID) == nil {
		t.Error("draft at the expiry instant should still be readable")
	}
}

// --- Update ---

func TestUpdate_MergesData(t *testing.T) {
	setNow(t, baseTime)
	m := newTestManager(t)
	d, _ := m.Create(entity.Requirement, "user-auth", "")

	updated := m.Update(d.ID, map[string]any{
		"current_step": 2,
		"data":         map[string]any{"problem": "agents re-ask for order numbers"},
	})
	if updated == nil {
		t.Fatal("Update returned nil for live draft")
	}
	if updated.CurrentStep != 2 {
		t.Errorf("CurrentStep = %d, want 2", updated.CurrentStep)
	}
	if updated.Data["problem"] != "agents re-ask for order numbers" {
		t.Errorf("Data[problem] = %v", updated.Data["problem"])
	}
	if updated.Data["slug"] != "user-auth" {
		t.Error("data merge should preserve existing keys")
	}
}

func TestUpdate_ImmutableFields(t *testing.T) {
	setNow(t, baseTime)
	m := newTestManager(t)
	d, _ := m.Create(entity.Requirement, "user-auth", "")

	updated := m.Update(d.ID, map[string]any{
		"id":         "req-hijacked-1",
		"type":       "plan",
		"created_at": baseTime.Add(-time.Hour),
	})

	if updated.ID != d.ID {
		t.Errorf("ID changed to %q", updated.ID)
	}
	if updated.Type != entity.Requirement {
		t.Errorf("Type changed to %q", updated.Type)
	}
	if !updated.CreatedAt.Equal(d.CreatedAt) {
		t.Errorf("CreatedAt changed to %v", updated.CreatedAt)
	}
}

func TestUpdate_FinalizedFlag(t *testing.T) {
	setNow(t, baseTime)
	m := newTestManager(t)
	d, _ := m.Create(entity.Requirement, "user-auth", "")

	updated := m.Update(d.ID, map[string]any{"finalized": true})
	if !updated.Finalized {
		t.Error("Finalized should be settable through Update")
	}
}

func TestUpdate_TouchesUpdatedAt(t *testing.T) {
	setNow(t, baseTime)
	m := newTestManager(t)
	d, _ := m.Create(entity.Requirement, "user-auth", "")

	later := baseTime.Add(3 * time.Hour)
	setNow(t, later)
	updated := m.Update(d.ID, map[string]any{"current_step": 2})
	if !updated.UpdatedAt.Equal(later) {
		t.Errorf("UpdatedAt = %v, want %v", updated.UpdatedAt, later)
	}
}

func TestUpdate_ExpiresAtFromString(t *testing.T) {
	setNow(t, baseTime)
	m := newTestManager(t)
	d, _ := m.Create(entity.Requirement, "user-auth", "")

	want := baseTime.Add(48 * time.Hour)
	updated := m.Update(d.ID, map[string]any{"expires_at": want.Format(time.RFC3339)})
	if !updated.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", updated.ExpiresAt, want)
	}
}

func TestUpdate_UnknownDraft(t *testing.T) {
	m := newTestManager(t)
	if m.Update("req-bogus-1", map[string]any{"current_step": 2}) != nil {
		t.Error("Update for unknown draft should return nil")
	}
}

// --- AppendValidation ---

func TestAppendValidation_AccumulatesInOrder(t *testing.T) {
	setNow(t, baseTime)
	m := newTestManager(t)
	d, _ := m.Create(entity.Requirement, "user-auth", "")

	m.AppendValidation(d.ID, validation.Result{Step: "problem_identification", Passed: false})
	updated := m.AppendValidation(d.ID, validation.Result{Step: "problem_identification", Passed: true})

	if len(updated.ValidationResults) != 2 {
		t.Fatalf("results = %d, want 2", len(updated.ValidationResults))
	}
	if updated.ValidationResults[0].Passed || !updated.ValidationResults[1].Passed {
		t.Error("results should keep submission order")
	}
}

// --- Delete ---

func TestDelete_RemovesDraftAndFile(t *testing.T) {
	setNow(t, baseTime)
	dir := t.TempDir()
	m, err := NewManager(Config{DataDir: dir, TTL: 24 * time.Hour, SweepInterval: time.Hour}, nil)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(m.Destroy)

	d, _ := m.Create(entity.Requirement, "user-auth", "")
	if !m.Delete(d.ID) {
		t.Fatal("Delete should return true for existing draft")
	}
	if m.Get(d.ID) != nil {
		t.Error("deleted draft should be gone")
	}
	if _, err := os.Stat(filepath.Join(dir, d.ID+".json")); !os.IsNotExist(err) {
		t.Error("deleted draft's file should be removed")
	}
}

func TestDelete_Unknown(t *testing.T) {
	m := newTestManager(t)
	if m.Delete("req-bogus-1") {
		t.Error("Delete for unknown draft should return false")
	}
}

// --- List ---

func TestList_FilterByType(t *testing.T) {
	setNow(t, baseTime)
	m := newTestManager(t)
	m.Create(entity.Requirement, "a", "")
	m.Create(entity.Plan, "b", "")
	m.Create(entity.Requirement, "c", "")

	reqs := m.List(entity.Requirement)
	if len(reqs) != 2 {
		t.Errorf("requirement drafts = %d, want 2", len(reqs))
	}
	all := m.List("")
	if len(all) != 3 {
		t.Errorf("all drafts = %d, want 3", len(all))
	}
	if len(m.List(entity.Decision)) != 0 {
		t.Error("decision filter should match nothing")
	}
}

func TestList_SortedByCreation(t *testing.T) {
	setNow(t, baseTime)
	m := newTestManager(t)
	first, _ := m.Create(entity.Requirement, "a", "")

	setNow(t, baseTime.Add(time.Hour))
	second, _ := m.Create(entity.Requirement, "b", "")

	list := m.List("")
	if len(list) != 2 || list[0].ID != first.ID || list[1].ID != second.ID {
		t.Errorf("list order = %v, want [%s %s]", ids(list), first.ID, second.ID)
	}
}

func TestList_OmitsExpired(t *testing.T) {
	setNow(t, baseTime)
	m := newTestManager(t)
	m.Create(entity.Requirement, "a", "")

	setNow(t, baseTime.Add(48*time.Hour))
	fresh, _ := m.Create(entity.Requirement, "b", "")

	list := m.List("")
	if len(list) != 1 || list[0].ID != fresh.ID {
		t.Errorf("list = %v, want only the fresh draft", ids(list))
	}
}

func ids(list []*Draft) []string {
	out := make([]string, len(list))
	for i, d := range list {
		out[i] = d.ID
	}
	return out
}

// --- Sweep ---

func TestSweep_PurgesExpired(t *testing.T) {
	setNow(t, baseTime)
	dir := t.TempDir()
	m, err := NewManager(Config{DataDir: dir, TTL: 24 * time.Hour, SweepInterval: time.Hour}, nil)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(m.Destroy)

	old, _ := m.Create(entity.Requirement, "old", "")

	setNow(t, baseTime.Add(48*time.Hour))
	fresh, _ := m.Create(entity.Requirement, "fresh", "")

	if n := m.Sweep(); n != 1 {
		t.Errorf("Sweep purged %d, want 1", n)
	}
	if _, err := os.Stat(filepath.Join(dir, old.ID+".json")); !os.IsNotExist(err) {
		t.Error("swept draft's file should be removed")
	}
	if m.Get(fresh.ID) == nil {
		t.Error("fresh draft should survive the sweep")
	}
}

func TestDestroy_Idempotent(t *testing.T) {
	m := newTestManager(t)
	m.Destroy()
	m.Destroy() // must not panic
}

// --- Persistence across restarts ---

func TestNewManager_ReloadsPersistedDrafts(t *testing.T) {
	setNow(t, baseTime)
	dir := t.TempDir()

	m1, err := NewManager(Config{DataDir: dir, TTL: 24 * time.Hour, SweepInterval: time.Hour}, nil)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	d, _ := m1.Create(entity.Requirement, "user-auth", "")
	m1.Update(d.ID, map[string]any{"data": map[string]any{"problem": "agents re-ask everything"}})
	m1.Destroy()

	m2, err := NewManager(Config{DataDir: dir, TTL: 24 * time.Hour, SweepInterval: time.Hour}, nil)
	if err != nil {
		t.Fatalf("restart NewManager failed: %v", err)
	}
	t.Cleanup(m2.Destroy)

	restored := m2.Get(d.ID)
	if restored == nil {
		t.Fatal("draft should survive a restart")
	}
	if restored.Data["problem"] != "agents re-ask everything" {
		t.Errorf("restored data = %#v", restored.Data)
	}
}

func TestNewManager_DropsExpiredFilesOnLoad(t *testing.T) {
	setNow(t, baseTime)
	dir := t.TempDir()

	m1, err := NewManager(Config{DataDir: dir, TTL: 24 * time.Hour, SweepInterval: time.Hour}, nil)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	d, _ := m1.Create(entity.Requirement, "user-auth", "")
	m1.Destroy()

	setNow(t, baseTime.Add(48*time.Hour))
	m2, err := NewManager(Config{DataDir: dir, TTL: 24 * time.Hour, SweepInterval: time.Hour}, nil)
	if err != nil {
		t.Fatalf("restart NewManager failed: %v", err)
	}
	t.Cleanup(m2.Destroy)

	if m2.Get(d.ID) != nil {
		t.Error("expired draft should not be loaded")
	}
	if _, err := os.Stat(filepath.Join(dir, d.ID+".json")); !os.IsNotExist(err) {
		t.Error("expired draft's file should be deleted at load")
	}
}

func TestNewManager_SkipsMalformedFiles(t *testing.T) {
	setNow(t, baseTime)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "garbage.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("writing garbage file: %v", err)
	}

	m, err := NewManager(Config{DataDir: dir, TTL: 24 * time.Hour, SweepInterval: time.Hour}, nil)
	if err != nil {
		t.Fatalf("NewManager should tolerate malformed files, got: %v", err)
	}
	t.Cleanup(m.Destroy)

	if len(m.List("")) != 0 {
		t.Error("malformed file should not produce a draft")
	}
}

// --- Slugify ---

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"User Auth Flow", "user-auth-flow"},
		{"  spaced  out  ", "spaced-out"},
		{"under_scores", "under-scores"},
		{"Symbols!@#Gone", "symbolsgone"},
		{"--edges--", "edges"},
		{"", ""},
		{"   ", ""},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSlugify_TruncatesAtWordBoundary(t *testing.T) {
	long := "a-very-long-name-that-keeps-going-and-going-far-beyond-the-limit"
	got := Slugify(long)
	if len(got) > maxSlugLen {
		t.Errorf("slug length = %d, want <= %d", len(got), maxSlugLen)
	}
	if got[len(got)-1] == '-' {
		t.Errorf("slug %q should not end with a hyphen", got)
	}
}
