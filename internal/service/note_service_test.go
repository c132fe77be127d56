package service

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/vdsasi/NoteSharingApp/internal/domain"
)

func newTestNoteService() (*NoteService, *mockNoteRepo, *mockVersionRepo, *mockCollabRepo) {
	noteRepo := newMockNoteRepo()
	versionRepo := newMockVersionRepo()
	collabRepo := newMockCollabRepo()
	svc := NewNoteService(noteRepo, versionRepo, collabRepo, nil, DefaultNotePolicy())
	return svc, noteRepo, versionRepo, collabRepo
}

func strPtr(s string) *string { return &s }

func tagsPtr(tags ...string) *[]string { return &tags }

func TestCreateNote(t *testing.T) {
	svc, _, _, _ := newTestNoteService()

	note, err := svc.Create("user-1", &domain.CreateNoteRequest{
		Title:   "Meeting notes",
		Content: "agenda",
		Tags:    []string{"work", " work ", "", "personal"},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if note.ID == "" {
		t.Error("expected a generated note id")
	}
	if note.OwnerID != "user-1" {
		t.Errorf("expected owner user-1, got %s", note.OwnerID)
	}
	if note.Pinned || note.Trashed {
		t.Error("new note should be neither pinned nor trashed")
	}
	if len(note.Tags) != 2 || note.Tags[0] != "work" || note.Tags[1] != "personal" {
		t.Errorf("expected normalized tags [work personal], got %v", note.Tags)
	}
}

func TestCreateNoteEmptyTitle(t *testing.T) {
	svc, _, _, _ := newTestNoteService()

	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := svc.Create("user-1", &domain.CreateNoteRequest{Title: title})
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("title %q: expected ErrValidation, got %v", title, err)
		}
	}
}

func TestUpdateSnapshotsBeforeEveryEdit(t *testing.T) {
	svc, _, versionRepo, _ := newTestNoteService()

	note, err := svc.Create("user-1", &domain.CreateNoteRequest{Title: "v1", Content: "first"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Update("user-1", note.ID, &domain.UpdateNoteRequest{Title: strPtr("v2"), Content: strPtr("second")}); err != nil {
		t.Fatalf("first update: %v", err)
	}
	if _, err := svc.Update("user-1", note.ID, &domain.UpdateNoteRequest{Content: strPtr("third")}); err != nil {
		t.Fatalf("second update: %v", err)
	}

	versions, err := versionRepo.ListByNote(note.ID)
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(versions) != 2 {
		t.Fatalf("expected 2 versions after 2 updates, got %d", len(versions))
	}
	if versions[0].Title != "v1" || versions[0].Content != "first" {
		t.Errorf("oldest version should hold pre-edit state, got %q/%q", versions[0].Title, versions[0].Content)
	}
	if versions[1].Title != "v2" || versions[1].Content != "second" {
		t.Errorf("second version should hold state before second edit, got %q/%q", versions[1].Title, versions[1].Content)
	}

	updated, err := svc.Get("user-1", note.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if updated.Title != "v2" || updated.Content != "third" {
		t.Errorf("live note should hold latest edit, got %q/%q", updated.Title, updated.Content)
	}
}

func TestUpdateRejectsEmptyTitle(t *testing.T) {
	svc, _, versionRepo, _ := newTestNoteService()

	note, _ := svc.Create("user-1", &domain.CreateNoteRequest{Title: "keep me"})

	_, err := svc.Update("user-1", note.ID, &domain.UpdateNoteRequest{Title: strPtr("  ")})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	got, _ := svc.Get("user-1", note.ID)
	if got.Title != "keep me" {
		t.Errorf("rejected update must not change the note, title is %q", got.Title)
	}
	versions, _ := versionRepo.ListByNote(note.ID)
	if len(versions) != 0 {
		t.Errorf("rejected edit must not grow the version log, got %d versions", len(versions))
	}
}

func TestAutoSaveSkipsVersionLog(t *testing.T) {
	svc, _, versionRepo, _ := newTestNoteService()

	note, _ := svc.Create("user-1", &domain.CreateNoteRequest{Title: "draft", Content: "a"})

	for i := 0; i < 5; i++ {
		if _, err := svc.AutoSave("user-1", note.ID, &domain.UpdateNoteRequest{Content: strPtr(fmt.Sprintf("a%d", i))}); err != nil {
			t.Fatalf("autosave %d: %v", i, err)
		}
	}

	versions, _ := versionRepo.ListByNote(note.ID)
	if len(versions) != 0 {
		t.Errorf("autosave must not grow the version log, got %d versions", len(versions))
	}
	got, _ := svc.Get("user-1", note.ID)
	if got.Content != "a4" {
		t.Errorf("expected latest autosaved content a4, got %q", got.Content)
	}
}

func TestSoftDeleteAndRestore(t *testing.T) {
	svc, _, _, _ := newTestNoteService()

	note, _ := svc.Create("user-1", &domain.CreateNoteRequest{Title: "trash me"})
	if _, err := svc.TogglePin("user-1", note.ID); err != nil {
		t.Fatalf("pin: %v", err)
	}

	if err := svc.SoftDelete("user-1", note.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	active, _ := svc.List("user-1")
	if len(active) != 0 {
		t.Errorf("trashed note must not appear in the active list, got %d notes", len(active))
	}
	trashed, _ := svc.ListTrashed("user-1")
	if len(trashed) != 1 || trashed[0].ID != note.ID {
		t.Fatalf("expected the note in the trash, got %v", trashed)
	}

	// trashing again is a no-op
	if err := svc.SoftDelete("user-1", note.ID); err != nil {
		t.Errorf("repeated soft delete should succeed, got %v", err)
	}

	restored, err := svc.Restore("user-1", note.ID)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.Trashed {
		t.Error("restored note should not be trashed")
	}
	if restored.Pinned {
		t.Error("restore should drop the pin")
	}

	active, _ = svc.List("user-1")
	if len(active) != 1 {
		t.Errorf("restored note should be back in the active list, got %d notes", len(active))
	}
}

func TestRestoreActiveNote(t *testing.T) {
	svc, _, _, _ := newTestNoteService()

	note, _ := svc.Create("user-1", &domain.CreateNoteRequest{Title: "still active"})
	if _, err := svc.Restore("user-1", note.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("restoring an active note should report not found, got %v", err)
	}
}

func TestRestoreKeepsPinWhenConfigured(t *testing.T) {
	noteRepo := newMockNoteRepo()
	svc := NewNoteService(noteRepo, newMockVersionRepo(), newMockCollabRepo(), nil, NotePolicy{
		RestoreResetsPin:         false,
		SnapshotOnVersionRestore: true,
	})

	note, _ := svc.Create("user-1", &domain.CreateNoteRequest{Title: "pinned"})
	svc.TogglePin("user-1", note.ID)
	svc.SoftDelete("user-1", note.ID)

	restored, err := svc.Restore("user-1", note.ID)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if !restored.Pinned {
		t.Error("pin should survive restore under this policy")
	}
}

func TestTrashedNoteIsReadOnly(t *testing.T) {
	svc, _, _, _ := newTestNoteService()

	note, _ := svc.Create("user-1", &domain.CreateNoteRequest{Title: "locked"})
	svc.SoftDelete("user-1", note.ID)

	if _, err := svc.Update("user-1", note.ID, &domain.UpdateNoteRequest{Title: strPtr("nope")}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("update of a trashed note should report not found, got %v", err)
	}
	if _, err := svc.TogglePin("user-1", note.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("pin of a trashed note should report not found, got %v", err)
	}
	if _, err := svc.RestoreVersion("user-1", note.ID, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("version restore of a trashed note should report not found, got %v", err)
	}
}

func TestGetAccessControl(t *testing.T) {
	svc, _, _, collabRepo := newTestNoteService()

	note, _ := svc.Create("owner", &domain.CreateNoteRequest{Title: "private"})
	collabRepo.Add(&domain.Collaborator{NoteID: note.ID, UserID: "friend"})

	if _, err := svc.Get("friend", note.ID); err != nil {
		t.Errorf("collaborator read should succeed, got %v", err)
	}
	if _, err := svc.Get("stranger", note.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("stranger read should be forbidden, got %v", err)
	}

	svc.SoftDelete("owner", note.ID)

	if _, err := svc.Get("owner", note.ID); err != nil {
		t.Errorf("owner should still see the trashed note, got %v", err)
	}
	// to everyone else a trashed note looks deleted, hiding even its existence
	if _, err := svc.Get("friend", note.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("collaborator read of a trashed note should report not found, got %v", err)
	}
	if _, err := svc.Get("stranger", note.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("stranger read of a trashed note should report not found, got %v", err)
	}
}

func TestCollaboratorRights(t *testing.T) {
	svc, _, versionRepo, collabRepo := newTestNoteService()

	note, _ := svc.Create("owner", &domain.CreateNoteRequest{Title: "shared"})
	collabRepo.Add(&domain.Collaborator{NoteID: note.ID, UserID: "friend"})

	if _, err := svc.Update("friend", note.ID, &domain.UpdateNoteRequest{Content: strPtr("edited by friend")}); err != nil {
		t.Errorf("collaborator update should succeed, got %v", err)
	}
	if _, err := svc.TogglePin("friend", note.ID); err != nil {
		t.Errorf("collaborator pin should succeed, got %v", err)
	}
	if _, err := svc.ListVersions("friend", note.ID); err != nil {
		t.Errorf("collaborator should read the version log, got %v", err)
	}
	if _, err := svc.RestoreVersion("friend", note.ID, 1); err != nil {
		t.Errorf("collaborator version restore should succeed, got %v", err)
	}

	if err := svc.SoftDelete("friend", note.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("collaborator delete should be forbidden, got %v", err)
	}

	versions, _ := versionRepo.ListByNote(note.ID)
	if len(versions) != 2 {
		t.Errorf("expected 2 versions (update snapshot + restore snapshot), got %d", len(versions))
	}
}

func TestListOrdering(t *testing.T) {
	svc, _, _, _ := newTestNoteService()

	a, _ := svc.Create("user-1", &domain.CreateNoteRequest{Title: "A"})
	b, _ := svc.Create("user-1", &domain.CreateNoteRequest{Title: "B"})
	c, _ := svc.Create("user-1", &domain.CreateNoteRequest{Title: "C"})

	// pin B, then touch C so it is the most recently updated unpinned note
	if _, err := svc.TogglePin("user-1", b.ID); err != nil {
		t.Fatalf("pin: %v", err)
	}
	if _, err := svc.Update("user-1", c.ID, &domain.UpdateNoteRequest{Content: strPtr("touched")}); err != nil {
		t.Fatalf("update: %v", err)
	}

	notes, err := svc.List("user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(notes) != 3 {
		t.Fatalf("expected 3 notes, got %d", len(notes))
	}
	want := []string{b.ID, c.ID, a.ID}
	for i, id := range want {
		if notes[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s (order %v)", i, id, notes[i].ID,
				[]string{notes[0].Title, notes[1].Title, notes[2].Title})
		}
	}
}

func TestListByTag(t *testing.T) {
	svc, _, _, collabRepo := newTestNoteService()

	work, _ := svc.Create("user-1", &domain.CreateNoteRequest{Title: "standup", Tags: []string{"work"}})
	svc.Create("user-1", &domain.CreateNoteRequest{Title: "groceries", Tags: []string{"home"}})

	shared, _ := svc.Create("user-2", &domain.CreateNoteRequest{Title: "roadmap", Tags: []string{"work"}})
	collabRepo.Add(&domain.Collaborator{NoteID: shared.ID, UserID: "user-1"})

	notes, err := svc.ListByTag("user-1", "work")
	if err != nil {
		t.Fatalf("list by tag: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("expected 2 work notes (own + shared), got %d", len(notes))
	}
	seen := map[string]bool{}
	for _, n := range notes {
		seen[n.ID] = true
	}
	if !seen[work.ID] || !seen[shared.ID] {
		t.Errorf("expected notes %s and %s, got %v", work.ID, shared.ID, seen)
	}
}

func TestRestoreVersion(t *testing.T) {
	svc, _, versionRepo, _ := newTestNoteService()

	note, _ := svc.Create("user-1", &domain.CreateNoteRequest{Title: "v1", Content: "one"})
	svc.Update("user-1", note.ID, &domain.UpdateNoteRequest{Title: strPtr("v2"), Content: strPtr("two")})
	svc.Update("user-1", note.ID, &domain.UpdateNoteRequest{Title: strPtr("v3"), Content: strPtr("three")})

	restored, err := svc.RestoreVersion("user-1", note.ID, 1)
	if err != nil {
		t.Fatalf("restore version: %v", err)
	}
	if restored.Title != "v1" || restored.Content != "one" {
		t.Errorf("expected the oldest version back, got %q/%q", restored.Title, restored.Content)
	}

	// the pre-restore state must itself be recoverable
	versions, _ := versionRepo.ListByNote(note.ID)
	if len(versions) != 3 {
		t.Fatalf("expected 3 versions (2 edits + restore snapshot), got %d", len(versions))
	}
	last := versions[len(versions)-1]
	if last.Title != "v3" || last.Content != "three" {
		t.Errorf("newest version should hold the pre-restore state, got %q/%q", last.Title, last.Content)
	}
}

func TestRestoreVersionOutOfRange(t *testing.T) {
	svc, _, _, _ := newTestNoteService()

	note, _ := svc.Create("user-1", &domain.CreateNoteRequest{Title: "v1"})
	svc.Update("user-1", note.ID, &domain.UpdateNoteRequest{Title: strPtr("v2")})

	for _, idx := range []int{0, -1, 2, 99} {
		if _, err := svc.RestoreVersion("user-1", note.ID, idx); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("index %d: expected ErrNotFound, got %v", idx, err)
		}
	}
}

func TestRestoreVersionWithoutSnapshotPolicy(t *testing.T) {
	versionRepo := newMockVersionRepo()
	svc := NewNoteService(newMockNoteRepo(), versionRepo, newMockCollabRepo(), nil, NotePolicy{
		RestoreResetsPin:         true,
		SnapshotOnVersionRestore: false,
	})

	note, _ := svc.Create("user-1", &domain.CreateNoteRequest{Title: "v1", Content: "one"})
	svc.Update("user-1", note.ID, &domain.UpdateNoteRequest{Title: strPtr("v2")})

	if _, err := svc.RestoreVersion("user-1", note.ID, 1); err != nil {
		t.Fatalf("restore version: %v", err)
	}
	versions, _ := versionRepo.ListByNote(note.ID)
	if len(versions) != 1 {
		t.Errorf("restore must not snapshot under this policy, got %d versions", len(versions))
	}
}

type updateFailNoteRepo struct {
	*mockNoteRepo
}

func (r *updateFailNoteRepo) Update(note *domain.Note) error {
	return fmt.Errorf("%w: write concern timeout", domain.ErrStorage)
}

func TestFailedUpdateLeavesNoOrphanSnapshot(t *testing.T) {
	noteRepo := &updateFailNoteRepo{newMockNoteRepo()}
	versionRepo := newMockVersionRepo()
	svc := NewNoteService(noteRepo, versionRepo, newMockCollabRepo(), nil, DefaultNotePolicy())

	note, _ := svc.Create("user-1", &domain.CreateNoteRequest{Title: "flaky", Content: "first"})

	_, err := svc.Update("user-1", note.ID, &domain.UpdateNoteRequest{Content: strPtr("second")})
	if !errors.Is(err, domain.ErrStorage) {
		t.Fatalf("expected the storage failure back, got %v", err)
	}

	versions, _ := versionRepo.ListByNote(note.ID)
	if len(versions) != 0 {
		t.Errorf("failed update must not leave a snapshot behind, got %d versions", len(versions))
	}
}

func TestConcurrentUpdatesKeepEverySnapshot(t *testing.T) {
	svc, _, versionRepo, _ := newTestNoteService()

	note, _ := svc.Create("user-1", &domain.CreateNoteRequest{Title: "contended", Content: "0"})

	const writers = 8
	const updatesPerWriter = 10

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < updatesPerWriter; i++ {
				content := fmt.Sprintf("writer %d edit %d", w, i)
				if _, err := svc.Update("user-1", note.ID, &domain.UpdateNoteRequest{Content: &content}); err != nil {
					t.Errorf("concurrent update: %v", err)
				}
			}
		}(w)
	}
	wg.Wait()

	versions, _ := versionRepo.ListByNote(note.ID)
	if len(versions) != writers*updatesPerWriter {
		t.Errorf("expected %d versions, got %d", writers*updatesPerWriter, len(versions))
	}
}

func TestUpdateTags(t *testing.T) {
	svc, _, _, _ := newTestNoteService()

	note, _ := svc.Create("user-1", &domain.CreateNoteRequest{Title: "tagged", Tags: []string{"old"}})

	updated, err := svc.Update("user-1", note.ID, &domain.UpdateNoteRequest{Tags: tagsPtr("new", " new ", "other")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.Tags) != 2 || updated.Tags[0] != "new" || updated.Tags[1] != "other" {
		t.Errorf("expected normalized tags [new other], got %v", updated.Tags)
	}
}

func TestNoteNotFound(t *testing.T) {
	svc, _, _, _ := newTestNoteService()

	if _, err := svc.Get("user-1", "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("get: expected ErrNotFound, got %v", err)
	}
	if _, err := svc.Update("user-1", "missing", &domain.UpdateNoteRequest{}); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("update: expected ErrNotFound, got %v", err)
	}
	if err := svc.SoftDelete("user-1", "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("delete: expected ErrNotFound, got %v", err)
	}
}
