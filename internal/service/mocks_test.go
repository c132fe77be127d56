package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vdsasi/NoteSharingApp/internal/domain"
)

type mockNoteRepo struct {
	mu    sync.Mutex
	notes map[string]*domain.Note
}

func newMockNoteRepo() *mockNoteRepo {
	return &mockNoteRepo{notes: make(map[string]*domain.Note)}
}

func (m *mockNoteRepo) Create(note *domain.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := *note
	m.notes[note.ID] = &n
	return nil
}

func (m *mockNoteRepo) FindByID(id string) (*domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, exists := m.notes[id]; exists {
		copy := *n
		return &copy, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockNoteRepo) Update(note *domain.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.notes[note.ID]; !exists {
		return domain.ErrNotFound
	}
	n := *note
	m.notes[note.ID] = &n
	return nil
}

func (m *mockNoteRepo) List(ownerID string, sharedNoteIDs []string) ([]*domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	shared := make(map[string]bool, len(sharedNoteIDs))
	for _, id := range sharedNoteIDs {
		shared[id] = true
	}

	var notes []*domain.Note
	for _, n := range m.notes {
		if n.Trashed {
			continue
		}
		if n.OwnerID == ownerID || shared[n.ID] {
			copy := *n
			notes = append(notes, &copy)
		}
	}
	sortNotes(notes)
	return notes, nil
}

func (m *mockNoteRepo) ListTrashed(ownerID string) ([]*domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var notes []*domain.Note
	for _, n := range m.notes {
		if n.Trashed && n.OwnerID == ownerID {
			copy := *n
			notes = append(notes, &copy)
		}
	}
	sort.Slice(notes, func(i, j int) bool {
		if !notes[i].UpdatedAt.Equal(notes[j].UpdatedAt) {
			return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
		}
		return notes[i].ID < notes[j].ID
	})
	return notes, nil
}

func (m *mockNoteRepo) ListByTag(ownerID, tag string, sharedNoteIDs []string) ([]*domain.Note, error) {
	all, err := m.List(ownerID, sharedNoteIDs)
	if err != nil {
		return nil, err
	}
	var notes []*domain.Note
	for _, n := range all {
		for _, t := range n.Tags {
			if t == tag {
				notes = append(notes, n)
				break
			}
		}
	}
	return notes, nil
}

// sortNotes mirrors the store ordering: pinned first, most recently
// updated next, id ascending as the tie-break.
func sortNotes(notes []*domain.Note) {
	sort.Slice(notes, func(i, j int) bool {
		if notes[i].Pinned != notes[j].Pinned {
			return notes[i].Pinned
		}
		if !notes[i].UpdatedAt.Equal(notes[j].UpdatedAt) {
			return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
		}
		return notes[i].ID < notes[j].ID
	})
}

type mockVersionRepo struct {
	mu       sync.Mutex
	versions map[string][]*domain.NoteVersion
}

func newMockVersionRepo() *mockVersionRepo {
	return &mockVersionRepo{versions: make(map[string][]*domain.NoteVersion)}
}

func (m *mockVersionRepo) Save(v *domain.NoteVersion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *v
	m.versions[v.NoteID] = append(m.versions[v.NoteID], &copy)
	return nil
}

func (m *mockVersionRepo) ListByNote(noteID string) ([]*domain.NoteVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.NoteVersion, len(m.versions[noteID]))
	copy(out, m.versions[noteID])
	return out, nil
}

type mockCollabRepo struct {
	mu     sync.Mutex
	grants map[string]map[string]bool // note id -> user ids
}

func newMockCollabRepo() *mockCollabRepo {
	return &mockCollabRepo{grants: make(map[string]map[string]bool)}
}

func (m *mockCollabRepo) Add(c *domain.Collaborator) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.grants[c.NoteID] == nil {
		m.grants[c.NoteID] = make(map[string]bool)
	}
	if m.grants[c.NoteID][c.UserID] {
		return domain.ErrConflict
	}
	m.grants[c.NoteID][c.UserID] = true
	return nil
}

func (m *mockCollabRepo) Remove(noteID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.grants[noteID][userID] {
		return domain.ErrNotFound
	}
	delete(m.grants[noteID], userID)
	return nil
}

func (m *mockCollabRepo) Exists(noteID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.grants[noteID][userID], nil
}

func (m *mockCollabRepo) ListUserIDs(noteID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id := range m.grants[noteID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *mockCollabRepo) NoteIDsForUser(userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for noteID, users := range m.grants {
		if users[userID] {
			ids = append(ids, noteID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *mockCollabRepo) RemoveAllForNote(noteID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.grants, noteID)
	return nil
}

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*domain.User)}
}

func (m *mockUserRepo) Create(user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := *user
	m.users[user.ID] = &u
	return nil
}

func (m *mockUserRepo) FindByID(id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, exists := m.users[id]; exists {
		copy := *u
		return &copy, nil
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserRepo) FindByUsername(username string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			copy := *u
			return &copy, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserRepo) FindByEmail(email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserRepo) FindByIDs(ids []string) ([]*domain.User, error) {
	var users []*domain.User
	for _, id := range ids {
		if u, err := m.FindByID(id); err == nil {
			users = append(users, u)
		}
	}
	return users, nil
}

func (m *mockUserRepo) UpdatePassword(id, hashedPassword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, exists := m.users[id]
	if !exists {
		return domain.ErrNotFound
	}
	u.Password = hashedPassword
	return nil
}

func (m *mockUserRepo) Search(query string, limit int) ([]*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := strings.ToLower(query)
	var users []*domain.User
	for _, u := range m.users {
		if strings.Contains(strings.ToLower(u.Username), q) || strings.Contains(strings.ToLower(u.Email), q) {
			copy := *u
			users = append(users, &copy)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (m *mockUserRepo) EmailExists(email string) (bool, error) {
	_, err := m.FindByEmail(email)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (m *mockUserRepo) UsernameExists(username string) (bool, error) {
	_, err := m.FindByUsername(username)
	if err == nil {
		return true, nil
	}
	return false, nil
}

type mockSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]string
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]string)}
}

func (m *mockSessionRepo) Create(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = userID
	return nil
}

func (m *mockSessionRepo) Get(ctx context.Context, sessionID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if userID, exists := m.sessions[sessionID]; exists {
		return userID, nil
	}
	return "", domain.ErrAnonymous
}

func (m *mockSessionRepo) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}
