package widgets

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Status represents the completion status of a todo.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Tag represents a category tag for todos.
type Tag string

const (
	TagWork     Tag = "work"
	TagPersonal Tag = "personal"
	TagUrgent   Tag = "urgent"
	TagLater    Tag = "later"
)

// AllTags returns all available tags.
func AllTags() []Tag {
	return []Tag{TagWork, TagPersonal, TagUrgent, TagLater}
}

// Todo represents a single todo item.
type Todo struct {
	ID          string
	Title       string
	Description string
	Status      Status
	Tags        []Tag
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsCompleted returns true if the todo is completed.
func (t *Todo) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// HasTag returns true if the todo has the given tag.
func (t *Todo) HasTag(tag Tag) bool {
	for _, tg := range t.Tags {
		if tg == tag {
			return true
		}
	}
	return false
}

// Matches reports whether query occurs in the title or description,
// ignoring case.
func (t *Todo) Matches(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Description), q)
}

// TodoStats holds statistics about todos.
type TodoStats struct {
	Total     int
	Completed int
	Pending   int
	ByTag     map[Tag]int
}

// TodoStore is the application data the demo widgets display. It lives
// outside the transaction: widgets keep only their view state (query, page,
// selected group) in the transaction and read the data on every render.
type TodoStore interface {
	Get(id string) *Todo
	List(status *Status, tags []Tag) []*Todo
	Add(title, description string, tags []Tag) string
	Toggle(id string) bool
	Delete(id string) bool
	Stats() TodoStats
	// Version changes on every mutation.
	Version() uint64
}

// MemoryTodos is an in-memory TodoStore.
type MemoryTodos struct {
	mu      sync.RWMutex
	todos   map[string]*Todo
	nextID  int
	version uint64
	now     func() time.Time
}

// NewMemoryTodos creates an empty store.
func NewMemoryTodos() *MemoryTodos {
	return &MemoryTodos{
		todos:  make(map[string]*Todo),
		nextID: 1,
		now:    time.Now,
	}
}

// NewSampleTodos creates a store with a few sample todos.
func NewSampleTodos() *MemoryTodos {
	s := NewMemoryTodos()
	s.Add("Buy groceries", "Milk, eggs, bread", []Tag{TagPersonal})
	s.Add("Review PR #123", "Check the authentication changes", []Tag{TagWork, TagUrgent})
	s.Add("Write documentation", "Update API docs for v2", []Tag{TagWork})
	s.Add("Call dentist", "Schedule annual checkup", []Tag{TagPersonal, TagLater})
	s.Add("Fix login bug", "Users can't reset passwords", []Tag{TagWork, TagUrgent})
	return s
}

// Add creates a new todo and returns its ID.
func (s *MemoryTodos) Add(title, description string, tags []Tag) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := fmt.Sprintf("todo-%d", s.nextID)
	s.nextID++

	now := s.now()
	s.todos[id] = &Todo{
		ID:          id,
		Title:       title,
		Description: description,
		Status:      StatusPending,
		Tags:        tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.version++
	return id
}

// Get returns a copy of the todo with id, or nil.
func (s *MemoryTodos) Get(id string) *Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.todos[id]
	if !ok {
		return nil
	}
	cp := *t
	return &cp
}

// Toggle toggles the completed status of a todo.
func (s *MemoryTodos) Toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	todo, ok := s.todos[id]
	if !ok {
		return false
	}
	if todo.Status == StatusCompleted {
		todo.Status = StatusPending
	} else {
		todo.Status = StatusCompleted
	}
	todo.UpdatedAt = s.now()
	s.version++
	return true
}

// Delete removes a todo by ID.
func (s *MemoryTodos) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.todos[id]; !ok {
		return false
	}
	delete(s.todos, id)
	s.version++
	return true
}

// List returns copies of the todos, optionally filtered by status and by
// tags (a todo must carry all of them), oldest first.
func (s *MemoryTodos) List(status *Status, tags []Tag) []*Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*Todo
	for _, todo := range s.todos {
		if status != nil && todo.Status != *status {
			continue
		}
		hasAll := true
		for _, tag := range tags {
			if !todo.HasTag(tag) {
				hasAll = false
				break
			}
		}
		if !hasAll {
			continue
		}
		cp := *todo
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return idNumber(result[i].ID) < idNumber(result[j].ID)
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// Stats returns statistics about the todos.
func (s *MemoryTodos) Stats() TodoStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := TodoStats{ByTag: make(map[Tag]int)}
	for _, todo := range s.todos {
		stats.Total++
		if todo.Status == StatusCompleted {
			stats.Completed++
		} else {
			stats.Pending++
		}
		for _, tag := range todo.Tags {
			stats.ByTag[tag]++
		}
	}
	return stats
}

// Version implements TodoStore.
func (s *MemoryTodos) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func idNumber(id string) int {
	var n int
	fmt.Sscanf(id, "todo-%d", &n)
	return n
}
