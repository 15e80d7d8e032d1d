package main

import "sync"

type ownedRecord interface {
	ownedBy() int
}

func (c crop) ownedBy() int          { return c.UserID }
func (i inventoryItem) ownedBy() int { return i.UserID }
func (t task) ownedBy() int          { return t.UserID }

// table holds one kind of owned record in insertion order.
type table[T ownedRecord] struct {
	records []T
}

func (t *table[T]) insert(rec T) {
	t.records = append(t.records, rec)
}

func (t *table[T]) byOwner(userID int) []T {
	out := []T{}
	for _, rec := range t.records {
		if rec.ownedBy() == userID {
			out = append(out, rec)
		}
	}
	return out
}

// memoryStorage is the default volatile backend. A single mutex guards every
// table and the id counter: ids are drawn from one shared counter across all
// record kinds, so two concurrent creates can never collide.
type memoryStorage struct {
	mu     sync.Mutex
	nextID int

	users     []user
	crops     table[crop]
	inventory table[inventoryItem]
	tasks     table[task]
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{nextID: 1}
}

// allocID must be called with the mutex held.
func (s *memoryStorage) allocID() int {
	id := s.nextID
	s.nextID++
	return id
}

func (s *memoryStorage) createUser(username string, passwordHash []byte) (*user, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := user{
		ID:           s.allocID(),
		Username:     username,
		PasswordHash: passwordHash,
	}
	s.users = append(s.users, u)
	return &u, nil
}

func (s *memoryStorage) getUserByUsername(username string) (*user, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, nil
}

func (s *memoryStorage) getUserByID(id int) (*user, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, nil
}

func (s *memoryStorage) createCrop(userID int, draft cropDraft) (*crop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := crop{
		ID:                  s.allocID(),
		UserID:              userID,
		Name:                draft.Name,
		Quantity:            draft.Quantity,
		PlantedDate:         draft.PlantedDate,
		ExpectedHarvestDate: draft.ExpectedHarvestDate,
		Status:              draft.Status,
	}
	s.crops.insert(c)
	return &c, nil
}

func (s *memoryStorage) cropsByUser(userID int) ([]crop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.crops.byOwner(userID), nil
}

func (s *memoryStorage) createInventoryItem(userID int, draft inventoryDraft) (*inventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := inventoryItem{
		ID:       s.allocID(),
		UserID:   userID,
		Name:     draft.Name,
		Category: draft.Category,
		Quantity: draft.Quantity,
		Unit:     draft.Unit,
	}
	s.inventory.insert(item)
	return &item, nil
}

func (s *memoryStorage) inventoryByUser(userID int) ([]inventoryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inventory.byOwner(userID), nil
}

func (s *memoryStorage) createTask(userID int, draft taskDraft) (*task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := task{
		ID:          s.allocID(),
		UserID:      userID,
		Title:       draft.Title,
		Description: draft.Description,
		DueDate:     draft.DueDate,
		Priority:    draft.Priority,
		Completed:   draft.Completed,
	}
	s.tasks.insert(t)
	return &t, nil
}

func (s *memoryStorage) tasksByUser(userID int) ([]task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.byOwner(userID), nil
}

func (s *memoryStorage) completeTask(userID, taskID int) (*task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks.records {
		t := &s.tasks.records[i]
		if t.ID != taskID {
			continue
		}
		if t.UserID != userID {
			// Not leaking whether the task exists: same outcome as
			// not found.
			return nil, nil
		}
		t.Completed = true
		updated := *t
		return &updated, nil
	}
	return nil, nil
}
