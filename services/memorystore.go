package services

import (
	"context"
	"sort"
	"sync"

	"ezwallet/model"
)

// MemoryStore keeps every document in process memory. It backs local runs
// without Firestore and the test suites.
type MemoryStore struct {
	mu           sync.RWMutex
	users        map[string]model.User // by UserID
	categories   map[string]model.Category
	transactions map[string]model.Transaction
	groups       map[string]model.Group
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[string]model.User),
		categories:   make(map[string]model.Category),
		transactions: make(map[string]model.Transaction),
		groups:       make(map[string]model.Group),
	}
}

func (s *MemoryStore) CreateUser(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.UserID] = *user
	return nil
}

func (s *MemoryStore) findUser(match func(model.User) bool) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	return s.findUser(func(u model.User) bool { return u.Email == email })
}

func (s *MemoryStore) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	return s.findUser(func(u model.User) bool { return u.Username == username })
}

func (s *MemoryStore) GetUserByRefreshToken(_ context.Context, refreshToken string) (*model.User, error) {
	if refreshToken == "" {
		return nil, ErrNotFound
	}
	return s.findUser(func(u model.User) bool { return u.RefreshToken == refreshToken })
}

func (s *MemoryStore) SetRefreshToken(_ context.Context, userID, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.RefreshToken = refreshToken
	s.users[userID] = u
	return nil
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

func (s *MemoryStore) DeleteUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return ErrNotFound
	}
	delete(s.users, userID)
	return nil
}

func (s *MemoryStore) CreateCategory(_ context.Context, category *model.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[category.Type] = *category
	return nil
}

func (s *MemoryStore) GetCategory(_ context.Context, categoryType string) (*model.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[categoryType]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (s *MemoryStore) ListCategories(_ context.Context) ([]model.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	categories := make([]model.Category, 0, len(s.categories))
	for _, c := range s.categories {
		categories = append(categories, c)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Type < categories[j].Type })
	return categories, nil
}

func (s *MemoryStore) UpdateCategory(_ context.Context, oldType string, category *model.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[oldType]; !ok {
		return ErrNotFound
	}
	delete(s.categories, oldType)
	s.categories[category.Type] = *category
	return nil
}

func (s *MemoryStore) CreateTransaction(_ context.Context, tx *model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions[tx.TransactionID] = *tx
	return nil
}

func (s *MemoryStore) GetTransaction(_ context.Context, id string) (*model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tx, ok := s.transactions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &tx, nil
}

func (s *MemoryStore) ListTransactions(_ context.Context, usernames ...string) ([]model.Transaction, error) {
	wanted := make(map[string]bool, len(usernames))
	for _, u := range usernames {
		wanted[u] = true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	txs := make([]model.Transaction, 0)
	for _, tx := range s.transactions {
		if len(wanted) == 0 || wanted[tx.Username] {
			txs = append(txs, tx)
		}
	}
	sort.Slice(txs, func(i, j int) bool { return txs[i].Date.Before(txs[j].Date) })
	return txs, nil
}

func (s *MemoryStore) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[id]; !ok {
		return ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

func (s *MemoryStore) DeleteTransactions(_ context.Context, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if _, ok := s.transactions[id]; !ok {
			return ErrNotFound
		}
	}
	for _, id := range ids {
		delete(s.transactions, id)
	}
	return nil
}

func (s *MemoryStore) DeleteUserTransactions(_ context.Context, username string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for id, tx := range s.transactions {
		if tx.Username == username {
			delete(s.transactions, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *MemoryStore) RetypeTransactions(_ context.Context, oldType, newType string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated := 0
	for id, tx := range s.transactions {
		if tx.Type == oldType {
			tx.Type = newType
			s.transactions[id] = tx
			updated++
		}
	}
	return updated, nil
}

func (s *MemoryStore) CreateGroup(_ context.Context, group *model.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := *group
	g.Members = append([]model.GroupMember(nil), group.Members...)
	s.groups[group.Name] = g
	return nil
}

func (s *MemoryStore) GetGroup(_ context.Context, name string) (*model.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groups[name]
	if !ok {
		return nil, ErrNotFound
	}
	g.Members = append([]model.GroupMember(nil), g.Members...)
	return &g, nil
}

func (s *MemoryStore) ListGroups(_ context.Context) ([]model.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	groups := make([]model.Group, 0, len(s.groups))
	for _, g := range s.groups {
		g.Members = append([]model.GroupMember(nil), g.Members...)
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}

func (s *MemoryStore) UpdateGroup(ctx context.Context, group *model.Group) error {
	s.mu.RLock()
	_, ok := s.groups[group.Name]
	s.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	return s.CreateGroup(ctx, group)
}

func (s *MemoryStore) DeleteGroup(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[name]; !ok {
		return ErrNotFound
	}
	delete(s.groups, name)
	return nil
}
