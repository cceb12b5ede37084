package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"CourierBot/model"

	"github.com/google/uuid"
)

// FileStore keeps accounts in db.json and orders in orders.json inside a data
// directory. It is used when no Firebase database is configured.
type FileStore struct {
	mu         sync.Mutex
	usersPath  string
	ordersPath string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating data dir: %w", err)
	}
	return &FileStore{
		usersPath:  filepath.Join(dir, "db.json"),
		ordersPath: filepath.Join(dir, "orders.json"),
	}, nil
}

func readJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error reading %s: %w", path, err)
	}
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("error decoding %s: %w", path, err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	return os.Rename(tmp, path)
}

func (s *FileStore) users() (map[string]model.Account, error) {
	users := make(map[string]model.Account)
	if err := readJSON(s.usersPath, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *FileStore) Account(_ context.Context, userID int64) (model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users, err := s.users()
	if err != nil {
		return model.Account{}, err
	}
	return users[userKey(userID)], nil
}

func (s *FileStore) SaveAccount(_ context.Context, userID int64, acc model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	users, err := s.users()
	if err != nil {
		return err
	}
	users[userKey(userID)] = acc
	return writeJSON(s.usersPath, users)
}

func (s *FileStore) DeleteAccount(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	users, err := s.users()
	if err != nil {
		return err
	}
	delete(users, userKey(userID))
	return writeJSON(s.usersPath, users)
}

func (s *FileStore) orders() (map[string][]model.StoredOrder, error) {
	orders := make(map[string][]model.StoredOrder)
	if err := readJSON(s.ordersPath, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// SaveOrder appends order to the user's list and returns its new id.
func (s *FileStore) SaveOrder(_ context.Context, userID int64, order any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	orders, err := s.orders()
	if err != nil {
		return "", err
	}
	stored := model.StoredOrder{OrderID: uuid.NewString(), Order: order}
	key := userKey(userID)
	orders[key] = append(orders[key], stored)
	if err := writeJSON(s.ordersPath, orders); err != nil {
		return "", err
	}
	return stored.OrderID, nil
}

func (s *FileStore) Orders(_ context.Context, userID int64) ([]model.StoredOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	orders, err := s.orders()
	if err != nil {
		return nil, err
	}
	return orders[userKey(userID)], nil
}
