package session

import (
	"context"
	"sync"
)

const (
	KeyLoggedIn   = "isLoggedIn"
	ValueLoggedIn = "true"
)

// FlagStore — хранилище строковых флагов по чату. Отсутствие ключа — не ошибка: ok=false.
type FlagStore interface {
	Get(ctx context.Context, chatID int64, key string) (value string, ok bool, err error)
	Set(ctx context.Context, chatID int64, key, value string) error
	Remove(ctx context.Context, chatID int64, key string) error
}

// Gate — флаг входа. Это только признак для интерфейса, не проверка прав:
// сервер ничего о нём не знает.
type Gate struct {
	store FlagStore
}

func NewGate(store FlagStore) *Gate { return &Gate{store: store} }

func (g *Gate) LoggedIn(ctx context.Context, chatID int64) (bool, error) {
	v, ok, err := g.store.Get(ctx, chatID, KeyLoggedIn)
	if err != nil {
		return false, err
	}
	return ok && v == ValueLoggedIn, nil
}

func (g *Gate) MarkLoggedIn(ctx context.Context, chatID int64) error {
	return g.store.Set(ctx, chatID, KeyLoggedIn, ValueLoggedIn)
}

// Clear — выход или неудачный вход.
func (g *Gate) Clear(ctx context.Context, chatID int64) error {
	return g.store.Remove(ctx, chatID, KeyLoggedIn)
}

type memKey struct {
	chatID int64
	key    string
}

// MemoryStore — FlagStore в памяти процесса: для тестов и запуска без базы.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[memKey]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[memKey]string)}
}

func (m *MemoryStore) Get(_ context.Context, chatID int64, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[memKey{chatID, key}]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, chatID int64, key, value string) error {
	m.mu.Lock()
	m.data[memKey{chatID, key}] = value
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, chatID int64, key string) error {
	m.mu.Lock()
	delete(m.data, memKey{chatID, key})
	m.mu.Unlock()
	return nil
}
