package adapters

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// AdapterConstructor возвращает новый, еще не подключенный адаптер
type AdapterConstructor func() Adapter

// Реестр драйверов заполняется из init() пакетов pkg/adapters/<db>,
// по аналогии с database/sql.Register
var (
	registryMu sync.RWMutex
	registry   = make(map[string]AdapterConstructor)
)

// aliases - синонимы типов СУБД из конфигов старого формата
var aliases = map[string]string{
	"postgresql": "postgres",
	"sqlserver":  "mssql",
	"sqlite3":    "sqlite",
}

// NormalizeType приводит тип СУБД к имени, под которым зарегистрирован адаптер
func NormalizeType(dbType string) string {
	t := strings.ToLower(strings.TrimSpace(dbType))
	if canonical, ok := aliases[t]; ok {
		return canonical
	}
	return t
}

// Register добавляет адаптер в реестр. Повторная регистрация типа
// (в том числе через синоним) и nil конструктор - ошибка программиста.
func Register(dbType string, constructor AdapterConstructor) {
	if constructor == nil {
		panic("adapters: Register constructor is nil for " + dbType)
	}

	key := NormalizeType(dbType)
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[key]; dup {
		panic("adapters: Register called twice for " + key)
	}
	registry[key] = constructor
}

// IsRegistered проверяет наличие адаптера (синонимы учитываются)
func IsRegistered(dbType string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[NormalizeType(dbType)]
	return ok
}

// GetRegisteredTypes возвращает отсортированный список типов
func GetRegisteredTypes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// New создает адаптер по cfg.Type и подключает его.
// cfg.Type приводится к каноническому имени до вызова Connect.
func New(ctx context.Context, cfg Config) (Adapter, error) {
	cfg.Type = NormalizeType(cfg.Type)

	registryMu.RLock()
	constructor, ok := registry[cfg.Type]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown database type: %s (available types: %v)", cfg.Type, GetRegisteredTypes())
	}

	adapter := constructor()
	if err := adapter.Connect(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Type, err)
	}

	log.Debug().Str("db_type", cfg.Type).Msg("adapter connected")
	return adapter, nil
}
