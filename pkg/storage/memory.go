package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryStorage provides an in-memory asset store for tests and demo mode
type MemoryStorage struct {
	mu     sync.RWMutex
	name   string
	assets map[string][]byte
}

// NewMemoryStorage creates an empty in-memory store. name only affects
// reported locations (mem://name/key).
func NewMemoryStorage(name string) *MemoryStorage {
	return &MemoryStorage{
		name:   name,
		assets: make(map[string][]byte),
	}
}

// NewDemoStorage returns a memory store preloaded with sample pages
func NewDemoStorage() *MemoryStorage {
	m := NewMemoryStorage("demo")
	for key, body := range samplePages {
		m.assets[key] = []byte(body)
	}
	return m
}

// Location returns mem://name/key
func (m *MemoryStorage) Location(key string) string {
	return "mem://" + m.name + "/" + key
}

// Get returns a copy of the stored bytes
func (m *MemoryStorage) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.assets[key]
	if !ok {
		return nil, &ErrNotFound{Key: key, Location: m.Location(key)}
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// List returns all stored keys
func (m *MemoryStorage) List(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.assets))
	for k := range m.assets {
		keys = append(keys, k)
	}
	return keys, nil
}

// Put stores content under key
func (m *MemoryStorage) Put(ctx context.Context, key string, content io.Reader) error {
	data, err := io.ReadAll(content)
	if err != nil {
		return fmt.Errorf("failed to read content: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assets[key] = data
	return nil
}

// Delete removes key; missing keys are ignored
func (m *MemoryStorage) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.assets, key)
}

// Ping always succeeds
func (m *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

// Backend returns "memory"
func (m *MemoryStorage) Backend() string {
	return "memory"
}

var samplePages = map[string]string{
	"index.html": `<!DOCTYPE html>
<html lang="ko"><head><meta charset="utf-8"><title>AI Novel Research</title></head>
<body><h1>AI 소설과 독자의 감정 연구</h1><p>Demo page.</p></body></html>
`,
	"index2.html": `<!DOCTYPE html>
<html lang="ko"><head><meta charset="utf-8"><title>Team Balancer</title></head>
<body><h1>팀 밸런스 분배기</h1><p>Demo page.</p></body></html>
`,
	"index3.html": `<!DOCTYPE html>
<html lang="ko"><head><meta charset="utf-8"><title>Algorithm Performance</title></head>
<body><h1>알고리즘 성능 비교기</h1><p>Demo page.</p></body></html>
`,
	"index4.html": `<!DOCTYPE html>
<html lang="ko"><head><meta charset="utf-8"><title>Project Plan</title></head>
<body><h1>정보과제연구 계획서</h1><p>Demo page.</p></body></html>
`,
}
