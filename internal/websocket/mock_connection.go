package websocket

import (
	"sync"
	"time"
)

// MockConnection is an in-memory Connection for tests.
type MockConnection struct {
	mu       sync.Mutex
	written  [][]byte
	incoming chan []byte
	closed   bool
}

// NewMockConnection creates a mock connection.
func NewMockConnection() *MockConnection {
	return &MockConnection{
		incoming: make(chan []byte, 16),
	}
}

func (m *MockConnection) WriteMessage(messageType int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	m.written = append(m.written, buf)
	return nil
}

func (m *MockConnection) ReadMessage() (int, []byte, error) {
	data, ok := <-m.incoming
	if !ok {
		return 0, nil, &mockClosedError{}
	}
	return 1, data, nil
}

func (m *MockConnection) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.incoming)
	}
	return nil
}

func (m *MockConnection) SetReadDeadline(t time.Time) error  { return nil }
func (m *MockConnection) SetWriteDeadline(t time.Time) error { return nil }
func (m *MockConnection) SetReadLimit(limit int64)           {}
func (m *MockConnection) SetPongHandler(h func(string) error) {}
func (m *MockConnection) RemoteAddr() string                 { return "127.0.0.1:0" }

// Written returns a copy of everything written to the connection.
func (m *MockConnection) Written() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.written))
	copy(out, m.written)
	return out
}

type mockClosedError struct{}

func (e *mockClosedError) Error() string { return "mock connection closed" }
