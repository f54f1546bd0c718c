// Package store defines the storage interface and implementations.
package store

import (
	"context"
	"time"

	"github.com/kimyerak/guidely-chat/internal/domain"
)

// Store defines the interface for data persistence.
//
// Lookups return (nil, nil) when the record does not exist. Status changes
// are conditional writes so that callers never need an external lock: the
// bool result reports whether the write was applied.
type Store interface {
	// Session operations
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
	ActivateSession(ctx context.Context, sessionID string) (bool, error)
	EndSession(ctx context.Context, sessionID string, endedAt time.Time, reason string) (bool, error)

	// Message operations

	// AppendMessage stores message only while its session is not ENDED.
	// Seq is assigned by the store and CreatedAt is raised to the latest
	// created-at already in the session; both are written back to message.
	AppendMessage(ctx context.Context, message *domain.Message) (bool, error)
	CountMessages(ctx context.Context, sessionID string) (int, error)
	// ListMessages returns messages in append order; limit <= 0 means all.
	ListMessages(ctx context.Context, sessionID string, offset, limit int) ([]domain.Message, error)

	// Credits operations
	GetCredits(ctx context.Context, sessionID string) (*domain.CreditsRecord, error)
	// SaveCreditsIfAbsent stores record unless one exists for the session and
	// returns whichever record is stored afterwards; created reports an insert.
	SaveCreditsIfAbsent(ctx context.Context, record *domain.CreditsRecord) (stored *domain.CreditsRecord, created bool, err error)

	// Event operations
	CreateEvent(ctx context.Context, event *domain.Event) error
	GetEvents(ctx context.Context, sessionID string, afterTs int64, types []string, limit int) ([]domain.Event, error)

	// Lifecycle
	Close() error
}

// DriverMemory selects MemoryStore in New. Data is lost on exit.
const DriverMemory = "memory"

// New opens the store named by driver: DriverMemory, DriverCGO or DriverPure.
// dsn is ignored for the memory store.
func New(driver, dsn string) (Store, error) {
	if driver == DriverMemory {
		return NewMemoryStore(), nil
	}
	return Open(driver, dsn)
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
