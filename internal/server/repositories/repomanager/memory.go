package repomanager

import (
	"context"

	"github.com/dmitrijs2005/taxportal/internal/server/repositories/contacts"
	"github.com/dmitrijs2005/taxportal/internal/server/repositories/contents"
	"github.com/dmitrijs2005/taxportal/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps everything in process memory.
type MemoryRepositoryManager struct {
	contents *contents.MemoryRepository
	contacts *contacts.MemoryRepository
	users    *users.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		contents: contents.NewMemoryRepository(),
		contacts: contacts.NewMemoryRepository(),
		users:    users.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) Contents() contents.Repository { return m.contents }
func (m *MemoryRepositoryManager) Contacts() contacts.Repository { return m.contacts }
func (m *MemoryRepositoryManager) Users() users.Repository       { return m.users }

// UserStore exposes the concrete users repository for seeding fixtures.
func (m *MemoryRepositoryManager) UserStore() *users.MemoryRepository { return m.users }

func (m *MemoryRepositoryManager) Ping(ctx context.Context) error { return ctx.Err() }

func (m *MemoryRepositoryManager) Close(context.Context) error { return nil }
