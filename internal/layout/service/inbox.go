package service

import (
	"sync"

	"floor-layout/internal/layout/gateway"
)

const inboxCapacity = 32

// Inbox копит уведомления сессии до следующего запроса клиента.
// Пишется из горутин диспетчера, поэтому под замком.
type Inbox struct {
	mu    sync.Mutex
	items []gateway.Notification
	limit int
}

func NewInbox(limit int) *Inbox {
	return &Inbox{limit: limit}
}

func (b *Inbox) Notify(n gateway.Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items = append(b.items, n)
	if over := len(b.items) - b.limit; over > 0 {
		b.items = b.items[over:]
	}
}

// Drain возвращает накопленные уведомления и очищает ящик.
func (b *Inbox) Drain() []gateway.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	items := b.items
	b.items = nil
	return items
}
