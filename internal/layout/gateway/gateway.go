package gateway

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"floor-layout/internal/layout/models"
)

// ============================================================
// Commit Gateway
// ============================================================

// CommitGateway - граница API обновления столов.
type CommitGateway interface {
	UpdateEntity(ctx context.Context, u models.Update) error
	UpdateEntities(ctx context.Context, updates []models.Update) error
}

// Send отправляет коммит одиночным или пакетным запросом.
func Send(ctx context.Context, gw CommitGateway, c models.Commit) error {
	if len(c.Updates) == 0 {
		return nil
	}
	if !c.Batch && len(c.Updates) == 1 {
		return gw.UpdateEntity(ctx, c.Updates[0])
	}
	return gw.UpdateEntities(ctx, c.Updates)
}

// ============================================================
// Notifications
// ============================================================

type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notification - неблокирующее уведомление для пользователя (toast).
type Notification struct {
	Level    Level     `json:"level"`
	Message  string    `json:"message"`
	TableIDs []string  `json:"table_ids,omitempty"`
	At       time.Time `json:"at"`
}

type Notifier interface {
	Notify(n Notification)
}

// LogNotifier пишет уведомления в лог.
type LogNotifier struct{}

func (LogNotifier) Notify(n Notification) {
	log.Printf("[NOTIFY] %s: %s %v", n.Level, n.Message, n.TableIDs)
}

// ============================================================
// Dispatcher
// ============================================================

// Dispatcher отправляет коммиты асинхронно (fire-and-forget относительно жеста).
// Ошибка коммита превращается в уведомление; локальные позиции не откатываются
// и повторной отправки нет.
type Dispatcher struct {
	gw      CommitGateway
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(gw CommitGateway, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{gw: gw, timeout: timeout}
}

// Dispatch запускает отправку в отдельной горутине и сразу возвращается.
func (d *Dispatcher) Dispatch(c models.Commit, notifier Notifier) {
	if len(c.Updates) == 0 {
		return
	}
	if notifier == nil {
		notifier = LogNotifier{}
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := Send(ctx, d.gw, c); err != nil {
			log.Printf("[COMMIT] failed for %v: %v", c.IDs(), err)
			notifier.Notify(Notification{
				Level:    LevelError,
				Message:  fmt.Sprintf("failed to save table layout: %v", err),
				TableIDs: c.IDs(),
				At:       time.Now(),
			})
			return
		}
		log.Printf("[COMMIT] saved %d table(s), batch=%t", len(c.Updates), c.Batch)
	}()
}

// Wait блокируется до завершения всех отправленных коммитов.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
