package app

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/ports"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/reader"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
)

const maxNotifications = 50

type NotificationDTO struct {
	ID        string    `json:"id"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	MangaID   int       `json:"mangaId,omitempty"`
	ChapterID int       `json:"chapterId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NotificationCenter garde les dernières notifications publiées sur le bus
// jusqu'à ce que l'utilisateur les ferme.
type NotificationCenter struct {
	logger zerolog.Logger
	bus    ports.EventBus
	now    func() time.Time

	mu    sync.Mutex
	items []NotificationDTO
}

func NewNotificationCenter(logger zerolog.Logger, bus ports.EventBus) *NotificationCenter {
	return &NotificationCenter{logger: logger, bus: bus, now: time.Now}
}

func (n *NotificationCenter) Run(ctx context.Context) {
	if n == nil || n.bus == nil {
		return
	}
	ch, cancel := n.bus.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			n.handleEvent(evt)
		}
	}
}

func (n *NotificationCenter) handleEvent(evt ports.Event) {
	if evt.Topic != ports.TopicNotification {
		return
	}
	var in reader.Notification
	if err := json.Unmarshal(evt.Payload, &in); err != nil || in.Message == "" {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, NotificationDTO{
		ID:        xid.New().String(),
		Level:     in.Level,
		Message:   in.Message,
		MangaID:   in.MangaID,
		ChapterID: in.ChapterID,
		CreatedAt: n.now().UTC(),
	})
	if len(n.items) > maxNotifications {
		n.items = append([]NotificationDTO(nil), n.items[len(n.items)-maxNotifications:]...)
	}
}

// List renvoie les notifications, la plus récente en premier.
func (n *NotificationCenter) List() []NotificationDTO {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]NotificationDTO, 0, len(n.items))
	for i := len(n.items) - 1; i >= 0; i-- {
		out = append(out, n.items[i])
	}
	return out
}

func (n *NotificationCenter) Dismiss(id string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, it := range n.items {
		if it.ID == id {
			n.items = append(n.items[:i], n.items[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
