package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/Guilhem-Bonnet/Manga-Reader/internal/ports"
	"github.com/Guilhem-Bonnet/Manga-Reader/internal/reader"
	"github.com/rs/zerolog"
)

func notificationEvent(msg string) ports.Event {
	b, _ := json.Marshal(reader.Notification{Level: "error", Message: msg, ChapterID: 7, Dismissible: true})
	return ports.Event{Topic: ports.TopicNotification, Payload: b}
}

func TestNotificationCenter_ListAndDismiss(t *testing.T) {
	n := NewNotificationCenter(zerolog.Nop(), nil)
	n.handleEvent(notificationEvent("first"))
	n.handleEvent(notificationEvent("second"))
	n.handleEvent(ports.Event{Topic: ports.TopicChapterRead, Payload: []byte(`{}`)})

	list := n.List()
	if len(list) != 2 {
		t.Fatalf("notifications: want 2, got %d", len(list))
	}
	if list[0].Message != "second" || list[0].ChapterID != 7 || list[0].ID == "" {
		t.Fatalf("unexpected newest notification %+v", list[0])
	}

	if err := n.Dismiss(list[0].ID); err != nil {
		t.Fatalf("dismiss: %v", err)
	}
	if err := n.Dismiss(list[0].ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second dismiss: want ErrNotFound, got %v", err)
	}
	if got := n.List(); len(got) != 1 || got[0].Message != "first" {
		t.Fatalf("unexpected notifications %+v", got)
	}
}

func TestNotificationCenter_KeepsLatest(t *testing.T) {
	n := NewNotificationCenter(zerolog.Nop(), nil)
	for i := 0; i < maxNotifications+5; i++ {
		n.handleEvent(notificationEvent(fmt.Sprintf("n%d", i)))
	}
	list := n.List()
	if len(list) != maxNotifications {
		t.Fatalf("notifications: want %d, got %d", maxNotifications, len(list))
	}
	if list[len(list)-1].Message != "n5" {
		t.Fatalf("oldest kept: want n5, got %s", list[len(list)-1].Message)
	}
}
