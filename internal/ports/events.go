package ports

type EventBus interface {
	Publish(topic string, payload []byte)
	Subscribe() (ch <-chan Event, cancel func())
}

type Event struct {
	Topic   string
	Payload []byte
}

// Topics publiés sur le bus applicatif.
const (
	TopicChapterRead     = "chapter.read"
	TopicTrackerProgress = "tracker.progress"
	TopicNotification    = "notification"
	TopicSessionChanged  = "session.changed"
	TopicSessionScroll   = "session.scroll"
)
