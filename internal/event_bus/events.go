package event_bus

const NotificationRaisedType EventType = "notification.raised"

// NotificationRaised is published whenever the application wants to tell the
// user something outside the normal page content (a toast).
type NotificationRaised struct {
	Id          string
	Kind        string
	Title       string
	Description string
	Variant     string
	Key         string
}
