package mailer

// Notification event types carried in EmailJob.Event.
const (
	EventProfileUpdated     = "profile_updated"
	EventPasswordChanged    = "password_changed"
	EventAvatarUpdated      = "avatar_updated"
	EventAccountDeactivated = "account_deactivated"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Subject/Text may be pre-rendered; otherwise the worker renders them from
// Event and Data.
type EmailJob struct {
	To      string         `json:"to"`
	Subject string         `json:"subject,omitempty"`
	Text    string         `json:"text,omitempty"`
	HTML    string         `json:"html,omitempty"`
	Event   string         `json:"event,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}
