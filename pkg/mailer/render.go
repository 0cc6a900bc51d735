package mailer

import "fmt"

// Render fills in subject and text for a job that only names an event.
// Pre-rendered subjects/bodies are left alone.
func Render(job *EmailJob) {
	name := "there"
	if job.Data != nil {
		if v, ok := job.Data["Username"]; ok && fmt.Sprintf("%v", v) != "" {
			name = fmt.Sprintf("%v", v)
		}
	}

	subject := job.Subject
	text := job.Text
	switch job.Event {
	case EventProfileUpdated:
		if subject == "" {
			subject = "Your profile was updated"
		}
		if text == "" {
			text = fmt.Sprintf("Hi %s,\n\nYour account profile was just updated. If this wasn't you, please contact support.", name)
		}
	case EventPasswordChanged:
		if subject == "" {
			subject = "Your password was changed"
		}
		if text == "" {
			text = fmt.Sprintf("Hi %s,\n\nYour account password was just changed. If this wasn't you, please contact support immediately.", name)
		}
	case EventAvatarUpdated:
		if subject == "" {
			subject = "Your avatar was updated"
		}
		if text == "" {
			text = fmt.Sprintf("Hi %s,\n\nYour profile picture was just changed.", name)
		}
	case EventAccountDeactivated:
		if subject == "" {
			subject = "Your account was deactivated"
		}
		if text == "" {
			text = fmt.Sprintf("Hi %s,\n\nYour account has been deactivated as requested. Contact support if you change your mind.", name)
		}
	default:
		if subject == "" {
			subject = "Account notification"
		}
	}
	job.Subject = subject
	job.Text = text
}
