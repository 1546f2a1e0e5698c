package notification

import (
	"fmt"
	"time"

	"event_backend/internal/platform/mailer"
)

const signature = "Best regards,\nEvent Management Team"

func welcomeMessage(email, firstName string) mailer.Message {
	return mailer.Message{
		To:      email,
		Subject: "Welcome to Event Management System!",
		Text: fmt.Sprintf("Hi %s,\n\n"+
			"Welcome to our Event Management System!\n"+
			"You can now browse and register for various events.\n\n%s", firstName, signature),
	}
}

func confirmationMessage(email, firstName, eventTitle string) mailer.Message {
	return mailer.Message{
		To:      email,
		Subject: "Event Registration Confirmation",
		Text: fmt.Sprintf("Hi %s,\n\n"+
			"Thank you for registering for: %s\n"+
			"Your registration is confirmed.\n"+
			"We will send you a reminder before the event.\n\n%s", firstName, eventTitle, signature),
	}
}

func reminderMessage(email, firstName, eventTitle string, eventDate time.Time) mailer.Message {
	return mailer.Message{
		To:      email,
		Subject: "Reminder: " + eventTitle,
		Text: fmt.Sprintf("Hi %s,\n\n"+
			"This is a reminder about the upcoming event:\n"+
			"Event: %s\n"+
			"Date: %s\n"+
			"Please make sure to attend!\n\n%s", firstName, eventTitle, eventDate.UTC().Format("Mon, 02 Jan 2006 15:04 MST"), signature),
	}
}
