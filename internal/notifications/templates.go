package notifications

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/rentfleet/rentfleet-backend/pkg/db/models"
	"github.com/rentfleet/rentfleet-backend/pkg/enums"
)

// Message is a rendered notification. HTML is optional; delivery falls back
// to the plain body when no rich template exists for the kind.
type Message struct {
	Subject string
	Plain   string
	HTML    string
}

var subjects = map[enums.NotificationKind]string{
	enums.NotificationGroupCreated:       "Your booking request %s was received",
	enums.NotificationGroupStatusChanged: "Your booking %s is now %s",
	enums.NotificationReservationEdited:  "A reservation in booking %s was updated",
	enums.NotificationVehicleAdded:       "A vehicle was added to booking %s",
	enums.NotificationVehicleRemoved:     "A vehicle was removed from booking %s",
}

var richTemplates = map[enums.NotificationKind]*template.Template{
	enums.NotificationGroupCreated: template.Must(template.New("group_created").Parse(
		`<p>Thanks! We received your booking request <strong>{{.Reference}}</strong>.</p>` +
			`<p>It covers {{.MemberCount}} vehicle(s) and is waiting for review.</p>`)),
	enums.NotificationGroupStatusChanged: template.Must(template.New("group_status_changed").Parse(
		`<p>Your booking <strong>{{.Reference}}</strong> is now <strong>{{.Status}}</strong>.</p>`)),
}

type templateData struct {
	Reference   string
	Status      string
	MemberCount int
}

func render(kind enums.NotificationKind, group *models.ReservationGroup) (Message, error) {
	subjectFormat, ok := subjects[kind]
	if !ok {
		return Message{}, fmt.Errorf("no template for notification kind %q", kind)
	}

	data := templateData{
		Reference:   group.Reference,
		Status:      group.Status.String(),
		MemberCount: len(group.Reservations),
	}

	var subject string
	if kind == enums.NotificationGroupStatusChanged {
		subject = fmt.Sprintf(subjectFormat, data.Reference, data.Status)
	} else {
		subject = fmt.Sprintf(subjectFormat, data.Reference)
	}

	msg := Message{
		Subject: subject,
		Plain:   plainBody(kind, data),
	}
	if tmpl, ok := richTemplates[kind]; ok {
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err == nil {
			msg.HTML = buf.String()
		}
	}
	return msg, nil
}

func plainBody(kind enums.NotificationKind, data templateData) string {
	switch kind {
	case enums.NotificationGroupCreated:
		return fmt.Sprintf(
			"Thanks! We received your booking request %s covering %d vehicle(s). It is waiting for review.",
			data.Reference, data.MemberCount)
	case enums.NotificationGroupStatusChanged:
		return fmt.Sprintf("Your booking %s is now %s.", data.Reference, data.Status)
	case enums.NotificationReservationEdited:
		return fmt.Sprintf("A reservation in your booking %s was updated. The total may have changed.", data.Reference)
	case enums.NotificationVehicleAdded:
		return fmt.Sprintf("A vehicle was added to your booking %s. The total may have changed.", data.Reference)
	case enums.NotificationVehicleRemoved:
		return fmt.Sprintf("A vehicle was removed from your booking %s. The total may have changed.", data.Reference)
	default:
		return ""
	}
}
