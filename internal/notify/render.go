package notify

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"text/template"
)

// Message is a rendered email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

type templateSet struct {
	subject string
	text    *template.Template
	html    *htmltemplate.Template
}

func newTemplateSet(subject, body string) templateSet {
	return templateSet{
		subject: subject,
		text:    template.Must(template.New("text").Option("missingkey=zero").Parse(body)),
		html:    htmltemplate.Must(htmltemplate.New("html").Option("missingkey=zero").Parse("<p>" + body + "</p>")),
	}
}

var templates = map[Kind]templateSet{
	KindInvitation: newTemplateSet("You are invited to the club",
		`You have been invited to join as {{.role}}. Accept the invitation at {{.app_url}}/invitations/accept?token={{.token}} before {{.expires_at}}.`),
	KindWorkshopCancelled: newTemplateSet("Workshop cancelled",
		`The workshop "{{.workshop}}" on {{.starts_at}} was cancelled: {{.reason}}. {{if .refund}}A refund has been requested for you.{{end}}`),
	KindRefundProcessed: newTemplateSet("Your refund was processed",
		`Your refund of {{.amount}} {{.currency}} for "{{.workshop}}" was processed.`),
	KindRegistrationConfirmed: newTemplateSet("Registration confirmed",
		`You are registered for "{{.workshop}}" on {{.starts_at}}. Your check-in code is available at {{.app_url}}/registrations/{{.registration_id}}.`),
}

// Render fills the template of job.Kind. appURL is exposed to every template as app_url.
func Render(job Job, appURL string) (Message, error) {
	set, ok := templates[job.Kind]
	if !ok {
		return Message{}, fmt.Errorf("unknown notification kind %q", job.Kind)
	}
	if job.To == "" {
		return Message{}, fmt.Errorf("%s: missing recipient", job.Kind)
	}

	data := make(map[string]string, len(job.Data)+1)
	for k, v := range job.Data {
		data[k] = v
	}
	data["app_url"] = appURL

	var text, html bytes.Buffer
	if err := set.text.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("render %s: %w", job.Kind, err)
	}
	if err := set.html.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("render %s: %w", job.Kind, err)
	}
	return Message{To: job.To, Subject: set.subject, Text: text.String(), HTML: html.String()}, nil
}
