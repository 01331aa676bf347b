// Package email provides email sending functionality
package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"strings"
	"time"

	"github.com/aischeduler/scheduler-backend/internal/repository"
)

// Config holds email configuration
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
	UseTLS   bool
}

// Service handles email sending
type Service struct {
	config    *Config
	templates map[string]*template.Template
}

// NewService creates a new email service
func NewService(config *Config) *Service {
	s := &Service{
		config:    config,
		templates: make(map[string]*template.Template),
	}
	s.loadTemplates()
	return s
}

// Email represents an email message
type Email struct {
	To       []string
	CC       []string
	BCC      []string
	Subject  string
	Body     string
	HTMLBody string
}

type timeOptionLine struct {
	Window   string
	Duration int
}

type meetingCreatedData struct {
	Name        string
	Title       string
	Description string
	Options     []timeOptionLine
}

type timeSelectedData struct {
	Name     string
	Title    string
	Window   string
	Duration int
}

// loadTemplates loads all email templates
func (s *Service) loadTemplates() {

	// Meeting Created Template
	s.templates["meeting_created"] = template.Must(template.New("meeting_created").Parse(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #2563eb; color: white; padding: 24px; border-radius: 8px 8px 0 0; }
        .content { background: #f9fafb; padding: 24px; border-radius: 0 0 8px 8px; }
        .option { padding: 8px 0; border-bottom: 1px solid #e5e7eb; }
        .option:last-child { border-bottom: none; }
        .footer { margin-top: 24px; font-size: 12px; color: #6b7280; text-align: center; }
    </style>
</head>
<body>
<div class="container">
    <div class="header">
        <h2>📅 Meeting created: {{.Title}}</h2>
    </div>
    <div class="content">
        <p>Hi {{.Name}},</p>
        <p>Your meeting <strong>{{.Title}}</strong> has been created.</p>
        {{if .Description}}<p><strong>Description:</strong> {{.Description}}</p>{{end}}

        <h3>Proposed time options:</h3>
        {{if .Options}}
            {{range .Options}}
            <div class="option">{{.Window}} ({{.Duration}} mins)</div>
            {{end}}
        {{else}}
            <div class="option">(no valid time options were added)</div>
        {{end}}

        <p style="margin-top: 16px;">You can manage this meeting from your dashboard.</p>
    </div>
    <div class="footer">
        AI Event Scheduler
    </div>
</div>
</body>
</html>
`))

	// Time Selected Template
	s.templates["time_selected"] = template.Must(template.New("time_selected").Parse(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #10b981; color: white; padding: 24px; border-radius: 8px 8px 0 0; }
        .content { background: #f9fafb; padding: 24px; border-radius: 0 0 8px 8px; }
        .slot { background: white; border-radius: 8px; padding: 16px; margin: 16px 0; }
        .footer { margin-top: 24px; font-size: 12px; color: #6b7280; text-align: center; }
    </style>
</head>
<body>
<div class="container">
    <div class="header">
        <h2>✅ Time selected for: {{.Title}}</h2>
    </div>
    <div class="content">
        <p>Hi {{.Name}},</p>
        <p>You selected a final time for <strong>{{.Title}}</strong>:</p>

        <div class="slot">{{.Window}} ({{.Duration}} mins)</div>

        <p>This time is now marked as selected in your meeting details.</p>
    </div>
    <div class="footer">
        AI Event Scheduler
    </div>
</div>
</body>
</html>
`))
}

// Send delivers a message over SMTP. Callers treat it as fire-and-forget.
func (s *Service) Send(email *Email) error {
	if s.config.Host == "" {
		log.Println("Email not configured, skipping send")
		return nil
	}

	// Build message
	var msg bytes.Buffer

	// Headers
	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", s.config.FromName, s.config.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(email.To, ", ")))
	if len(email.CC) > 0 {
		msg.WriteString(fmt.Sprintf("Cc: %s\r\n", strings.Join(email.CC, ", ")))
	}
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", email.Subject))
	msg.WriteString("MIME-Version: 1.0\r\n")

	if email.HTMLBody != "" {
		msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
		msg.WriteString("\r\n")
		msg.WriteString(email.HTMLBody)
	} else {
		msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
		msg.WriteString("\r\n")
		msg.WriteString(email.Body)
	}

	// Build recipient list
	recipients := append(email.To, email.CC...)
	recipients = append(recipients, email.BCC...)

	// Create auth
	auth := smtp.PlainAuth("", s.config.User, s.config.Password, s.config.Host)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	if s.config.UseTLS {
		tlsConfig := &tls.Config{
			ServerName: s.config.Host,
		}

		conn, err := tls.Dial("tcp", addr, tlsConfig)
		if err != nil {
			return fmt.Errorf("TLS dial error: %w", err)
		}
		defer conn.Close()

		client, err := smtp.NewClient(conn, s.config.Host)
		if err != nil {
			return fmt.Errorf("SMTP client error: %w", err)
		}
		defer client.Close()

		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("auth error: %w", err)
		}

		if err = client.Mail(s.config.From); err != nil {
			return fmt.Errorf("mail error: %w", err)
		}

		for _, rcpt := range recipients {
			if err = client.Rcpt(rcpt); err != nil {
				return fmt.Errorf("rcpt error: %w", err)
			}
		}

		w, err := client.Data()
		if err != nil {
			return fmt.Errorf("data error: %w", err)
		}

		_, err = w.Write(msg.Bytes())
		if err != nil {
			return fmt.Errorf("write error: %w", err)
		}

		err = w.Close()
		if err != nil {
			return fmt.Errorf("close error: %w", err)
		}

		return client.Quit()
	}

	// Non-TLS
	return smtp.SendMail(addr, auth, s.config.From, recipients, msg.Bytes())
}

// SendWithTemplate sends an email using a template
func (s *Service) SendWithTemplate(to []string, subject, templateName string, data interface{}) error {
	tmpl, ok := s.templates[templateName]
	if !ok {
		return fmt.Errorf("template not found: %s", templateName)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}

	return s.Send(&Email{
		To:       to,
		Subject:  subject,
		HTMLBody: body.String(),
	})
}

func formatWindow(start, end time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	s := start.In(loc)
	e := end.In(loc)
	return fmt.Sprintf("%s to %s", s.Format("2006-01-02 15:04"), e.Format("15:04"))
}

// SendMeetingCreated notifies the organizer after meeting creation with the
// proposed options
func (s *Service) SendMeetingCreated(to, name string, meeting *repository.MeetingRequest, options []*repository.TimeOption, loc *time.Location) error {
	if to == "" {
		return nil
	}

	data := meetingCreatedData{
		Name:  name,
		Title: meeting.Title,
	}
	if meeting.Description != nil {
		data.Description = *meeting.Description
	}
	for _, opt := range options {
		data.Options = append(data.Options, timeOptionLine{
			Window:   formatWindow(opt.StartTime, opt.EndTime, loc),
			Duration: opt.DurationMinutes(),
		})
	}

	subject := fmt.Sprintf("[AI Event Scheduler] Meeting created: %s", meeting.Title)
	return s.SendWithTemplate([]string{to}, subject, "meeting_created", data)
}

// SendTimeSelected notifies the organizer after selecting the final time
func (s *Service) SendTimeSelected(to, name string, meeting *repository.MeetingRequest, selected *repository.TimeOption, loc *time.Location) error {
	if to == "" {
		return nil
	}

	data := timeSelectedData{
		Name:     name,
		Title:    meeting.Title,
		Window:   formatWindow(selected.StartTime, selected.EndTime, loc),
		Duration: selected.DurationMinutes(),
	}

	subject := fmt.Sprintf("[AI Event Scheduler] Time selected for: %s", meeting.Title)
	return s.SendWithTemplate([]string{to}, subject, "time_selected", data)
}
