package email

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/aischeduler/scheduler-backend/internal/repository"
)

func testMeeting() (*repository.MeetingRequest, []*repository.TimeOption) {
	desc := "Walk through the draft"
	meeting := &repository.MeetingRequest{
		Title:       "Planning sync",
		Description: &desc,
	}
	options := []*repository.TimeOption{
		{
			StartTime: time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2026, 9, 10, 10, 0, 0, 0, time.UTC),
		},
		{
			StartTime: time.Date(2026, 9, 11, 14, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2026, 9, 11, 14, 30, 0, 0, time.UTC),
		},
	}
	return meeting, options
}

func renderTemplate(t *testing.T, s *Service, name string, data interface{}) string {
	t.Helper()
	tmpl, ok := s.templates[name]
	if !ok {
		t.Fatalf("template %q not loaded", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		t.Fatalf("execute %q: %v", name, err)
	}
	return buf.String()
}

func TestMeetingCreatedTemplate(t *testing.T) {
	s := NewService(&Config{})
	meeting, options := testMeeting()

	data := meetingCreatedData{
		Name:        "Demo",
		Title:       meeting.Title,
		Description: *meeting.Description,
	}
	for _, opt := range options {
		data.Options = append(data.Options, timeOptionLine{
			Window:   formatWindow(opt.StartTime, opt.EndTime, time.UTC),
			Duration: opt.DurationMinutes(),
		})
	}

	body := renderTemplate(t, s, "meeting_created", data)
	if !strings.Contains(body, "Planning sync") {
		t.Error("title missing from body")
	}
	if !strings.Contains(body, "2026-09-10 09:00 to 10:00 (60 mins)") {
		t.Errorf("first option not rendered, body:\n%s", body)
	}
	if !strings.Contains(body, "(30 mins)") {
		t.Error("half-hour option duration missing")
	}
}

func TestMeetingCreatedTemplateEmptyOptions(t *testing.T) {
	s := NewService(&Config{})

	body := renderTemplate(t, s, "meeting_created", meetingCreatedData{Name: "Demo", Title: "Planning"})
	if !strings.Contains(body, "(no valid time options were added)") {
		t.Error("empty-options state not rendered")
	}
}

func TestTimeSelectedTemplate(t *testing.T) {
	s := NewService(&Config{})

	body := renderTemplate(t, s, "time_selected", timeSelectedData{
		Name:     "Demo",
		Title:    "Planning sync",
		Window:   "2026-09-10 09:00 to 10:00",
		Duration: 60,
	})
	if !strings.Contains(body, "Time selected for: Planning sync") {
		t.Error("header missing")
	}
	if !strings.Contains(body, "2026-09-10 09:00 to 10:00 (60 mins)") {
		t.Error("selected window missing")
	}
}

func TestFormatWindowUsesLocation(t *testing.T) {
	start := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	loc := time.FixedZone("UTC+3", 3*3600)
	got := formatWindow(start, end, loc)
	if got != "2026-09-10 12:00 to 13:00" {
		t.Errorf("got %q", got)
	}
	if formatWindow(start, end, nil) != "2026-09-10 09:00 to 10:00" {
		t.Error("nil location must default to UTC")
	}
}

func TestSendSkipsWhenUnconfigured(t *testing.T) {
	s := NewService(&Config{})
	meeting, options := testMeeting()

	if err := s.SendMeetingCreated("demo@ai-scheduler.app", "Demo", meeting, options, time.UTC); err != nil {
		t.Errorf("unconfigured send should be a no-op, got %v", err)
	}
	if err := s.SendTimeSelected("", "Demo", meeting, options[0], time.UTC); err != nil {
		t.Errorf("empty recipient should be a no-op, got %v", err)
	}
}
