package notify

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"preprint/internal/octoprint"
)

type mockNotifier struct {
	name   string
	sendFn func(n Notification) error
}

func (m *mockNotifier) Send(n Notification) error {
	if m.sendFn != nil {
		return m.sendFn(n)
	}
	return nil
}

func (m *mockNotifier) Name() string { return m.name }

func TestMultiNotifierTriesEveryNotifier(t *testing.T) {
	var called []string
	n1 := &mockNotifier{name: "a", sendFn: func(Notification) error {
		called = append(called, "a")
		return errors.New("offline")
	}}
	n2 := &mockNotifier{name: "b", sendFn: func(Notification) error {
		called = append(called, "b")
		return nil
	}}

	err := NewMultiNotifier(n1, n2).Send(Notification{Title: "t", Message: "m"})
	if err == nil || err.Error() != "a: offline" {
		t.Errorf("err = %v, want a: offline", err)
	}
	if len(called) != 2 {
		t.Errorf("called = %v, want both", called)
	}
}

func TestMultiNotifierName(t *testing.T) {
	m := NewMultiNotifier(&mockNotifier{name: "x"}, &mockNotifier{name: "y"})
	if got := m.Name(); got != "multi(x,y)" {
		t.Errorf("Name() = %q", got)
	}
}

func TestParseProfileChange(t *testing.T) {
	tests := []struct {
		name   string
		ev     octoprint.Event
		want   ProfileChange
		wantOK bool
	}{
		{
			name:   "imported",
			ev:     octoprint.Event{Type: octoprint.EventSlicingProfilesChanged, Payload: json.RawMessage(`{"action":"imported","key":"pla"}`)},
			want:   ProfileChange{Action: "imported", Key: "pla"},
			wantOK: true,
		},
		{
			name:   "no payload",
			ev:     octoprint.Event{Type: octoprint.EventSlicingProfilesChanged},
			wantOK: true,
		},
		{
			name: "other event",
			ev:   octoprint.Event{Type: "PrintStarted"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseProfileChange(tt.ev)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseProfileChange() = %+v, %v; want %+v, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestFromProfileChange(t *testing.T) {
	tests := map[string]string{
		"imported": "Profile pla was imported",
		"deleted":  "Profile pla was removed",
		"updated":  "Profile pla was updated",
		"":         "The profile list was modified",
	}
	for action, want := range tests {
		n := FromProfileChange(ProfileChange{Action: action, Key: "pla"})
		if n.Message != want {
			t.Errorf("action %q: message = %q, want %q", action, n.Message, want)
		}
	}
}

func TestWebhookFormats(t *testing.T) {
	tests := []struct {
		format string
		tmpl   string
		key    string
		want   string
	}{
		{format: "slack", key: "text", want: "Slicing profiles changed: Profile pla was imported"},
		{format: "discord", key: "content", want: "Slicing profiles changed: Profile pla was imported"},
		{format: "custom", tmpl: `{"msg": {{printf "%q" .Message}}}`, key: "msg", want: "Profile pla was imported"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var received map[string]any
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				json.NewDecoder(r.Body).Decode(&received)
				w.WriteHeader(http.StatusOK)
			}))
			defer srv.Close()

			wh := NewWebhookNotifier(srv.URL, tt.format, tt.tmpl)
			n := FromProfileChange(ProfileChange{Action: "imported", Key: "pla"})
			if err := wh.Send(n); err != nil {
				t.Fatalf("Send: %v", err)
			}
			if received[tt.key] != tt.want {
				t.Errorf("payload[%s] = %v, want %q", tt.key, received[tt.key], tt.want)
			}
		})
	}
}

func TestWebhookCustomRequiresTemplate(t *testing.T) {
	wh := NewWebhookNotifier("http://127.0.0.1:0", "custom", "")
	if err := wh.Send(Notification{Title: "t", Message: "m"}); err == nil {
		t.Error("expected error for custom format without template")
	}
}

func TestWebhookErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if err := NewWebhookNotifier(srv.URL, "slack", "").Send(Notification{}); err == nil {
		t.Error("expected error for 502 response")
	}
}
