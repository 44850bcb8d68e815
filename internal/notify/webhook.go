package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"text/template"
	"time"
)

// WebhookNotifier posts notifications to a chat webhook.
type WebhookNotifier struct {
	URL    string // webhook endpoint
	Format string // "slack", "discord" or "custom"
	// Template is the JSON body for the custom format. It can use
	// {{.Title}}, {{.Message}} and {{.Text}}.
	Template string
	client   *http.Client
}

func NewWebhookNotifier(url, format, tmpl string) *WebhookNotifier {
	return &WebhookNotifier{
		URL:      url,
		Format:   format,
		Template: tmpl,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *WebhookNotifier) payload(n Notification) (any, error) {
	text := fmt.Sprintf("%s: %s", n.Title, n.Message)

	switch w.Format {
	case "discord":
		return map[string]string{"content": text}, nil
	case "custom":
		if w.Template == "" {
			return nil, fmt.Errorf("webhook custom format: missing template")
		}
		tmpl, err := template.New("webhook").Parse(w.Template)
		if err != nil {
			return nil, fmt.Errorf("webhook custom template parse: %w", err)
		}
		var buf bytes.Buffer
		err = tmpl.Execute(&buf, map[string]string{
			"Title":   n.Title,
			"Message": n.Message,
			"Text":    text,
		})
		if err != nil {
			return nil, fmt.Errorf("webhook custom template execute: %w", err)
		}
		var payload any
		if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
			return nil, fmt.Errorf("webhook custom template produced invalid JSON: %w", err)
		}
		return payload, nil
	default:
		return map[string]string{"text": text}, nil
	}
}

// Send posts the notification.
func (w *WebhookNotifier) Send(n Notification) error {
	payload, err := w.payload(n)
	if err != nil {
		return err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("webhook marshal: %w", err)
	}

	resp, err := w.client.Post(w.URL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func (w *WebhookNotifier) Name() string { return "webhook" }
