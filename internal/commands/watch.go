package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"preprint/internal/config"
	"preprint/internal/notify"
	"preprint/internal/octoprint"
	"preprint/internal/output"
	"preprint/internal/profiles"
	"preprint/internal/ui"
)

const watchRetryDelay = 10 * time.Second

type watchOptions struct {
	desktop         bool
	webhookURL      string
	webhookFormat   string
	webhookTemplate string
	hook            string
}

func (o watchOptions) notifier() notify.Notifier {
	var ns []notify.Notifier
	if o.desktop {
		ns = append(ns, notify.NewDesktopNotifier())
	}
	if o.webhookURL != "" {
		ns = append(ns, notify.NewWebhookNotifier(o.webhookURL, o.webhookFormat, o.webhookTemplate))
	}
	if len(ns) == 0 {
		return nil
	}
	return notify.NewMultiNotifier(ns...)
}

type watchLine struct {
	ID     string `json:"id"`
	Time   string `json:"time"`
	Action string `json:"action"`
	Key    string `json:"key"`
}

// RunWatch follows the events socket until interrupted, reconnecting after
// watchRetryDelay when the connection drops.
func RunWatch(opts watchOptions) {
	cfg, err := config.LoadConfig()
	if err != nil {
		output.PrintError(err)
	}
	client := profiles.NewClient(cfg, profiles.NewLogger(cfg, os.Stderr))
	notifier := opts.notifier()
	var hook *notify.HookRunner
	if opts.hook != "" {
		hook = notify.NewHookRunner(opts.hook)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if !output.JSONMode {
		ui.ShowInfo("Watching profile changes on %s (Ctrl+C to stop)", client.BaseURL)
	}
	for {
		events, err := client.Events(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			fmt.Fprintf(os.Stderr, "[watch] %v, retrying in %s\n", err, watchRetryDelay)
		} else {
			for ev := range events {
				handleWatchEvent(ctx, client.BaseURL, ev, notifier, hook)
			}
			if ctx.Err() != nil {
				return
			}
			fmt.Fprintf(os.Stderr, "[watch] connection lost, retrying in %s\n", watchRetryDelay)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(watchRetryDelay):
		}
	}
}

func handleWatchEvent(ctx context.Context, host string, ev octoprint.Event, notifier notify.Notifier, hook *notify.HookRunner) {
	change, ok := notify.ParseProfileChange(ev)
	if !ok {
		return
	}
	now := time.Now()
	line := watchLine{ID: ev.ID, Time: now.Format(time.RFC3339), Action: change.Action, Key: change.Key}
	n := notify.FromProfileChange(change)

	output.PrintLine(line, func() {
		fmt.Printf("%s  %s\n", now.Format(profiles.DescriptionDateLayout), n.Message)
	})

	if notifier != nil {
		if err := notifier.Send(n); err != nil {
			fmt.Fprintf(os.Stderr, "[watch] notify: %v\n", err)
		}
	}
	if hook != nil {
		err := hook.Execute(ctx, notify.HookPayload{
			EventID:   ev.ID,
			Event:     ev.Type,
			Action:    change.Action,
			Key:       change.Key,
			Host:      host,
			Timestamp: line.Time,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "[watch] %v\n", err)
		}
	}
}
