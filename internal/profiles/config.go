package profiles

import (
	"io"
	"log"

	"preprint/internal/config"
	"preprint/internal/octoprint"
)

// ConfigSettings reads the engine path from the config file on each call, so
// edits made elsewhere are picked up without a restart.
type ConfigSettings struct{}

func (ConfigSettings) EnginePath() string { return config.GetEnginePath() }

// NewLogger returns a logger writing to w when debug logging is enabled and
// discarding everything otherwise.
func NewLogger(cfg *config.Config, w io.Writer) *log.Logger {
	if cfg == nil || !cfg.DebugLogging {
		return log.New(io.Discard, "", 0)
	}
	return log.New(w, "", log.LstdFlags)
}

// NewClient builds a host API client from cfg.
func NewClient(cfg *config.Config, logger *log.Logger) *octoprint.Client {
	c := octoprint.NewClient(cfg.BaseURL, cfg.APIKey)
	c.Logger = logger
	return c
}
