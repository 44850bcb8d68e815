package commands

import (
	"fmt"
	"os"

	"preprint/internal/config"
	"preprint/internal/output"
	"preprint/internal/ui"
)

func configKeys() []string {
	return config.Keys()
}

// RunConfigGet prints one setting, or all of them when no key is given.
// apiKey is masked in the full listing.
func RunConfigGet(args []string) {
	cfg, err := config.LoadConfig()
	if err != nil {
		output.PrintError(err)
	}

	if len(args) == 0 {
		values := make(map[string]string, len(config.Keys()))
		for _, k := range config.Keys() {
			v, _ := cfg.Get(k)
			if k == "apiKey" {
				v = maskSecret(v)
			}
			values[k] = v
		}
		output.Print(values, func() {
			fmt.Println("Current configuration:")
			for _, k := range config.Keys() {
				v := values[k]
				if v == "" {
					v = "(unset)"
				}
				fmt.Printf("  %s: %s\n", k, v)
			}
			fmt.Println()
			ui.ShowInfo("Config file: %s", config.ConfigPath)
		})
		return
	}

	key := args[0]
	v, err := cfg.Get(key)
	if err != nil {
		output.PrintError(err)
	}
	output.Print(map[string]string{key: v}, func() {
		fmt.Printf("%s: %s\n", key, v)
	})
}

// RunConfigSet updates a setting and saves the config file.
func RunConfigSet(key, value string) {
	var setErr error
	err := config.UpdateConfig(func(cfg *config.Config) error {
		setErr = cfg.Set(key, value)
		return setErr
	})
	if setErr != nil {
		if !output.JSONMode {
			ui.ShowError("Invalid setting", setErr)
			os.Exit(1)
		}
		output.PrintError(setErr)
	}
	if err != nil {
		output.PrintError(fmt.Errorf("save config: %w", err))
	}
	output.Print(map[string]string{key: value}, func() {
		ui.ShowSuccess("%s set to: %s", key, value)
	})
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		if s == "" {
			return ""
		}
		return "****"
	}
	return "****" + s[len(s)-4:]
}
