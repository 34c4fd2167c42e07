package flow

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	_ "embed"
)

// The persona is versioned configuration data, not request-construction
// code: it is loaded once at startup and injected into the Assembler so the
// context-assembly path can be unit tested without network calls.

//go:embed default_persona.txt
var defaultPersona string

// LoadPersona returns the persona system directive. An empty path selects
// the embedded default; otherwise the file contents are used.
func LoadPersona(path string) (string, error) {
	if path == "" {
		slog.Debug("flow.LoadPersona: using embedded default persona")
		return strings.TrimSpace(defaultPersona), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read persona file %s: %w", path, err)
	}
	persona := strings.TrimSpace(string(data))
	if persona == "" {
		return "", fmt.Errorf("persona file %s is empty", path)
	}
	slog.Info("flow.LoadPersona: loaded persona from file", "path", path, "length", len(persona))
	return persona, nil
}
