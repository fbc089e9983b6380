package placeholder

import (
	"encoding/json"
	"fmt"
	"os"

	"mod-translator/internal/record"

	"github.com/rs/zerolog/log"
)

// ProtectTable protects the text column of every row, writing the result
// into the protected_text column (added if absent). Returns the number
// of rows that actually contained placeholders.
func (m *Manager) ProtectTable(t *record.Table) int {
	t.EnsureColumn(record.ColProtectedText)

	protected := 0
	for i := range t.Rows {
		row := &t.Rows[i]
		if row.Text == "" {
			continue
		}
		text, values := m.Protect(row.Text, row.Key)
		row.ProtectedText = text
		if len(values) > 0 {
			protected++
			log.Debug().Str("key", row.Key).Int("placeholders", len(values)).Msg("Protected row")
		}
	}

	log.Info().Int("protected", protected).Int("rows", len(t.Rows)).Msg("Table protection complete")
	return protected
}

// RestoreTable restores the translated column of every row in place.
// Rows without a translation, or without a recorded protection pass,
// are left untouched.
func (m *Manager) RestoreTable(t *record.Table) int {
	restored := 0
	for i := range t.Rows {
		row := &t.Rows[i]
		if row.Translated == "" {
			continue
		}
		if out := m.Restore(row.Translated, row.Key); out != row.Translated {
			row.Translated = out
			restored++
		}
	}

	log.Info().Int("restored", restored).Int("rows", len(t.Rows)).Msg("Table restoration complete")
	return restored
}

// SaveMaps persists the placeholder maps as a JSON sidecar so a later
// process run can restore against them.
func (m *Manager) SaveMaps(path string) error {
	data, err := json.MarshalIndent(m.maps, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal placeholder maps: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write placeholder maps: %w", err)
	}
	return nil
}

// LoadMaps loads placeholder maps saved by a previous protection pass,
// replacing any maps held in memory.
func (m *Manager) LoadMaps(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read placeholder maps: %w", err)
	}
	maps := make(map[string]map[string]string)
	if err := json.Unmarshal(data, &maps); err != nil {
		return fmt.Errorf("parse placeholder maps %s: %w", path, err)
	}
	m.maps = maps
	return nil
}
