// Package decoder turns raw .dem replay files into combat log entries and
// periodic world-state snapshots. The rest of the pipeline only depends on
// the Decoder interface, never on the replay format itself.
package decoder

import "github.com/mfriera/go-dota-fights/internal/model"

// Decoder extracts the raw material for classification from a replay file.
type Decoder interface {
	// DecodeCombatLog returns every combat log entry in the replay, in
	// encounter order, with the tick it was observed at.
	DecodeCombatLog(path string) ([]model.CombatLogEntry, error)

	// DecodeSnapshots returns periodic world-state samples: game time
	// breakpoints plus hero positions and player stats.
	DecodeSnapshots(path string) ([]model.EntitySnapshot, error)
}
