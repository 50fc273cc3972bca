package geocode

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
)

// Correction is a manually pinned resolution: [lat, lon, "address"] in the
// file. Corrections are the source of truth for their key, never a cache
// miss, so they are never written back to the cache.
type Correction struct {
	Lat     float64
	Lon     float64
	Address string
}

// UnmarshalJSON accepts the [lat, lon, "address"] triple format.
func (c *Correction) UnmarshalJSON(data []byte) error {
	var triple []any
	if err := json.Unmarshal(data, &triple); err != nil {
		return err
	}
	if len(triple) != 3 {
		return fmt.Errorf("correction: want [lat, lon, address], got %d elements", len(triple))
	}
	lat, ok1 := triple[0].(float64)
	lon, ok2 := triple[1].(float64)
	addr, ok3 := triple[2].(string)
	if !ok1 || !ok2 || !ok3 {
		return fmt.Errorf("correction: malformed [lat, lon, address] triple")
	}
	c.Lat, c.Lon, c.Address = lat, lon, addr
	return nil
}

// Corrections maps exact location strings to pinned coordinates.
type Corrections map[string]Correction

type locationCorrectionsFile struct {
	Corrections struct {
		Corrections Corrections `json:"corrections"`
	} `json:"corrections"`
}

// LoadLocationCorrections reads the nested corrections document. A missing
// or unreadable file means no corrections.
func LoadLocationCorrections(path string, log *slog.Logger) Corrections {
	data, err := os.ReadFile(path)
	if err != nil {
		return Corrections{}
	}
	var f locationCorrectionsFile
	if err := json.Unmarshal(data, &f); err != nil {
		log.Warn("cannot parse location corrections", "path", path, "error", err)
		return Corrections{}
	}
	if f.Corrections.Corrections == nil {
		return Corrections{}
	}
	return f.Corrections.Corrections
}
