package ratings

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/zotprof/backend/internal/models"
	"github.com/zotprof/backend/internal/utils"
)

//go:embed professors.json
var defaultTable []byte

type tableEntry struct {
	Key     string                `json:"key"`
	Profile models.RatingsProfile `json:"profile"`
}

// StaticTable serves pre-collected profiles. Entries keep file order so a
// partial match is deterministic: the first entry containing the last name wins.
type StaticTable struct {
	entries []tableEntry
}

func NewStaticTable(data []byte) (*StaticTable, error) {
	var entries []tableEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse ratings table: %w", err)
	}
	for i := range entries {
		if entries[i].Key == "" {
			entries[i].Key = entries[i].Profile.FullName()
		}
		entries[i].Key = utils.NormalizeName(entries[i].Key)
		if entries[i].Profile.Source == "" {
			entries[i].Profile.Source = "static"
		}
	}
	return &StaticTable{entries: entries}, nil
}

// LoadStaticTable reads path, or the bundled table when path is empty.
func LoadStaticTable(path string) (*StaticTable, error) {
	if strings.TrimSpace(path) == "" {
		return NewStaticTable(defaultTable)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewStaticTable(data)
}

func (t *StaticTable) Len() int { return len(t.entries) }

func (t *StaticTable) Lookup(_ context.Context, name string) (*models.RatingsProfile, error) {
	key := utils.NormalizeName(name)
	if key == "" {
		return nil, nil
	}
	for i := range t.entries {
		if t.entries[i].Key == key {
			p := t.entries[i].Profile
			return &p, nil
		}
	}
	last := utils.LastName(name)
	if last == "" {
		return nil, nil
	}
	for i := range t.entries {
		if strings.Contains(t.entries[i].Key, last) {
			p := t.entries[i].Profile
			return &p, nil
		}
	}
	return nil, nil
}
