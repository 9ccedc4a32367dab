// Package catalog embeds the built-in list of common Kali Linux tools used to
// seed a fresh registry.
package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/Dleifnesor/PAW/internal/registry"
	"github.com/Dleifnesor/PAW/internal/store"
)

//go:embed kali.json
var kaliJSON []byte

// Entries decodes the built-in catalogue in its declared order.
func Entries() ([]registry.ToolEntry, error) {
	var entries []registry.ToolEntry
	if err := json.Unmarshal(kaliJSON, &entries); err != nil {
		return nil, fmt.Errorf("decode built-in catalogue: %w", err)
	}
	return entries, nil
}

// Registry returns a fresh registry holding the built-in catalogue.
func Registry() (*registry.Registry, error) {
	entries, err := Entries()
	if err != nil {
		return nil, err
	}
	return registry.FromEntries(entries)
}

// Open loads the registry from st. When seed is set and no registry file exists
// yet, the built-in catalogue is written first.
func Open(ctx context.Context, st *store.FileStore, seed bool) (*registry.Registry, error) {
	if seed && !st.Exists() {
		entries, err := Entries()
		if err != nil {
			return nil, err
		}
		err = st.Update(ctx, func(reg *registry.Registry) error {
			if reg.Len() == 0 {
				reg.ImportBatch(entries, registry.ImportOptions{})
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("seed registry: %w", err)
		}
	}
	return st.Load(ctx)
}
