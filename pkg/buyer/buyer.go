// Package buyer exposes buyer attributes through a key-value capability.
//
// Known keys: country_id (int), country_code, country_code3, name,
// shop_username, email, phone, address (strings) and data (free-form).
package buyer

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"
	"github.com/tournevent/fba/pkg/fulfillment"
)

// Record is associative access to buyer attributes. Get on an absent key
// returns nil.
type Record interface {
	Has(key string) bool
	Get(key string) any
	Set(key string, value any)
	Unset(key string)
}

// Map is a Record backed by a plain map.
type Map map[string]any

// Has reports whether key is set.
func (m Map) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// Get returns the value for key, or nil.
func (m Map) Get(key string) any {
	return m[key]
}

// Set stores value under key.
func (m Map) Set(key string, value any) {
	m[key] = value
}

// Unset removes key.
func (m Map) Unset(key string) {
	delete(m, key)
}

// LoadFile decodes a JSON buyer document.
func LoadFile(fs afero.Fs, path string) (Map, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read buyer document %s: %w", path, err)
	}
	m := Map{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to decode buyer document %s: %w", path, err)
	}
	return m, nil
}

// Normalize extracts the fixed set of buyer keys. Absent keys map to nil.
func Normalize(r Record) fulfillment.BuyerData {
	data := make(fulfillment.BuyerData, len(fulfillment.BuyerKeys))
	for _, k := range fulfillment.BuyerKeys {
		if r != nil && r.Has(k) {
			data[k] = r.Get(k)
		} else {
			data[k] = nil
		}
	}
	return data
}

var _ Record = Map(nil)
