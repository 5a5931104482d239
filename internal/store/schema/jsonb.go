package schema

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/BondarenkoVyacheslav/smartfin-sync/internal/domain"
)

// JSONMap stores an arbitrary JSON object in a jsonb column
type JSONMap map[string]any

// Value implements driver.Valuer
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner
func (m *JSONMap) Scan(src any) error {
	if src == nil {
		*m = nil
		return nil
	}
	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, m)
	case string:
		return json.Unmarshal([]byte(data), m)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", src)
	}
}

// VenueParamsColumn stores the typed venue parameters in a jsonb column
type VenueParamsColumn struct {
	domain.VenueParams
}

// Value implements driver.Valuer
func (p VenueParamsColumn) Value() (driver.Value, error) {
	return json.Marshal(p.VenueParams)
}

// Scan implements sql.Scanner
func (p *VenueParamsColumn) Scan(src any) error {
	if src == nil {
		p.VenueParams = domain.VenueParams{}
		return nil
	}
	switch data := src.(type) {
	case []byte:
		return json.Unmarshal(data, &p.VenueParams)
	case string:
		return json.Unmarshal([]byte(data), &p.VenueParams)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", src)
	}
}
