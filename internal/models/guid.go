package models

import (
	"database/sql/driver"
	"fmt"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// GUID is a portable UUID column. It maps to a native uuid column on
// PostgreSQL and to char(36) on stores without UUID support, while the
// external representation is always the canonical 36-character string.
type GUID uuid.UUID

func NewGUID() GUID {
	return GUID(uuid.Must(uuid.NewV4()))
}

// GUIDFromString parses a canonical UUID string.
func GUIDFromString(s string) (GUID, error) {
	u, err := uuid.FromString(s)
	if err != nil {
		return GUID{}, fmt.Errorf("invalid guid %q: %w", s, err)
	}
	return GUID(u), nil
}

func (g GUID) String() string {
	return uuid.UUID(g).String()
}

func (g GUID) IsNil() bool {
	return uuid.UUID(g) == uuid.Nil
}

func (g GUID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + g.String() + `"`), nil
}

func (g *GUID) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("guid must be a JSON string")
	}
	parsed, err := GUIDFromString(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// Scan binds the stored representation back to the UUID value type.
// Accepts text (char(36)), byte slices, and raw 16-byte values.
func (g *GUID) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*g = GUID{}
		return nil
	case string:
		parsed, err := GUIDFromString(v)
		if err != nil {
			return err
		}
		*g = parsed
		return nil
	case []byte:
		if len(v) == uuid.Size {
			var u uuid.UUID
			copy(u[:], v)
			*g = GUID(u)
			return nil
		}
		parsed, err := GUIDFromString(string(v))
		if err != nil {
			return err
		}
		*g = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into GUID", value)
	}
}

// Value serializes to the canonical string, which both the native uuid
// column and the char(36) fallback accept.
func (g GUID) Value() (driver.Value, error) {
	return g.String(), nil
}

func (GUID) GormDataType() string {
	return "guid"
}

func (GUID) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "uuid"
	}
	return "char(36)"
}
