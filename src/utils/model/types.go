package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// JSONB stores raw JSON in a jsonb column
type JSONB json.RawMessage

func (self JSONB) Value() (driver.Value, error) {
	if len(self) == 0 {
		return nil, nil
	}
	return string(self), nil
}

func (self *JSONB) Scan(value interface{}) error {
	if value == nil {
		*self = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		*self = append((*self)[0:0], v...)
	case string:
		*self = JSONB(v)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", value)
	}
	return nil
}

func (self JSONB) MarshalJSON() ([]byte, error) {
	if len(self) == 0 {
		return []byte("null"), nil
	}
	return self, nil
}

func (self *JSONB) UnmarshalJSON(data []byte) error {
	if self == nil {
		return errors.New("nil jsonb")
	}
	*self = append((*self)[0:0], data...)
	return nil
}
