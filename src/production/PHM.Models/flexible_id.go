package phmmodels

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexibleID is an entity reference in a request body. It accepts a JSON
// number or a string. Null, 0 and "" leave it absent. A value that is
// present but not a positive integer keeps ID at 0, which matches no row.
type FlexibleID struct {
	ID      int64
	Present bool
}

func NewFlexibleID(id int64) FlexibleID {
	return FlexibleID{ID: id, Present: id != 0}
}

func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	*f = FlexibleID{}
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	} else {
		var num json.Number
		if err := json.Unmarshal(data, &num); err != nil {
			return fmt.Errorf("plant_id must be a number or string: %w", err)
		}
		raw = num.String()
	}

	if raw == "" || raw == "0" {
		return nil
	}
	f.Present = true
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
		f.ID = id
	}
	return nil
}

func (f FlexibleID) MarshalJSON() ([]byte, error) {
	if !f.Present {
		return []byte("null"), nil
	}
	return json.Marshal(f.ID)
}
