package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Item is the domain model for an entry in the remote collection.
// CreatedAt is kept as the server sent it; rendering decides how to read it.
type Item struct {
	ID          ID        `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   Timestamp `json:"created_at"`
}

// NewItem is the create request body.
type NewItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ID is the server's identifier, kept as text. JSON numbers and strings are
// both accepted.
type ID string

// IntID is the ID of an integer-keyed row.
func IntID(n int64) ID { return ID(strconv.FormatInt(n, 10)) }

// Int64 reads the id as a decimal integer.
func (id ID) Int64() (int64, error) { return strconv.ParseInt(string(id), 10, 64) }

func (id ID) String() string { return string(id) }

// MarshalJSON writes integer ids as numbers and everything else as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if _, err := id.Int64(); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*id = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("item id: %w", err)
		}
		*id = ID(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("item id: %w", err)
		}
		*id = ID(n.String())
	}
	return nil
}

// Timestamp is created_at as received. Strings are kept verbatim, numbers
// keep their literal text, and any other JSON value keeps its raw form so it
// renders as unreadable instead of failing the whole list.
type Timestamp string

func (ts Timestamp) String() string { return string(ts) }

func (ts *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*ts = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("created_at: %w", err)
		}
		*ts = Timestamp(s)
	default:
		*ts = Timestamp(b)
	}
	return nil
}
