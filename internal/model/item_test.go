package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemDecodesAnyIDAndTimestamp(t *testing.T) {
	cases := []struct {
		name string
		body string
		id   ID
		ts   Timestamp
	}{
		{"numeric id", `{"id":42,"created_at":"2024-01-01T00:00:00Z"}`, "42", "2024-01-01T00:00:00Z"},
		{"string id", `{"id":"64b1f0a2","created_at":"2024-01-01"}`, "64b1f0a2", "2024-01-01"},
		{"uuid id", `{"id":"6f1c2b3e-0000-4000-8000-000000000000"}`, "6f1c2b3e-0000-4000-8000-000000000000", ""},
		{"epoch timestamp", `{"id":1,"created_at":1704067200000}`, "1", "1704067200000"},
		{"null fields", `{"id":null,"created_at":null}`, "", ""},
		{"object timestamp", `{"id":1,"created_at":{"$date":1}}`, "1", `{"$date":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var it Item
			require.NoError(t, json.Unmarshal([]byte(tc.body), &it))
			assert.Equal(t, tc.id, it.ID)
			assert.Equal(t, tc.ts, it.CreatedAt)
		})
	}
}

func TestIDRejectsNonScalar(t *testing.T) {
	var it Item
	assert.Error(t, json.Unmarshal([]byte(`{"id":{"a":1}}`), &it))
}

func TestIDEncoding(t *testing.T) {
	b, err := json.Marshal(Item{ID: IntID(7), Name: "Book"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"name":"Book","description":"","created_at":""}`, string(b))

	b, err = json.Marshal(Item{ID: "64b1f0"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"64b1f0","name":"","description":"","created_at":""}`, string(b))

	n, err := IntID(7).Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}
