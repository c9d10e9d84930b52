package reporting

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_MarshalPreservesFieldOrder(t *testing.T) {
	record := Record{
		Fields: []string{"date_month", "region", "total_revenue"},
		Values: map[string]any{
			"total_revenue": 1500.5,
			"date_month":    "2024-01",
			"region":        "east",
		},
	}

	data, err := json.Marshal(record)
	require.NoError(t, err)
	assert.Equal(t, `{"date_month":"2024-01","region":"east","total_revenue":1500.5}`, string(data))
}

func TestRecord_MarshalNullAndMissing(t *testing.T) {
	record := Record{
		Fields: []string{"a", "b"},
		Values: map[string]any{"a": nil},
	}

	data, err := json.Marshal(record)
	require.NoError(t, err)
	assert.Equal(t, `{"a":null,"b":null}`, string(data))
}
