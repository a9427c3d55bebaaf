package database

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeGraphValuesFlattensIntegerVariants(t *testing.T) {
	row := NormalizeGraphValues(map[string]any{
		"a": int(1),
		"b": int8(2),
		"c": int16(3),
		"d": int32(4),
		"e": uint(5),
		"f": uint8(6),
		"g": uint16(7),
		"h": uint32(8),
		"i": uint64(9),
	})

	for key, want := range map[string]int64{
		"a": 1, "b": 2, "c": 3, "d": 4, "e": 5, "f": 6, "g": 7, "h": 8, "i": 9,
	} {
		require.IsType(t, int64(0), row[key], "clé %s", key)
		require.Equal(t, want, row[key])
	}
}

func TestNormalizeGraphValuesLeavesOtherTypesAlone(t *testing.T) {
	row := NormalizeGraphValues(map[string]any{
		"name":   "Casque",
		"price":  59.99,
		"active": true,
		"qty":    int64(3),
		"none":   nil,
	})

	require.Equal(t, "Casque", row["name"])
	require.Equal(t, 59.99, row["price"])
	require.Equal(t, true, row["active"])
	require.Equal(t, int64(3), row["qty"])
	require.Nil(t, row["none"])
}

func TestCloseGraphWithoutDriver(t *testing.T) {
	require.NotPanics(t, CloseGraph)
}

func TestNormalizeGraphValuesRecursesIntoNestedFields(t *testing.T) {
	row := NormalizeGraphValues(map[string]any{
		"product": map[string]any{
			"id":     int32(7),
			"rating": map[string]any{"count": uint16(12)},
		},
		"quantities": []any{int(1), int8(2), "trois"},
	})

	product := row["product"].(map[string]any)
	require.Equal(t, int64(7), product["id"])
	require.Equal(t, int64(12), product["rating"].(map[string]any)["count"])

	quantities := row["quantities"].([]any)
	require.Equal(t, int64(1), quantities[0])
	require.Equal(t, int64(2), quantities[1])
	require.Equal(t, "trois", quantities[2])
}
