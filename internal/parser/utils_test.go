package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeaderKey(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Accommodation Name":  "accommodationName",
		"accommodation_name":  "accommodation_name",
		"accommodationName":   "accommodationName",
		"  Total\nPilgrims  ": "totalPilgrims",
		"HOTEL":               "hotel",
		"Hotel":               "hotel",
		"Flight-No":           "flightNo",
		"CONTRACT NUMBER":     "contractNumber",
		"":                    "",
	}
	for in, want := range cases {
		assert.Equal(t, want, HeaderKey(in), "HeaderKey(%q)", in)
	}
}

func TestNormalizeColumnName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Group Name", NormalizeColumnName("  Group \r\n  Name\t"))
}

func TestContainsAny(t *testing.T) {
	t.Parallel()

	assert.True(t, ContainsAny("Arrivals 1447", []string{"arrival"}))
	assert.False(t, ContainsAny("Sheet1", []string{"arrival", "departure"}))
}
