package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestADPContainersAcceptsObjectAndList(t *testing.T) {
	tests := []struct {
		name string
		json string
		want int
	}{
		{"list", `{"adp":[{"title":"CISA ADP Vulnrichment"},{"title":"CVE Program Container"}]}`, 2},
		{"single object", `{"adp":{"title":"CISA ADP Vulnrichment"}}`, 1},
		{"null", `{"adp":null}`, 0},
		{"absent", `{}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Containers
			require.NoError(t, json.Unmarshal([]byte(tt.json), &c))
			assert.Len(t, c.ADP, tt.want)
			if tt.want > 0 {
				assert.Equal(t, "CISA ADP Vulnrichment", c.ADP[0].Title)
			}
		})
	}
}

func TestADPContainersRejectsScalar(t *testing.T) {
	var c Containers
	err := json.Unmarshal([]byte(`{"adp":"oops"}`), &c)
	assert.Error(t, err)
}

func TestFirstCVSSV31SkipsOtherFormats(t *testing.T) {
	metrics := []Metric{
		{Format: "CVSS"},
		{Format: "CVSS", CVSSV31: &CVSSV31{BaseScore: 7.5, BaseSeverity: "HIGH"}},
		{Format: "CVSS", CVSSV31: &CVSSV31{BaseScore: 9.8, BaseSeverity: "CRITICAL"}},
	}

	m := FirstCVSSV31(metrics)
	require.NotNil(t, m)
	assert.Equal(t, 7.5, m.BaseScore)
	assert.Nil(t, FirstCVSSV31(nil))
}

func TestProblemTypeText(t *testing.T) {
	assert.Equal(t, "CWE-79 Cross-site Scripting", ProblemTypeDescription{Description: "CWE-79 Cross-site Scripting"}.Text())
	assert.Equal(t, "legacy", ProblemTypeDescription{Value: "legacy"}.Text())
}

func TestParseCVETime(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-01-02T00:00:00Z", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"2024-02-20T18:19:48.371Z", time.Date(2024, 2, 20, 18, 19, 48, 371000000, time.UTC)},
		{"2024-02-20T18:19:48.371", time.Date(2024, 2, 20, 18, 19, 48, 371000000, time.UTC)},
		{"2024-02-20", time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseCVETime(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, tt.want.Equal(got), "%s: 期望 %v, 实际得到 %v", tt.in, tt.want, got)
	}

	_, err := ParseCVETime("yesterday")
	assert.Error(t, err)
}
