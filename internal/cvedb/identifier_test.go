package cvedb

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCVEID(t *testing.T) {
	tests := []struct {
		input  string
		year   string
		number string
		prefix string
	}{
		{"CVE-2025-36000", "2025", "36000", "36xxx"},
		{"CVE-2024-1234", "2024", "1234", "12xxx"},
		{"CVE-2021-44228", "2021", "44228", "44xxx"},
		{"CVE-1999-0001", "1999", "0001", "00xxx"},
		{"CVE-2024-12", "2024", "12", "12xxx"},
		{"CVE-2024-7", "2024", "7", "7xxx"},
		{"CVE-2023-1234567", "2023", "1234567", "12xxx"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			parsed, err := ParseCVEID(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.input, parsed.ID)
			assert.Equal(t, tt.year, parsed.Year)
			assert.Equal(t, tt.number, parsed.Number)
			assert.Equal(t, tt.prefix, parsed.Prefix)
		})
	}
}

func TestParseCVEIDRejectsMalformed(t *testing.T) {
	inputs := []string{
		"",
		"INVALID-CVE",
		"cve-2024-1234",
		"CVE-24-1234",
		"CVE-2024-",
		"CVE-2024",
		"CVE--1234",
		"CVE-2024-12a4",
		" CVE-2024-1234",
		"CVE-2024-1234 ",
		"see CVE-2024-1234 for details",
		"CVE-20245-1234",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := ParseCVEID(input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidFormat))

			var formatErr *FormatError
			require.ErrorAs(t, err, &formatErr)
			assert.Equal(t, input, formatErr.Input)
			assert.Contains(t, err.Error(), "Invalid CVE format")
			assert.Contains(t, err.Error(), "CVE-YYYY-XXXXX")
			assert.Equal(t, KindFormat, Kind(err))
		})
	}
}

func TestConstructCVEURL(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"CVE-2025-36000", "https://raw.githubusercontent.com/CVEProject/cvelistV5/refs/heads/main/cves/2025/36xxx/CVE-2025-36000.json"},
		{"CVE-2024-1234", "https://raw.githubusercontent.com/CVEProject/cvelistV5/refs/heads/main/cves/2024/12xxx/CVE-2024-1234.json"},
	}

	for _, tt := range tests {
		got, err := ConstructCVEURL(tt.id)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ConstructCVEURL("CVE-2024")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestBuildRecordURLTrimsTrailingSlash(t *testing.T) {
	got, err := buildRecordURL("http://127.0.0.1:8080/", "CVE-2024-1234")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8080/cves/2024/12xxx/CVE-2024-1234.json", got)
}
