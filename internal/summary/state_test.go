package summary

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"CVESummary/internal/cvedb"
	"CVESummary/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRecord(t *testing.T, cveID string) *model.CVERecord {
	t.Helper()
	for _, r := range cvedb.SeedRecords() {
		if r.CVEMetadata.CVEID == cveID {
			return r
		}
	}
	t.Fatalf("没有种子记录 %s", cveID)
	return nil
}

func TestDeriveEmptyInput(t *testing.T) {
	state := Derive("", Outcome{Pending: true})
	assert.Equal(t, KindEmpty, state.Kind())
	assert.IsType(t, EmptyInput{}, state)
}

func TestDeriveLoading(t *testing.T) {
	state := Derive("CVE-2024-1234", Outcome{Pending: true})
	require.IsType(t, Loading{}, state)
	assert.Equal(t, "CVE-2024-1234", state.(Loading).CVEID)
}

func TestDeriveCanceledIsNotAnError(t *testing.T) {
	err := fmt.Errorf("请求已取消 CVE-2024-1234: %w", context.Canceled)
	state := Derive("CVE-2024-1234", Outcome{Err: err})
	assert.Equal(t, KindLoading, state.Kind())
}

func TestDeriveInvalidFormat(t *testing.T) {
	_, err := cvedb.ParseCVEID("CVE-ABC")
	require.Error(t, err)

	state := Derive("CVE-ABC", Outcome{Err: err})
	require.IsType(t, Failed{}, state)
	failed := state.(Failed)
	assert.Contains(t, failed.Message, "Invalid CVE format")
	assert.Equal(t, cvedb.KindFormat, failed.Reason)
}

func TestDeriveNetworkAndParseErrors(t *testing.T) {
	netErr := &cvedb.NetworkError{CVEID: "CVE-2024-1234", StatusCode: 404, Status: "Not Found"}
	state := Derive("CVE-2024-1234", Outcome{Err: netErr})
	require.IsType(t, Failed{}, state)
	assert.Equal(t, "Failed to fetch CVE data: Not Found", state.(Failed).Message)
	assert.Equal(t, cvedb.KindNetwork, state.(Failed).Reason)

	parseErr := &cvedb.ParseError{CVEID: "CVE-2024-1234", Err: errors.New("unexpected EOF")}
	state = Derive("CVE-2024-1234", Outcome{Err: parseErr})
	assert.Equal(t, KindError, state.Kind())
	assert.Equal(t, cvedb.KindParse, state.(Failed).Reason)
}

func TestDeriveNoData(t *testing.T) {
	assert.Equal(t, KindNoData, Derive("CVE-2024-1234", Outcome{}).Kind())
	assert.Equal(t, KindNoData, Derive("CVE-2024-1234", Outcome{Record: &model.CVERecord{}}).Kind())
}

func TestDeriveCNAOnlyMock(t *testing.T) {
	state := Derive("CVE-2025-36000", Outcome{Record: seedRecord(t, "CVE-2025-36000")})
	require.IsType(t, Populated{}, state)
	view := state.(Populated).View

	assert.Equal(t, "CVE-2025-36000", view.ID)
	assert.Equal(t, "Test Vulnerability", view.Title)
	assert.Equal(t, "This is a test CVE description", view.Description)
	assert.Len(t, view.Affected, 1)
	assert.Len(t, view.References, 1)
	assert.Nil(t, view.Score)
	assert.Nil(t, view.Metric)
	assert.Equal(t, ColorDefault, view.SeverityColor)
	assert.Nil(t, view.ProblemTypes)
	assert.Nil(t, view.Solutions)
}

func TestDeriveFallsBackToADPMetric(t *testing.T) {
	state := Derive("CVE-2024-1234", Outcome{Record: seedRecord(t, "CVE-2024-1234")})
	require.IsType(t, Populated{}, state)
	view := state.(Populated).View

	require.NotNil(t, view.Score)
	assert.Equal(t, 7.5, *view.Score)
	assert.Equal(t, "HIGH", view.Severity)
	assert.Equal(t, ColorOrange, view.SeverityColor)
	assert.Equal(t, "adp", view.MetricSource)
	assert.Equal(t, "NETWORK", view.Metric.AttackVector)

	require.Len(t, view.ProblemTypes, 1)
	assert.Equal(t, "CWE-22", view.ProblemTypes[0].CWEID)
	assert.Len(t, view.Solutions, 1)
}

func TestDerivePrefersCNAMetric(t *testing.T) {
	record := seedRecord(t, "CVE-2024-1234")
	record.Containers.CNA.Metrics = []model.Metric{
		{Format: "CVSS", CVSSV31: &model.CVSSV31{BaseScore: 9.8, BaseSeverity: "CRITICAL"}},
	}

	view := Derive("CVE-2024-1234", Outcome{Record: record}).(Populated).View
	assert.Equal(t, 9.8, *view.Score)
	assert.Equal(t, ColorRed, view.SeverityColor)
	assert.Equal(t, "cna", view.MetricSource)
}

func TestDeriveDescriptionListWins(t *testing.T) {
	record := seedRecord(t, "CVE-2024-1234")
	record.Containers.CNA.Description = "legacy"

	view := Derive("CVE-2024-1234", Outcome{Record: record}).(Populated).View
	assert.Contains(t, view.Description, "path traversal")
}

func TestDeriveMissingContainers(t *testing.T) {
	record := &model.CVERecord{CVEMetadata: &model.CVEMetadata{CVEID: "CVE-2024-1234", AssignerShortName: "example"}}

	state := Derive("CVE-2024-1234", Outcome{Record: record})
	require.IsType(t, Populated{}, state)
	view := state.(Populated).View
	assert.Equal(t, "CVE-2024-1234", view.ID)
	assert.Empty(t, view.Title)
	assert.Nil(t, view.Affected)
}

func TestSeverityColor(t *testing.T) {
	tests := []struct {
		severity string
		want     Color
	}{
		{"CRITICAL", ColorRed},
		{"HIGH", ColorOrange},
		{"MEDIUM", ColorGold},
		{"LOW", ColorGreen},
		{"INFO", ColorBlue},
		{"NONE", ColorBlue},
		{"", ColorDefault},
		{"UNKNOWN", ColorDefault},
	}

	for _, tt := range tests {
		if got := SeverityColor(tt.severity); got != tt.want {
			t.Errorf("SeverityColor(%q) = %s, 期望 %s", tt.severity, got, tt.want)
		}
	}
}
