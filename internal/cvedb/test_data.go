package cvedb

import (
	"CVESummary/internal/model"
)

// SeedRecords 两条参考记录：只有CNA的模拟记录，以及评分只来自ADP的记录
func SeedRecords() []*model.CVERecord {
	return []*model.CVERecord{
		{
			DataType:    "CVE_RECORD",
			DataVersion: "5.1",
			CVEMetadata: &model.CVEMetadata{
				CVEID:             "CVE-2025-36000",
				AssignerOrgName:   "Test Organization",
				AssignerShortName: "TEST",
				DateReserved:      "2025-01-01T00:00:00Z",
				DatePublished:     "2025-01-02T00:00:00Z",
				DateUpdated:       "2025-01-03T00:00:00Z",
			},
			Containers: &model.Containers{
				CNA: &model.CNAContainer{
					Title:       "Test Vulnerability",
					Description: "This is a test CVE description",
					Affected: []model.Affected{
						{Product: "TestProduct", Vendor: "TestVendor", Versions: []model.Version{}},
					},
					References: []model.Reference{
						{URL: "https://example.com", Name: "Example Reference"},
					},
				},
			},
		},
		{
			DataType:    "CVE_RECORD",
			DataVersion: "5.1",
			CVEMetadata: &model.CVEMetadata{
				CVEID:             "CVE-2024-1234",
				AssignerOrgName:   "Example CNA",
				AssignerShortName: "example",
				DateReserved:      "2024-01-05T10:00:00.000Z",
				DatePublished:     "2024-02-20T18:19:48.371Z",
				DateUpdated:       "2024-08-01T12:00:00.000Z",
			},
			Containers: &model.Containers{
				CNA: &model.CNAContainer{
					Title: "Path traversal in Example Server file handler",
					Descriptions: []model.Description{
						{Lang: "en", Value: "A path traversal issue in Example Server before 2.4.1 allows remote attackers to read arbitrary files."},
					},
					Affected: []model.Affected{
						{
							Vendor:  "Example",
							Product: "Example Server",
							Versions: []model.Version{
								{Version: "2.0.0", Status: "affected", LessThan: "2.4.1", VersionType: "semver"},
							},
						},
					},
					References: []model.Reference{
						{URL: "https://example.com/security/advisories/2024-01"},
					},
					ProblemTypes: []model.ProblemType{
						{Descriptions: []model.ProblemTypeDescription{
							{Lang: "en", CWEID: "CWE-22", Description: "CWE-22 Improper Limitation of a Pathname to a Restricted Directory", Type: "CWE"},
						}},
					},
					Solutions: []model.Solution{
						{Lang: "en", Value: "Upgrade to Example Server 2.4.1 or later."},
					},
				},
				ADP: model.ADPContainers{
					{
						Title: "CISA ADP Vulnrichment",
						Metrics: []model.Metric{
							{
								Format: "CVSS",
								CVSSV31: &model.CVSSV31{
									Version:            "3.1",
									VectorString:       "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:N/A:N",
									BaseScore:          7.5,
									BaseSeverity:       "HIGH",
									AttackVector:       "NETWORK",
									AttackComplexity:   "LOW",
									PrivilegesRequired: "NONE",
									UserInteraction:    "NONE",
									Scope:              "UNCHANGED",
								},
							},
						},
						ProviderMetadata: &model.ProviderMetadata{OrgID: "134c704f-9b21-4f2e-91b3-4a467353bcc0", ShortName: "CISA-ADP"},
					},
				},
			},
		},
	}
}

// InitTestData 初始化测试数据
func (cd *CVEDatabase) InitTestData() error {
	cd.logger.Info("初始化测试CVE数据...")

	// 插入测试数据
	successCount := 0
	for _, record := range SeedRecords() {
		cveID := record.CVEMetadata.CVEID
		if err := cd.SaveRecord(cveID, record); err != nil {
			cd.logger.Error("插入CVE失败 %s: %v", cveID, err)
		} else {
			successCount++
			cd.logger.Debug("插入CVE: %s", cveID)
		}
	}

	cd.logger.Info("测试CVE数据初始化完成，成功插入 %d 个CVE记录", successCount)
	return nil
}
