package utils

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"CVESummary/internal/model"
)

var (
	versionCore = regexp.MustCompile(`\d+(\.\d+)*`)
	digits      = regexp.MustCompile(`\d+`)
)

// NormalizeVersion 去掉 v 前缀等修饰，只保留数字和点号部分。没有数字时原样返回
func NormalizeVersion(version string) string {
	version = strings.TrimSpace(version)
	if match := versionCore.FindString(version); match != "" {
		return match
	}
	return version
}

// CompareVersions 按段比较数字版本号，缺失的段视为 0
func CompareVersions(v1, v2 string) int {
	parts1 := strings.Split(NormalizeVersion(v1), ".")
	parts2 := strings.Split(NormalizeVersion(v2), ".")

	maxLen := len(parts1)
	if len(parts2) > maxLen {
		maxLen = len(parts2)
	}

	for i := 0; i < maxLen; i++ {
		var num1, num2 int
		if i < len(parts1) {
			num1 = parsePart(parts1[i])
		}
		if i < len(parts2) {
			num2 = parsePart(parts2[i])
		}

		if num1 != num2 {
			if num1 > num2 {
				return 1
			}
			return -1
		}
	}
	return 0
}

func parsePart(part string) int {
	n, err := strconv.Atoi(digits.FindString(part))
	if err != nil {
		return 0
	}
	return n
}

// SortedVersions 返回按版本号升序排列的副本，不是数字版本（如 git 提交）的条目保持原顺序排在最后
func SortedVersions(versions []model.Version) []model.Version {
	sorted := make([]model.Version, len(versions))
	copy(sorted, versions)

	numeric := func(v model.Version) bool {
		return v.VersionType != "git" && versionCore.MatchString(v.Version)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		ni, nj := numeric(sorted[i]), numeric(sorted[j])
		if ni != nj {
			return ni
		}
		if !ni {
			return false
		}
		return CompareVersions(sorted[i].Version, sorted[j].Version) < 0
	})
	return sorted
}
