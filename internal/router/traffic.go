package router

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/muurk/routerctl/internal/soap"
)

// TrafficStats holds today's traffic meter counters, in megabytes
type TrafficStats struct {
	TodayUploadMB   float64 `json:"newTodayUpload"`
	TodayDownloadMB float64 `json:"newTodayDownload"`
}

// Summary returns a one-line summary of the counters
func (t *TrafficStats) Summary() string {
	return fmt.Sprintf("Today: %.2f MB up, %.2f MB down", t.TodayUploadMB, t.TodayDownloadMB)
}

var (
	todayUploadRegex   = regexp.MustCompile(`<NewTodayUpload>(.*?)</NewTodayUpload>`)
	todayDownloadRegex = regexp.MustCompile(`<NewTodayDownload>(.*?)</NewTodayDownload>`)
)

// parseTrafficMeter extracts today's upload and download counters
func parseTrafficMeter(body string) (*TrafficStats, error) {
	action := soap.ActionName(soap.ActionGetTrafficMeter)

	upload, err := extractFloat(todayUploadRegex, "NewTodayUpload", body)
	if err != nil {
		return nil, NewParseError(action, err.Error(), body, err)
	}

	download, err := extractFloat(todayDownloadRegex, "NewTodayDownload", body)
	if err != nil {
		return nil, NewParseError(action, err.Error(), body, err)
	}

	return &TrafficStats{
		TodayUploadMB:   upload,
		TodayDownloadMB: download,
	}, nil
}

func extractFloat(re *regexp.Regexp, element, body string) (float64, error) {
	m := re.FindStringSubmatch(body)
	if m == nil {
		return 0, fmt.Errorf("response has no %s element", element)
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(m[1]), 64)
	if err != nil {
		return 0, fmt.Errorf("%s value %q is not a number", element, m[1])
	}
	return v, nil
}
