package util

import (
	"strconv"
	"strings"
	"time"
)

// ParseDuration parses a duration that may use a day suffix ("7d") in
// addition to the units time.ParseDuration understands. Pure numbers are
// seconds.
// ParseDuration 解析时长，支持 d（天）后缀，纯数字默认为秒
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if daysStr, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			return 0, err
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	if _, err := strconv.Atoi(s); err == nil {
		s += "s"
	}
	return time.ParseDuration(s)
}
