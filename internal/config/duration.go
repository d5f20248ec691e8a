package config

import (
	"strconv"
	"time"
)

func parseDuration(raw string) (time.Duration, error) {
	return time.ParseDuration(raw)
}

func parseInt(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}
