package config

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const day = 24 * time.Hour

// Duration is a time.Duration whose text form may start with a day count, e.g. "7d" or "1d12h"
type Duration struct {
	time.Duration
}

// EnvDecode implements envconfig.Decoder
func (d *Duration) EnvDecode(_ context.Context, v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}

	parsed, err := parseDuration(v)
	if err != nil {
		return err
	}
	if parsed < 0 {
		return fmt.Errorf("invalid duration %q: must not be negative", v)
	}

	d.Duration = parsed
	return nil
}

func parseDuration(v string) (time.Duration, error) {
	idx := strings.IndexByte(v, 'd')
	if idx < 0 {
		duration, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %w", err)
		}
		return duration, nil
	}

	days, err := strconv.Atoi(v[:idx])
	if err != nil {
		return 0, fmt.Errorf("invalid days value: %w", err)
	}

	total := time.Duration(days) * day
	if rest := v[idx+1:]; rest != "" {
		extra, err := time.ParseDuration(rest)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %w", err)
		}
		total += extra
	}

	return total, nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	return d.EnvDecode(context.Background(), string(text))
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func (d Duration) String() string {
	return d.Duration.String()
}
