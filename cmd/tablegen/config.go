package main

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultInputPath        = "/data/age-of-mother-distribution.txt"
	defaultOutputPath       = "/data/age-of-mother-table.yaml"
	defaultMultiplier       = uint64(320)
	defaultInputWaitTimeout = 120 * time.Second
)

type Config struct {
	InputPath        string
	OutputPath       string
	Multiplier       uint64
	InputWaitTimeout time.Duration
}

func LoadConfig() Config {
	cfg := Config{
		InputPath:        defaultInputPath,
		OutputPath:       defaultOutputPath,
		Multiplier:       defaultMultiplier,
		InputWaitTimeout: defaultInputWaitTimeout,
	}

	if v := firstNonEmpty(
		os.Getenv("TABLEGEN_INPUT_PATH"),
		os.Getenv("INPUT_PATH"),
	); v != "" {
		cfg.InputPath = v
	}

	if v := firstNonEmpty(
		os.Getenv("TABLEGEN_OUTPUT_PATH"),
		os.Getenv("OUTPUT_PATH"),
	); v != "" {
		cfg.OutputPath = v
	}

	if v := firstNonEmpty(
		os.Getenv("TABLEGEN_MULTIPLIER"),
		os.Getenv("MULTIPLIER"),
	); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Multiplier = n
		}
	}

	if v := firstNonEmpty(
		os.Getenv("TABLEGEN_INPUT_TIMEOUT_SECONDS"),
		os.Getenv("INPUT_TIMEOUT_SECONDS"),
	); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds >= 0 {
			cfg.InputWaitTimeout = time.Duration(seconds) * time.Second
		}
	}

	cfg.InputPath = strings.TrimSpace(cfg.InputPath)
	cfg.OutputPath = strings.TrimSpace(cfg.OutputPath)

	return cfg
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}
