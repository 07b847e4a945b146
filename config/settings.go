// Package config loads host settings from the environment. A .env file is
// honored when present so local runs don't need exports.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/mothlight/swarmgate-mp/shared/netconfig"
)

// Settings is everything the host binary needs that isn't a flag default.
type Settings struct {
	Port     uint
	TickRate int
	Version  string
	Tuning   netconfig.Tuning
}

// Load reads the environment (plus .env if one exists) over built-in
// defaults. A missing .env is not an error; explicit env vars always win.
func Load() (Settings, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] skipping .env: %v", err)
	}

	s := Settings{
		Port:     7373,
		TickRate: 30,
		Tuning:   netconfig.DefaultTuning(),
	}

	if v, ok := os.LookupEnv("SWARMGATE_PORT"); ok {
		port, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return s, fmt.Errorf("SWARMGATE_PORT: %w", err)
		}
		s.Port = uint(port)
	}
	if v, ok := os.LookupEnv("SWARMGATE_TICKRATE"); ok {
		rate, err := strconv.Atoi(v)
		if err != nil {
			return s, fmt.Errorf("SWARMGATE_TICKRATE: %w", err)
		}
		if rate <= 0 {
			return s, fmt.Errorf("SWARMGATE_TICKRATE: must be positive, got %d", rate)
		}
		s.TickRate = rate
	}
	if v, ok := os.LookupEnv("SWARMGATE_VERSION"); ok {
		s.Version = v
	}
	if v, ok := os.LookupEnv("SWARMGATE_SNAP_THRESHOLD"); ok {
		px, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return s, fmt.Errorf("SWARMGATE_SNAP_THRESHOLD: %w", err)
		}
		s.Tuning.SnapThreshold = px
	}
	if v, ok := os.LookupEnv("SWARMGATE_OPTIMISTIC_EXPIRY_MS"); ok {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return s, fmt.Errorf("SWARMGATE_OPTIMISTIC_EXPIRY_MS: %w", err)
		}
		s.Tuning.OptimisticExpiry = time.Duration(ms) * time.Millisecond
	}

	return s, nil
}
