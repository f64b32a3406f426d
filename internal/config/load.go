// SPDX-License-Identifier: MIT
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultEnvFile is read before environment overrides are applied, if present.
const DefaultEnvFile = ".env"

// ErrMalformed is returned when a configuration file exists but cannot be parsed.
var ErrMalformed = errors.New("malformed configuration")

// Status records where a loaded configuration came from.
type Status int

const (
	FromFile           Status = iota // Parsed from the file.
	Defaults                         // File missing, built-in defaults used.
	DefaultsUnreadable               // File present but unreadable, built-in defaults used.
)

func (s Status) String() string {
	switch s {
	case FromFile:
		return "file"
	case Defaults:
		return "defaults"
	case DefaultsUnreadable:
		return "defaults (file unreadable)"
	default:
		return "unknown"
	}
}

// Result is the outcome of Load. ReadErr holds the I/O error that caused a
// fallback to defaults, if any.
type Result struct {
	Config  *Config
	Status  Status
	Path    string
	ReadErr error
}

// Load reads the configuration at path. A missing or unreadable file is not
// an error: the built-in defaults are used and Result.Status says so. A file
// that exists but does not parse, or that holds unknown keys, fails with
// ErrMalformed. Overrides from the .env file and ACCEL_* variables are
// applied in every case and the final configuration is validated.
func Load(path string) (Result, error) {
	res := Result{Config: Default(), Path: path, Status: FromFile}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		res.Status = Defaults
		res.ReadErr = err
	case err != nil:
		res.Status = DefaultsUnreadable
		res.ReadErr = err
	default:
		if err := decode(data, res.Config); err != nil {
			return Result{}, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
		}
	}

	if err := LoadEnvFile(DefaultEnvFile); err != nil {
		return Result{}, fmt.Errorf("failed to read env file: %w", err)
	}
	res.Config.applyEnvOverrides()

	if err := res.Config.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return res, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// LoadEnvFile adds the variables of a dotenv file to the process
// environment without overwriting variables that are already set. A missing
// file is ignored.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return godotenv.Load(path)
}

// Save writes cfg to path as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write configuration: %w", err)
	}
	return nil
}

// applyEnvOverrides applies the ACCEL_* variables on top of the loaded values.
// Values that do not parse are ignored.
func (c *Config) applyEnvOverrides() {
	envInt("ACCEL_DEBUG", &c.Debug)
	envInt("ACCEL_SAMPLE_RATE", &c.Audio.SampleRate)
	envInt("ACCEL_FRAMES_PER_BUFFER", &c.Audio.FramesPerBuffer)
	envInt("ACCEL_DURATION", &c.Audio.DurationSeconds)
	envInt("ACCEL_INPUT_DEVICE", &c.Audio.InputDevice)
	envInt("ACCEL_OUTPUT_DEVICE", &c.Audio.OutputDevice)
	envBool("ACCEL_PLAYBACK", &c.Audio.Playback)
	envBool("ACCEL_LOGGING", &c.Logging.Enabled)

	if val, ok := os.LookupEnv("ACCEL_LOG_LEVEL"); ok {
		c.LogLevel = val
	}
	if val, ok := os.LookupEnv("ACCEL_LOG_DIR"); ok {
		c.Logging.Dir = val
	}
	if val, ok := os.LookupEnv("ACCEL_SAMPLE_FORMAT"); ok {
		c.Audio.SampleFormat = val
	}
	if val, ok := os.LookupEnv("ACCEL_ROTATION_INTERVAL"); ok {
		if d, err := time.ParseDuration(val); err == nil {
			c.Logging.RotationInterval = d
		}
	}
}

func envInt(key string, dst *int) {
	if val, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(val); err == nil {
			*dst = n
		}
	}
}

func envBool(key string, dst *bool) {
	if val, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			*dst = b
		}
	}
}
