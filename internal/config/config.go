package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultBaseURL    = "https://dorsu-connect-api.onrender.com"
	maxFetchLimit     = 500
	maxBufferMonths   = 6
	defaultCooldownMS = 3000
)

type Runtime struct {
	ConfigFile string

	APIBaseURL   string
	Timeout      time.Duration
	FetchLimit   int
	Cooldown     time.Duration
	BufferMonths int

	StateDir     string
	SnapshotPath string
	Verbose      bool
}

func Load() (Runtime, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Runtime{}, fmt.Errorf("resolve home dir: %w", err)
	}

	xdgConfig := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME"))
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}

	xdgState := strings.TrimSpace(os.Getenv("XDG_STATE_HOME"))
	if xdgState == "" {
		xdgState = filepath.Join(home, ".local", "state")
	}

	defaultConfig := filepath.Join(xdgConfig, "connect-calendar", "config.env")
	configFile := strings.TrimSpace(os.Getenv("CONNECT_CALENDAR_CONFIG_FILE"))
	if configFile == "" {
		configFile = defaultConfig
	}

	_ = loadEnvFile(configFile)

	v := viper.New()
	v.SetEnvPrefix("CONNECT_CALENDAR")
	v.AutomaticEnv()

	_ = v.BindEnv("api_base_url", "CONNECT_CALENDAR_API_BASE_URL", "API_BASE_URL")
	_ = v.BindEnv("timeout_seconds", "CONNECT_CALENDAR_TIMEOUT_SECONDS", "TIMEOUT_SECONDS")
	_ = v.BindEnv("fetch_limit", "CONNECT_CALENDAR_FETCH_LIMIT", "FETCH_LIMIT")
	_ = v.BindEnv("cooldown_ms", "CONNECT_CALENDAR_COOLDOWN_MS", "COOLDOWN_MS")
	_ = v.BindEnv("buffer_months", "CONNECT_CALENDAR_BUFFER_MONTHS", "BUFFER_MONTHS")
	_ = v.BindEnv("state_dir", "CONNECT_CALENDAR_STATE_DIR")
	_ = v.BindEnv("verbose", "CONNECT_CALENDAR_VERBOSE")

	v.SetDefault("api_base_url", defaultBaseURL)
	v.SetDefault("timeout_seconds", 15)
	v.SetDefault("fetch_limit", 200)
	v.SetDefault("cooldown_ms", defaultCooldownMS)
	v.SetDefault("buffer_months", 2)
	v.SetDefault("state_dir", filepath.Join(xdgState, "connect-calendar"))
	v.SetDefault("verbose", false)

	baseURL := strings.TrimSpace(v.GetString("api_base_url"))
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	timeoutSeconds := v.GetInt("timeout_seconds")
	if timeoutSeconds <= 0 {
		timeoutSeconds = 15
	}

	fetchLimit := v.GetInt("fetch_limit")
	if fetchLimit < 1 {
		fetchLimit = 1
	}
	if fetchLimit > maxFetchLimit {
		fetchLimit = maxFetchLimit
	}

	cooldownMS := v.GetInt("cooldown_ms")
	if cooldownMS < 0 {
		cooldownMS = defaultCooldownMS
	}

	bufferMonths := v.GetInt("buffer_months")
	if bufferMonths < 0 {
		bufferMonths = 0
	}
	if bufferMonths > maxBufferMonths {
		bufferMonths = maxBufferMonths
	}

	stateDir := strings.TrimSpace(v.GetString("state_dir"))
	if stateDir == "" {
		stateDir = filepath.Join(xdgState, "connect-calendar")
	}

	return Runtime{
		ConfigFile:   configFile,
		APIBaseURL:   baseURL,
		Timeout:      time.Duration(timeoutSeconds) * time.Second,
		FetchLimit:   fetchLimit,
		Cooldown:     time.Duration(cooldownMS) * time.Millisecond,
		BufferMonths: bufferMonths,
		StateDir:     stateDir,
		SnapshotPath: filepath.Join(stateDir, "snapshot.json"),
		Verbose:      v.GetBool("verbose"),
	}, nil
}

func loadEnvFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open env file %s: %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}

		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" {
			continue
		}

		if len(value) >= 2 {
			if (value[0] == '\'' && value[len(value)-1] == '\'') ||
				(value[0] == '"' && value[len(value)-1] == '"') {
				value = value[1 : len(value)-1]
			}
		}

		if _, exists := os.LookupEnv(key); exists {
			continue
		}
		_ = os.Setenv(key, value)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan env file %s: %w", path, err)
	}
	return nil
}
