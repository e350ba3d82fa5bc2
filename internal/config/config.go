package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	json "github.com/goccy/go-json"

	"flame/cli/internal/apperr"
)

const (
	ConfigFile       = ".flame.json"
	FirebaseRCFile   = ".firebaserc"
	FirebaseJSONFile = "firebase.json"
)

type FlameConfig struct {
	UseEmulator  bool   `json:"useEmulator"`
	Project      string `json:"project"`
	EmulatorHost string `json:"emulatorHost"`
	EmulatorPort int    `json:"emulatorPort"`
}

func Defaults() FlameConfig {
	return FlameConfig{
		UseEmulator:  true,
		EmulatorHost: "127.0.0.1",
		EmulatorPort: 8080,
	}
}

// Environment is the label shown to users for the active target.
func (c FlameConfig) Environment() string {
	if c.UseEmulator {
		return "EMULATOR"
	}
	return "REMOTE"
}

func (c FlameConfig) EmulatorAddr() string {
	return c.EmulatorHost + ":" + strconv.Itoa(c.EmulatorPort)
}

func (c FlameConfig) Validate() error {
	if c.Project == "" {
		return fmt.Errorf("%w: no project id", apperr.ErrConfig)
	}
	if c.UseEmulator && (c.EmulatorHost == "" || c.EmulatorPort <= 0) {
		return fmt.Errorf("%w: emulator enabled but host/port not set (%q:%d)", apperr.ErrConfig, c.EmulatorHost, c.EmulatorPort)
	}
	return nil
}

// Loaded is a config with the file it was read from. Path is empty when no
// .flame.json exists yet.
type Loaded struct {
	Config FlameConfig
	Path   string
}

type firebaseRC struct {
	Projects map[string]string `json:"projects"`
}

type firebaseJSON struct {
	Emulators *struct {
		Firestore *struct {
			Host string `json:"host"`
			Port int    `json:"port"`
		} `json:"firestore"`
	} `json:"emulators"`
}

// Load builds the config for cwd: defaults, then the project from the nearest
// .firebaserc (or FIREBASE_PROJECT_ID / GOOGLE_CLOUD_PROJECT), then the
// nearest .flame.json, then the firebase.json emulator block.
func Load(cwd string) (Loaded, error) {
	cfg := Defaults()

	project, err := projectID(cwd)
	if err != nil {
		return Loaded{}, err
	}
	cfg.Project = project

	confPath := FindUpward(cwd, ConfigFile)
	if confPath != "" {
		if err := readJSON(confPath, &cfg); err != nil {
			return Loaded{}, err
		}
	}

	fbPath := FindUpward(cwd, FirebaseJSONFile)
	if fbPath == "" {
		return Loaded{}, fmt.Errorf("%w: no %s file found", apperr.ErrConfig, FirebaseJSONFile)
	}
	var fb firebaseJSON
	if err := readJSON(fbPath, &fb); err != nil {
		return Loaded{}, err
	}
	if fb.Emulators == nil || fb.Emulators.Firestore == nil {
		cfg.UseEmulator = false
	} else {
		if h := fb.Emulators.Firestore.Host; h != "" {
			cfg.EmulatorHost = h
		}
		if p := fb.Emulators.Firestore.Port; p != 0 {
			cfg.EmulatorPort = p
		}
	}

	if err := cfg.Validate(); err != nil {
		return Loaded{}, err
	}
	return Loaded{Config: cfg, Path: confPath}, nil
}

func projectID(cwd string) (string, error) {
	rcPath := FindUpward(cwd, FirebaseRCFile)
	if rcPath == "" {
		if p := getenv("FIREBASE_PROJECT_ID", getenv("GOOGLE_CLOUD_PROJECT", "")); p != "" {
			return p, nil
		}
		return "", fmt.Errorf("%w: no %s file found", apperr.ErrConfig, FirebaseRCFile)
	}
	var rc firebaseRC
	if err := readJSON(rcPath, &rc); err != nil {
		return "", err
	}
	if rc.Projects["default"] == "" {
		return "", fmt.Errorf("%w: no default firebase project found, run firebase init", apperr.ErrConfig)
	}
	return rc.Projects["default"], nil
}

// FirebaseDir returns the directory holding the nearest firebase.json.
func FirebaseDir(cwd string) (string, bool) {
	p := FindUpward(cwd, FirebaseJSONFile)
	if p == "" {
		return "", false
	}
	return filepath.Dir(p), true
}

// Write stores cfg as .flame.json in dir and returns the file path.
func Write(dir string, cfg FlameConfig) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, ConfigFile)
	if err := os.WriteFile(p, append(b, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", p, err)
	}
	return p, nil
}

type Target string

const (
	TargetRemote   Target = "remote"
	TargetEmulator Target = "emulator"
)

func ParseTarget(s string) (Target, error) {
	switch Target(s) {
	case TargetRemote, TargetEmulator:
		return Target(s), nil
	}
	return "", fmt.Errorf("%w: target must be %q or %q", apperr.ErrValidation, TargetRemote, TargetEmulator)
}

// SwitchTarget rewrites the active .flame.json to point at t.
func SwitchTarget(loaded Loaded, t Target) (Loaded, error) {
	if loaded.Path == "" {
		return Loaded{}, fmt.Errorf("%w: no %s found, run flame init", apperr.ErrConfig, ConfigFile)
	}
	cfg := loaded.Config
	cfg.UseEmulator = t == TargetEmulator
	if _, err := Write(filepath.Dir(loaded.Path), cfg); err != nil {
		return Loaded{}, err
	}
	return Loaded{Config: cfg, Path: loaded.Path}, nil
}

// FindUpward looks for name in start and each parent directory.
func FindUpward(start, name string) string {
	dir, err := filepath.Abs(start)
	if err != nil {
		return ""
	}
	for {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func readJSON(path string, dst interface{}) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", apperr.ErrConfig, path, err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("%w: parse %s: %w", apperr.ErrConfig, path, err)
	}
	return nil
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
