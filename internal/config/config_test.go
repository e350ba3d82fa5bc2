package config

import (
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flame/cli/internal/apperr"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func project(t *testing.T, emulators string) string {
	t.Helper()
	t.Setenv("FIREBASE_PROJECT_ID", "")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "")
	dir := t.TempDir()
	writeFile(t, dir, FirebaseRCFile, `{"projects": {"default": "demo-app"}}`)
	writeFile(t, dir, FirebaseJSONFile, emulators)
	return dir
}

func TestLoadInfersFromFirebaseFiles(t *testing.T) {
	dir := project(t, `{"emulators": {"firestore": {"host": "localhost", "port": 9090}}}`)

	l, err := Load(dir)
	require.NoError(t, err)
	assert.Empty(t, l.Path)
	assert.Equal(t, FlameConfig{
		UseEmulator:  true,
		Project:      "demo-app",
		EmulatorHost: "localhost",
		EmulatorPort: 9090,
	}, l.Config)
	assert.Equal(t, "EMULATOR", l.Config.Environment())
	assert.Equal(t, "localhost:9090", l.Config.EmulatorAddr())
}

func TestLoadWithoutEmulatorBlockTargetsRemote(t *testing.T) {
	dir := project(t, `{"hosting": {}}`)

	l, err := Load(dir)
	require.NoError(t, err)
	assert.False(t, l.Config.UseEmulator)
	assert.Equal(t, "REMOTE", l.Config.Environment())
}

func TestLoadFlameConfigFromParent(t *testing.T) {
	dir := project(t, `{"emulators": {"firestore": {}}}`)
	writeFile(t, dir, ConfigFile, `{"useEmulator": false, "project": "other-app"}`)
	sub := filepath.Join(dir, "functions", "src")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	l, err := Load(sub)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ConfigFile), l.Path)
	assert.Equal(t, "other-app", l.Config.Project)
	assert.False(t, l.Config.UseEmulator)
	assert.Equal(t, "127.0.0.1", l.Config.EmulatorHost)
	assert.Equal(t, 8080, l.Config.EmulatorPort)
}

func TestLoadProjectFromEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, FirebaseJSONFile, `{}`)
	t.Setenv("FIREBASE_PROJECT_ID", "")
	t.Setenv("GOOGLE_CLOUD_PROJECT", "env-app")

	l, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "env-app", l.Config.Project)
}

func TestLoadErrors(t *testing.T) {
	t.Run("no firebase.json", func(t *testing.T) {
		t.Setenv("FIREBASE_PROJECT_ID", "p")
		_, err := Load(t.TempDir())
		assert.ErrorIs(t, err, apperr.ErrConfig)
	})
	t.Run("no default project", func(t *testing.T) {
		dir := project(t, `{}`)
		writeFile(t, dir, FirebaseRCFile, `{"projects": {}}`)
		_, err := Load(dir)
		assert.ErrorIs(t, err, apperr.ErrConfig)
	})
	t.Run("malformed config", func(t *testing.T) {
		dir := project(t, `{}`)
		writeFile(t, dir, ConfigFile, `{"useEmulator": `)
		_, err := Load(dir)
		assert.ErrorIs(t, err, apperr.ErrConfig)
	})
}

func TestValidate(t *testing.T) {
	ok := Defaults()
	ok.Project = "p"
	assert.NoError(t, ok.Validate())

	noProject := Defaults()
	assert.ErrorIs(t, noProject.Validate(), apperr.ErrConfig)

	noPort := ok
	noPort.EmulatorPort = 0
	assert.ErrorIs(t, noPort.Validate(), apperr.ErrConfig)

	remote := noPort
	remote.UseEmulator = false
	assert.NoError(t, remote.Validate())
}

func TestWriteAndSwitchTarget(t *testing.T) {
	dir := project(t, `{"emulators": {"firestore": {"port": 8181}}}`)
	l, err := Load(dir)
	require.NoError(t, err)

	_, err = SwitchTarget(l, TargetRemote)
	assert.ErrorIs(t, err, apperr.ErrConfig, "switching needs an existing .flame.json")

	p, err := Write(dir, l.Config)
	require.NoError(t, err)
	l, err = Load(dir)
	require.NoError(t, err)
	assert.Equal(t, p, l.Path)

	switched, err := SwitchTarget(l, TargetRemote)
	require.NoError(t, err)
	assert.False(t, switched.Config.UseEmulator)

	raw, err := os.ReadFile(p)
	require.NoError(t, err)
	var onDisk FlameConfig
	require.NoError(t, json.Unmarshal(raw, &onDisk))
	assert.False(t, onDisk.UseEmulator)
	assert.Equal(t, 8181, onDisk.EmulatorPort)
}

func TestParseTarget(t *testing.T) {
	got, err := ParseTarget("emulator")
	require.NoError(t, err)
	assert.Equal(t, TargetEmulator, got)

	_, err = ParseTarget("staging")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
