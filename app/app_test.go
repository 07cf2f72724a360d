package app

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentfusion/rentfusion/internal/backup"
)

const testConfig = `
Title = "RentFusion"

[Webserver]
Port = 8080
URL = "http://localhost:8080"

[DB]
GormEngine = "sqlite"
Name = "%DB%"

[Log]
LogLevel = "warn"
AppName = "rentfusion"
ServiceName = "rentfusion-test"

[Auth]
JWTSecret = "0123456789abcdef0123456789abcdef"
`

func writeConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	body := bytes.ReplaceAll([]byte(testConfig), []byte("%DB%"), []byte(filepath.Join(dir, "rf.db")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.toml"), body, 0o600))

	return dir + string(filepath.Separator)
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		envFile = ""
		dumpJSON = false
		backupDir = ""
	})

	err := Execute()

	return out.String(), err
}

func TestConfigDump(t *testing.T) {
	dir := writeConfig(t)
	env := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(env, []byte("STRIPE_SECRET_KEY=sk_live_secret\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("STRIPE_SECRET_KEY") })

	out, err := run(t, "config", "dump", "--config", dir, "--env-file", env)
	require.NoError(t, err)

	assert.Contains(t, out, `Title = "RentFusion"`)
	assert.NotContains(t, out, "sk_live_secret")
	assert.NotContains(t, out, "0123456789abcdef")
	assert.Contains(t, out, "********")
}

func TestConfigDumpJSON(t *testing.T) {
	out, err := run(t, "config", "dump", "--json", "--config", writeConfig(t))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.Equal(t, "RentFusion", m["Title"])
}

func TestMissingEnvFile(t *testing.T) {
	_, err := run(t, "config", "dump", "--config", writeConfig(t), "--env-file", "/does/not/exist.env")
	assert.Error(t, err)
}

func TestMigrateAndBackup(t *testing.T) {
	dir := writeConfig(t)

	_, err := run(t, "migrate", "--config", dir)
	require.NoError(t, err)

	out, err := run(t, "backup", "--config", dir, "--dir", filepath.Join(dir, "backup"))
	require.NoError(t, err)

	var sum backup.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &sum))
	assert.True(t, sum.Success)
	assert.ElementsMatch(t, backup.Tables, sum.Tables)
	assert.FileExists(t, sum.File)
}
