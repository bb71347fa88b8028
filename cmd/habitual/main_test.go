package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvFileArg(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"default", []string{"habit", "list"}, ".env"},
		{"equals form", []string{"--env-file=prod.env", "doctor"}, "prod.env"},
		{"separate value", []string{"--debug", "--env-file", "local.env"}, "local.env"},
		{"dangling flag", []string{"--env-file"}, ".env"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, envFileArg(tt.args))
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("HABITUAL_TEST_VALUE=from-file\n"), 0600))
	t.Cleanup(func() { os.Unsetenv("HABITUAL_TEST_VALUE") })

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "from-file", os.Getenv("HABITUAL_TEST_VALUE"))

	// A missing explicit file is an error; a missing default is not.
	assert.Error(t, loadEnvFile(filepath.Join(dir, "missing.env")))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	assert.NoError(t, loadEnvFile(".env"))
}
