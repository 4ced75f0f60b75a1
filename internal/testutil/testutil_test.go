package testutil

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestEnv_PathStaysInSandbox(t *testing.T) {
	env := NewTestEnv(t)

	path := env.Path("a", "b", "config.yaml")
	assert.Equal(t, filepath.Join(env.RootDir(), "a", "b", "config.yaml"), path)
	assert.Equal(t, filepath.Clean(env.RootDir()), env.Path())
}

func TestTestEnv_WriteFileString(t *testing.T) {
	env := NewTestEnv(t)

	path := env.WriteFileString("nested/dir/config.yaml", "omdb:\n  timeout: 5s\n")

	assert.True(t, env.FileExists("nested/dir/config.yaml"))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "omdb:\n  timeout: 5s\n", string(content))
}

func TestIsolateConfig(t *testing.T) {
	env := NewTestEnv(t)
	viper.Set("omdb.api_key", "leaked")

	IsolateConfig(t, env)

	assert.False(t, viper.IsSet("omdb.api_key"))
	assert.Equal(t, "", os.Getenv("OMDB_API_KEY"))
	assert.Equal(t, env.Path("config"), os.Getenv("XDG_CONFIG_HOME"))
}

func TestOMDBServer_RecordsQueries(t *testing.T) {
	server := NewOMDBServer(t, http.StatusOK, `{"Response":"True"}`)

	assert.Equal(t, 0, server.Requests())
	assert.Nil(t, server.LastQuery())

	resp, err := http.Get(server.URL + "/?t=Alien&y=1979")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"Response":"True"}`, string(body))
	assert.Equal(t, 1, server.Requests())
	assert.Equal(t, "Alien", server.LastQuery().Get("t"))
	assert.Equal(t, "1979", server.LastQuery().Get("y"))
}
