package cmd

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/lepinkainen/movierating/internal/config"
	"github.com/lepinkainen/movierating/internal/testutil"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

const guardiansBody = `{
	"Title": "Guardians of the Galaxy",
	"Year": "2014",
	"Ratings": [
		{"Source": "Internet Movie Database", "Value": "8.0/10"},
		{"Source": "Rotten Tomatoes", "Value": "92%"},
		{"Source": "Metacritic", "Value": "76/100"}
	],
	"Response": "True"
}`

const notFoundBody = `{"Response":"False","Error":"Movie not found!"}`

type result struct {
	code   int
	stdout string
	stderr string
}

// setupCmd isolates viper, the environment and the keyring, and moves into the sandbox
func setupCmd(t *testing.T) *testutil.TestEnv {
	t.Helper()

	env := testutil.NewTestEnv(t)
	testutil.IsolateConfig(t, env)
	t.Chdir(env.RootDir())

	origLogger := slog.Default()
	t.Cleanup(func() { slog.SetDefault(origLogger) })

	return env
}

// writeConfig writes a config file pointing the client at baseURL
func writeConfig(t *testing.T, env *testutil.TestEnv, baseURL, extra string) string {
	t.Helper()
	return env.WriteFileString("movierating.yaml", "omdb:\n  base_url: "+baseURL+"\n"+extra)
}

func run(t *testing.T, args ...string) result {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code := Run(args, &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func TestRun_PrintsRating(t *testing.T) {
	env := setupCmd(t)
	server := testutil.NewOMDBServer(t, http.StatusOK, guardiansBody)
	cfg := writeConfig(t, env, server.URL, "")

	res := run(t, "--title", "Guardians of the Galaxy", "--api-key", "flag-key", "--config", cfg)

	assert.Equal(t, 0, res.code)
	assert.Equal(t, "92%\n", res.stdout)
	assert.Empty(t, res.stderr)

	query := server.LastQuery()
	assert.Equal(t, "flag-key", query.Get("apikey"))
	assert.Equal(t, "Guardians of the Galaxy", query.Get("t"))
	assert.Equal(t, "movie", query.Get("type"))
	assert.Equal(t, "1", query.Get("v"))
	assert.False(t, query.Has("y"))
}

func TestRun_NumericYearInResponse(t *testing.T) {
	env := setupCmd(t)
	server := testutil.NewOMDBServer(t, http.StatusOK,
		`{"Response":"True","Year":2014,"Ratings":[{"Source":"Rotten Tomatoes","Value":"92%"}]}`)
	cfg := writeConfig(t, env, server.URL, "")

	res := run(t, "--title", "Guardians of the Galaxy", "--api-key", "k", "--config", cfg)

	assert.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "92%\n", res.stdout)
	assert.Empty(t, res.stderr)
}

func TestRun_SendsYear(t *testing.T) {
	env := setupCmd(t)
	server := testutil.NewOMDBServer(t, http.StatusOK, guardiansBody)
	cfg := writeConfig(t, env, server.URL, "")

	res := run(t, "--title", "Guardians of the Galaxy", "--year", "2014", "--api-key", "k", "--config", cfg)

	assert.Equal(t, 0, res.code)
	assert.Equal(t, "2014", server.LastQuery().Get("y"))
}

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		args     []string
		expected string
	}{
		{
			name:     "movie not found",
			status:   http.StatusOK,
			body:     notFoundBody,
			args:     []string{"--title", "Napolean Dynamite"},
			expected: "We're sorry, but a movie by that name (Napolean Dynamite) was not found",
		},
		{
			name:     "movie not found in year",
			status:   http.StatusOK,
			body:     notFoundBody,
			args:     []string{"--title", "Guardians of the Galaxy", "--year", "1999"},
			expected: "We're sorry, but a movie by that name (Guardians of the Galaxy) in that year (1999) was not found",
		},
		{
			name:     "invalid api key",
			status:   http.StatusUnauthorized,
			body:     `{"Response":"False","Error":"Invalid API key!"}`,
			args:     []string{"--title", "foo"},
			expected: "Sorry, your API Key was not valid. Please check it and try again.",
		},
		{
			name:     "no ratings",
			status:   http.StatusOK,
			body:     `{"Response":"True","Title":"Obscure"}`,
			args:     []string{"--title", "Obscure"},
			expected: "No Rotten Tomatoes rating was found for this movie",
		},
		{
			name:     "no rotten tomatoes rating",
			status:   http.StatusOK,
			body:     `{"Response":"True","Ratings":[{"Source":"Metacritic","Value":"60/100"}]}`,
			args:     []string{"--title", "Obscure"},
			expected: "No Rotten Tomatoes rating was found for this movie",
		},
		{
			// A failure response other than "Movie not found!" is reported, never silently ignored
			name:     "other api error",
			status:   http.StatusOK,
			body:     `{"Response":"False","Error":"Too many results."}`,
			args:     []string{"--title", "A"},
			expected: "Sorry, the OMDB API returned an error: Too many results.",
		},
		{
			name:     "request limit",
			status:   http.StatusOK,
			body:     `{"Response":"False","Error":"Request limit reached!"}`,
			args:     []string{"--title", "A"},
			expected: "Sorry, the OMDB API request limit has been reached. Please try again later.",
		},
		{
			name:     "busy",
			status:   http.StatusServiceUnavailable,
			args:     []string{"--title", "A"},
			expected: "Sorry, it seems like OMDB is busy. Please try again later.",
		},
		{
			name:     "other status",
			status:   http.StatusBadGateway,
			args:     []string{"--title", "A"},
			expected: "Sorry, there was some error communicating with the OMDB API: Error Code 502",
		},
		{
			name:     "rating ignores unread fields",
			status:   http.StatusOK,
			body:     `{"Response":"True","Year":2014,"Ratings":[{"Source":"Metacritic","Value":"76/100"}]}`,
			args:     []string{"--title", "A"},
			expected: "No Rotten Tomatoes rating was found for this movie",
		},
		{
			name:     "malformed body",
			status:   http.StatusOK,
			body:     `not json`,
			args:     []string{"--title", "A"},
			expected: "Sorry, but the response from OMDB did not contain the expected data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupCmd(t)
			server := testutil.NewOMDBServer(t, tt.status, tt.body)
			cfg := writeConfig(t, env, server.URL, "")

			args := append([]string{"--api-key", "k", "--config", cfg}, tt.args...)
			res := run(t, args...)

			assert.Equal(t, 1, res.code)
			assert.Empty(t, res.stdout)
			assert.Equal(t, tt.expected+"\n", res.stderr)
			assert.Equal(t, 1, server.Requests())
		})
	}
}

func TestRun_ArgumentErrorsMakeNoRequest(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		contains []string
	}{
		{
			name:     "missing title",
			args:     []string{"--api-key", "k"},
			contains: []string{"--title"},
		},
		{
			name:     "non-integer year",
			args:     []string{"--title", "Alien", "--year", "200a", "--api-key", "k"},
			contains: []string{"--year", "200a"},
		},
		{
			name:     "unknown flag",
			args:     []string{"--title", "Alien", "--colour"},
			contains: []string{"--colour"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupCmd(t)
			server := testutil.NewOMDBServer(t, http.StatusOK, guardiansBody)
			cfg := writeConfig(t, env, server.URL, "")

			res := run(t, append(tt.args, "--config", cfg)...)

			assert.Equal(t, 1, res.code)
			assert.Empty(t, res.stdout)
			for _, want := range tt.contains {
				assert.Contains(t, res.stderr, want)
			}
			assert.Equal(t, 0, server.Requests())
		})
	}
}

func TestRun_Help(t *testing.T) {
	setupCmd(t)

	res := run(t, "--help")

	assert.Equal(t, 0, res.code)
	assert.Contains(t, res.stdout, "--title")
	assert.Contains(t, res.stdout, "--api-key")
}

func TestRun_MissingAPIKey(t *testing.T) {
	env := setupCmd(t)
	server := testutil.NewOMDBServer(t, http.StatusOK, guardiansBody)
	cfg := writeConfig(t, env, server.URL, "")

	res := run(t, "--title", "Alien", "--config", cfg)

	assert.Equal(t, 1, res.code)
	assert.Empty(t, res.stdout)
	assert.Equal(t, "You must provide an --api-key or have OMDB_API_KEY set in your environment\n", res.stderr)
	assert.Equal(t, 0, server.Requests())
}

func TestRun_APIKeyResolutionOrder(t *testing.T) {
	tests := []struct {
		name      string
		flag      string
		env       string
		configKey string
		keyring   string
		expected  string
	}{
		{name: "flag wins", flag: "flag-key", env: "env-key", configKey: "file-key", keyring: "ring-key", expected: "flag-key"},
		{name: "environment", env: "env-key", configKey: "file-key", keyring: "ring-key", expected: "env-key"},
		{name: "config file", configKey: "file-key", keyring: "ring-key", expected: "file-key"},
		{name: "keyring", keyring: "ring-key", expected: "ring-key"},
		{name: "blank flag falls through", flag: "   ", env: "env-key", expected: "env-key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupCmd(t)
			server := testutil.NewOMDBServer(t, http.StatusOK, guardiansBody)

			extra := ""
			if tt.configKey != "" {
				extra = "  api_key: " + tt.configKey + "\n"
			}
			cfg := writeConfig(t, env, server.URL, extra)

			t.Setenv("OMDB_API_KEY", tt.env)
			if tt.keyring != "" {
				require.NoError(t, keyring.Set(config.KeyringService, config.KeyringAccount, tt.keyring))
			}

			args := []string{"--title", "Alien", "--config", cfg}
			if tt.flag != "" {
				args = append(args, "--api-key", tt.flag)
			}
			res := run(t, args...)

			require.Equal(t, 0, res.code, res.stderr)
			assert.Equal(t, tt.expected, server.LastQuery().Get("apikey"))
		})
	}
}

func TestRun_ConfigFromUserConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("user config dir follows XDG_CONFIG_HOME only on linux")
	}
	env := setupCmd(t)
	server := testutil.NewOMDBServer(t, http.StatusOK, guardiansBody)
	env.WriteFileString("config/movierating/config.yaml", "omdb:\n  api_key: dir-key\n  base_url: "+server.URL+"\n")

	res := run(t, "--title", "Alien")

	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "dir-key", server.LastQuery().Get("apikey"))
}

func TestRun_ConfigFromWorkingDir(t *testing.T) {
	env := setupCmd(t)
	server := testutil.NewOMDBServer(t, http.StatusOK, guardiansBody)
	env.WriteFileString("config.yaml", "omdb:\n  api_key: cwd-key\n  base_url: "+server.URL+"\n")

	res := run(t, "--title", "Alien")

	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "cwd-key", server.LastQuery().Get("apikey"))
}

func TestRun_UnreadableConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string // empty means the file is not created
	}{
		{name: "missing file"},
		{name: "scalar document", content: "just a string\n"},
		{name: "broken yaml", content: "omdb:\n  base_url: [unclosed\n  timeout: 5s\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupCmd(t)
			path := env.Path("movierating.yaml")
			if tt.content != "" {
				path = env.WriteFileString("movierating.yaml", tt.content)
			}

			res := run(t, "--title", "Alien", "--api-key", "k", "--config", path)

			assert.Equal(t, 1, res.code)
			assert.Empty(t, res.stdout)
			assert.True(t, strings.HasPrefix(res.stderr, "Sorry, the config file could not be read"), res.stderr)
			assert.Equal(t, 1, strings.Count(res.stderr, "\n"), res.stderr)
			assert.True(t, strings.HasSuffix(res.stderr, "\n"))
		})
	}
}

func TestRun_Timeout(t *testing.T) {
	env := setupCmd(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	cfg := writeConfig(t, env, server.URL, "  timeout: 50ms\n")

	res := run(t, "--title", "Slow", "--api-key", "k", "--config", cfg)

	assert.Equal(t, 1, res.code)
	assert.Empty(t, res.stdout)
	assert.Equal(t, "Sorry, we timed out trying to reach the OMDB API. Please check your network connection and try again later.\n", res.stderr)
}

func TestRun_ConnectionFailure(t *testing.T) {
	env := setupCmd(t)
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()
	cfg := writeConfig(t, env, baseURL, "")

	res := run(t, "--title", "Offline", "--api-key", "secret-key", "--config", cfg)

	assert.Equal(t, 1, res.code)
	assert.Equal(t, "Sorry, we are having trouble reaching the OMDB API. Please check your network connection and try again later.\n", res.stderr)
	assert.NotContains(t, res.stderr, "secret-key")
}

func TestRun_CacheServesRepeatLookups(t *testing.T) {
	env := setupCmd(t)
	server := testutil.NewOMDBServer(t, http.StatusOK, guardiansBody)
	cfg := writeConfig(t, env, server.URL, "")
	dbPath := env.Path("cache", "omdb.db")

	first := run(t, "--title", "Guardians of the Galaxy", "--api-key", "k", "--config", cfg, "--cache", "--cache-db", dbPath)
	second := run(t, "--title", "guardians of the galaxy ", "--api-key", "k", "--config", cfg, "--cache", "--cache-db", dbPath)

	assert.Equal(t, first, second)
	assert.Equal(t, "92%\n", second.stdout)
	assert.Equal(t, 1, server.Requests())
	assert.True(t, env.FileExists("cache/omdb.db"))

	refreshed := run(t, "--title", "Guardians of the Galaxy", "--api-key", "k", "--config", cfg, "--cache", "--cache-db", dbPath, "--refresh")
	assert.Equal(t, first, refreshed)
	assert.Equal(t, 2, server.Requests())
}

func TestRun_CacheKeepsNotFoundOutput(t *testing.T) {
	env := setupCmd(t)
	server := testutil.NewOMDBServer(t, http.StatusOK, notFoundBody)
	cfg := writeConfig(t, env, server.URL, "cache:\n  enabled: true\n  dbfile: "+env.Path("cache.db")+"\n")

	first := run(t, "--title", "Nope", "--year", "1901", "--api-key", "k", "--config", cfg)
	second := run(t, "--title", "Nope", "--year", "1901", "--api-key", "k", "--config", cfg)

	assert.Equal(t, 1, second.code)
	assert.Equal(t, first, second)
	assert.Equal(t, "We're sorry, but a movie by that name (Nope) in that year (1901) was not found\n", second.stderr)
	assert.Equal(t, 1, server.Requests())
}

func TestRun_WithoutCacheFlagDoesNotCache(t *testing.T) {
	env := setupCmd(t)
	server := testutil.NewOMDBServer(t, http.StatusOK, guardiansBody)
	cfg := writeConfig(t, env, server.URL, "")

	for range 2 {
		res := run(t, "--title", "Alien", "--api-key", "k", "--config", cfg)
		require.Equal(t, 0, res.code)
	}
	assert.Equal(t, 2, server.Requests())
}

func TestRun_DebugLogsToStderr(t *testing.T) {
	env := setupCmd(t)
	server := testutil.NewOMDBServer(t, http.StatusOK, guardiansBody)
	cfg := writeConfig(t, env, server.URL, "")

	res := run(t, "--title", "Alien", "--api-key", "secret-key", "--config", cfg, "--debug")

	assert.Equal(t, 0, res.code)
	assert.Equal(t, "92%\n", res.stdout)
	assert.NotEmpty(t, res.stderr)
	assert.NotContains(t, res.stderr, "secret-key")
}

func TestUpdateGlobalConfig(t *testing.T) {
	setupCmd(t)
	config.SetDefaults()

	updateGlobalConfig(&CLI{Cache: true, CacheDB: "/tmp/movies.db", Refresh: true})

	assert.True(t, viper.GetBool("cache.enabled"))
	assert.Equal(t, "/tmp/movies.db", viper.GetString("cache.dbfile"))
	assert.True(t, viper.GetBool("cache.refresh"))
}

func TestUpdateGlobalConfig_KeepsConfigFileValues(t *testing.T) {
	setupCmd(t)
	config.SetDefaults()
	viper.Set("cache.enabled", true)
	viper.Set("cache.dbfile", "/data/cache.db")

	updateGlobalConfig(&CLI{})

	assert.True(t, viper.GetBool("cache.enabled"))
	assert.Equal(t, "/data/cache.db", viper.GetString("cache.dbfile"))
	assert.False(t, viper.GetBool("cache.refresh"))
}
