package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets the variables Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"GITHUB_TOKEN", "CONTRIBS_ACCOUNTS", "CONTRIBS_REFERENCE_ORG"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contribs.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, &Config{ReferenceOrg: DefaultReferenceOrg}, cfg)
	assert.Nil(t, cfg.Accounts)
}

func TestLoad_MissingFileFails(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONTRIBS_ACCOUNTS", "alice")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.ErrorContains(t, err, "reading config file")
	assert.Nil(t, cfg)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
token = "file-token"
accounts = ["alice", "Bob"]
reference_org = "acme"
concurrency = 4
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Token:        "file-token",
		Accounts:     []string{"alice", "Bob"},
		ReferenceOrg: "acme",
		Concurrency:  4,
	}, cfg)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
token = "file-token"
accounts = ["alice"]
reference_org = "acme"
`)
	t.Setenv("GITHUB_TOKEN", "env-token")
	t.Setenv("CONTRIBS_ACCOUNTS", " carol, ,dave ")
	t.Setenv("CONTRIBS_REFERENCE_ORG", "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Token)
	assert.Equal(t, []string{"carol", "dave"}, cfg.Accounts)
	assert.Empty(t, cfg.ReferenceOrg)
}

func TestLoad_InvalidFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `accounts = "not-a-list`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "decoding config file")
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{}, SplitList(""))
	assert.Equal(t, []string{"a", "b"}, SplitList("a,, b ,"))
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name          string
		cfg           Config
		expectedField string
	}{
		{
			name:          "missing accounts",
			cfg:           Config{ReferenceOrg: "acme"},
			expectedField: "accounts",
		},
		{
			name:          "empty accounts without reference organization",
			cfg:           Config{Accounts: []string{}},
			expectedField: "accounts",
		},
		{
			name:          "negative concurrency",
			cfg:           Config{Accounts: []string{"alice"}, Concurrency: -2},
			expectedField: "concurrency",
		},
		{
			name: "empty accounts with reference organization",
			cfg:  Config{Accounts: []string{}, ReferenceOrg: "acme"},
		},
		{
			name: "accounts only",
			cfg:  Config{Accounts: []string{"alice"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.expectedField == "" {
				assert.NoError(t, err)
				return
			}
			var cfgErr *Error
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tc.expectedField, cfgErr.Field)
		})
	}
}
