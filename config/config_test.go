package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/spiffcs/issuebot/internal/constants"
	"github.com/spiffcs/issuebot/internal/model"
)

const fullYAML = `
api_endpoint: https://github.example.com/api/graphql
api_key: secret-token
ssl_verify: false
owner: octo
repository: repo
bot_login: octo-bot
batch_size: 25
label_ids:
  inactive: LA_1
  pending_closure: LA_2
  automatically_closed: LA_3
first_message: first
second_message: second
final_message: final
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// isolate points the global config dir and cwd at empty temp dirs.
func isolate(t *testing.T) (globalDir, workDir string) {
	t.Helper()
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvConfigPath, "")
	t.Setenv(EnvToken, "")
	workDir = t.TempDir()
	t.Chdir(workDir)
	return filepath.Join(xdg, "issuebot"), workDir
}

func TestLoadExplicitPath(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "bot.yaml")
	writeFile(t, path, fullYAML)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://github.example.com/api/graphql", cfg.Endpoint())
	assert.False(t, cfg.VerifySSL())
	assert.Equal(t, "octo/repo", cfg.FullName())
	assert.Equal(t, 25, cfg.Batch())
	assert.Equal(t, model.LabelIDs{Inactive: "LA_1", PendingClosure: "LA_2", AutomaticallyClosed: "LA_3"}, cfg.LabelIDs)
	assert.Equal(t, "secret-token", cfg.Token())
}

func TestLoadFromEnvironment(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "env.yaml")
	writeFile(t, path, "owner: from-env\n")
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Owner)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadMergesGlobalAndLocal(t *testing.T) {
	globalDir, workDir := isolate(t)
	writeFile(t, filepath.Join(globalDir, "config.yaml"), fullYAML)
	writeFile(t, filepath.Join(workDir, ".issuebot.yaml"), `
repository: other-repo
ssl_verify: true
label_ids:
  inactive: LA_local
`)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "octo", cfg.Owner)
	assert.Equal(t, "other-repo", cfg.Repository)
	assert.True(t, cfg.VerifySSL())
	assert.Equal(t, 25, cfg.BatchSize)
	assert.Equal(t, "LA_local", cfg.LabelIDs.Inactive)
	assert.Equal(t, "LA_2", cfg.LabelIDs.PendingClosure)
	assert.Equal(t, "first", cfg.FirstMessage)
}

func TestLoadNoFiles(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultGraphQLEndpoint, cfg.Endpoint())
	assert.True(t, cfg.VerifySSL())
	assert.Equal(t, constants.DefaultBatchSize, cfg.Batch())
}

func TestLoadMalformed(t *testing.T) {
	globalDir, _ := isolate(t)
	writeFile(t, filepath.Join(globalDir, "config.yaml"), "owner: [unterminated\n")

	_, err := Load("")
	assert.Error(t, err)
}

func TestValidateReportsEveryMissingKey(t *testing.T) {
	cfg := &Config{Owner: "octo", LabelIDs: model.LabelIDs{Inactive: "LA_1"}, FirstMessage: "  "}

	err := cfg.Validate()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{
		"repository",
		"label_ids.pending_closure",
		"label_ids.automatically_closed",
		"first_message",
		"second_message",
		"final_message",
	}, verr.Missing)
	assert.Contains(t, err.Error(), "repository, label_ids.pending_closure")
}

func TestValidateBatchSize(t *testing.T) {
	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(fullYAML), &cfg))

	cfg.BatchSize = constants.MaxBatchSize + 1
	assert.Error(t, cfg.Validate())

	cfg.BatchSize = 0
	assert.NoError(t, cfg.Validate())
}

func TestTokenFallsBackToEnvironment(t *testing.T) {
	t.Setenv(EnvToken, "env-token")

	assert.Equal(t, "env-token", (&Config{}).Token())
	assert.Equal(t, "file-token", (&Config{APIKey: "file-token"}).Token())
}

func TestBatch(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, constants.DefaultBatchSize},
		{-5, constants.DefaultBatchSize},
		{10, 10},
		{500, constants.MaxBatchSize},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, (&Config{BatchSize: tt.in}).Batch(), "batch_size %d", tt.in)
	}
}

func TestPolicyConfig(t *testing.T) {
	cfg := &Config{FirstMessage: "a", SecondMessage: "b", FinalMessage: "c", LabelIDs: model.LabelIDs{Inactive: "LA_1"}}

	pc := cfg.PolicyConfig("token-user")
	assert.Equal(t, "token-user", pc.BotLogin)
	assert.Equal(t, "a", pc.FirstMessage)
	assert.Equal(t, "LA_1", pc.LabelIDs.Inactive)

	cfg.BotLogin = "configured-bot"
	assert.Equal(t, "configured-bot", cfg.PolicyConfig("token-user").BotLogin)
}

func TestClientOptions(t *testing.T) {
	t.Setenv(EnvToken, "")
	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(fullYAML), &cfg))

	opts := cfg.ClientOptions()
	assert.Equal(t, "secret-token", opts.Token)
	assert.False(t, opts.SSLVerify)
	assert.Equal(t, "octo", opts.Owner)
	assert.Equal(t, "repo", opts.Repo)
	assert.Equal(t, 25, opts.BatchSize)
}

func TestRedactedHidesToken(t *testing.T) {
	cfg := &Config{APIKey: "secret-token", Owner: "octo"}

	out, err := cfg.Redacted().ToYAML()
	require.NoError(t, err)
	assert.NotContains(t, out, "secret-token")
	assert.Contains(t, out, "********")
	assert.Equal(t, "secret-token", cfg.APIKey, "original must be untouched")
}

func TestMinimalConfigParses(t *testing.T) {
	var cfg Config
	require.NoError(t, yaml.Unmarshal([]byte(MinimalConfig()), &cfg))

	assert.Equal(t, "my-org", cfg.Owner)
	assert.True(t, strings.HasPrefix(cfg.FirstMessage, "This issue has had no activity for six months."))

	var verr *ValidationError
	require.True(t, errors.As(cfg.Validate(), &verr))
	assert.Equal(t, []string{"label_ids.inactive", "label_ids.pending_closure", "label_ids.automatically_closed"}, verr.Missing)
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, SaveTo(path, MinimalConfig()))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "my-repo", cfg.Repository)
}
