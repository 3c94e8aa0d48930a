package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "kafka", cfg.Queue.Driver)
	assert.Equal(t, "email.delivery", cfg.Kafka.Topic)
	assert.Equal(t, 1, cfg.Worker.Threads)
	assert.Equal(t, "stdout", cfg.Mailer.Driver)
	assert.Equal(t, "no-reply@roblox.com", cfg.Senders.NoReplyAddress)
	assert.Equal(t, "info@roblox.com", cfg.Senders.InfoAddress)
	assert.Equal(t, 2*time.Second, cfg.Validation.LookupTimeout)
	assert.Equal(t, 10*time.Minute, cfg.Validation.CacheTTL)
	assert.False(t, cfg.SendGrid.Enabled())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
queue:
  driver: sqs
sqs:
  queue_url: https://sqs.us-east-1.amazonaws.com/123/email
sendgrid:
  api_key: SG.file
  email_types_csv: "Welcome, PasswordReset"
validation:
  shady_domains: ["mailinator.com"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqs", cfg.Queue.Driver)
	assert.Equal(t, "https://sqs.us-east-1.amazonaws.com/123/email", cfg.SQS.QueueURL)
	assert.Equal(t, "Welcome, PasswordReset", cfg.SendGrid.EmailTypesCSV)
	assert.True(t, cfg.SendGrid.Enabled())
	assert.Equal(t, []string{"mailinator.com"}, cfg.Validation.ShadyDomains)
	// untouched keys keep their defaults
	assert.Equal(t, int32(20), cfg.SQS.WaitTimeSeconds)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
sendgrid:
  api_key: SG.file
`)
	t.Setenv("EMAILD_SENDGRID_API_KEY", "SG.env")
	t.Setenv("EMAILD_WORKER_THREADS", "8")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "SG.env", cfg.SendGrid.APIKey)
	assert.Equal(t, 8, cfg.Worker.Threads)
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "kafka", cfg.Queue.Driver)
}

func TestSplitKeyPair(t *testing.T) {
	key, secret, ok := SplitKeyPair("AKIA:s3cr3t")
	assert.True(t, ok)
	assert.Equal(t, "AKIA", key)
	assert.Equal(t, "s3cr3t", secret)

	for _, in := range []string{"", "AKIA", "AKIA:", ":secret"} {
		_, _, ok := SplitKeyPair(in)
		assert.False(t, ok, in)
	}
}

func TestWatcher_PublishesToSubscribers(t *testing.T) {
	w, err := NewWatcher("", nil)
	require.NoError(t, err)

	var got []string
	sub := w.Subscribe(func(c Config) { got = append(got, c.SendGrid.EmailTypesCSV) })

	next := w.Current()
	next.SendGrid.EmailTypesCSV = "Welcome"
	w.publish(next)

	assert.Equal(t, []string{"Welcome"}, got)
	assert.Equal(t, "Welcome", w.Current().SendGrid.EmailTypesCSV)

	sub.Close()
	next.SendGrid.EmailTypesCSV = "Other"
	w.publish(next)

	assert.Equal(t, []string{"Welcome"}, got, "closed subscription must not be called")
	assert.Equal(t, "Other", w.Current().SendGrid.EmailTypesCSV)
}

func TestWatcher_ReloadsFileOnChange(t *testing.T) {
	path := writeConfig(t, `
sendgrid:
  email_types_csv: "Welcome"
`)
	w, err := NewWatcher(path, nil)
	require.NoError(t, err)
	require.Equal(t, "Welcome", w.Current().SendGrid.EmailTypesCSV)

	changed := make(chan string, 16)
	sub := w.Subscribe(func(c Config) {
		select {
		case changed <- c.SendGrid.EmailTypesCSV:
		default:
		}
	})
	defer sub.Close()

	require.NoError(t, os.WriteFile(path, []byte("sendgrid:\n  email_types_csv: \"Welcome,Digest\"\n"), 0o644))

	// a single write can surface as several fs events; wait for the final content
	deadline := time.After(5 * time.Second)
	for seen := ""; seen != "Welcome,Digest"; {
		select {
		case seen = <-changed:
		case <-deadline:
			t.Fatal("config change was not observed")
		}
	}
	// defaults survive a re-read of the user file
	assert.Equal(t, "kafka", w.Current().Queue.Driver)
}
