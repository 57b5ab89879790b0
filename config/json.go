package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/theracare/sessioncore/internal/flagx"
	"github.com/theracare/sessioncore/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. Interval fields use timex.Duration, which accepts both string
// values such as "30s" and integer nanoseconds. After unmarshalling, its
// fields are copied into the runtime Config.
type JsonConfig struct {
	DatabaseDSN         string         `json:"database_dsn"`
	NoteMasterKey       string         `json:"note_master_key"`
	NoteKeySalt         string         `json:"note_key_salt"`
	StateSecretKey      string         `json:"state_secret_key"`
	StateTokenValidity  timex.Duration `json:"state_token_validity"`
	GoogleClientID      string         `json:"google_client_id"`
	GoogleClientSecret  string         `json:"google_client_secret"`
	GoogleRedirectURL   string         `json:"google_redirect_url"`
	CalendarCallTimeout timex.Duration `json:"calendar_call_timeout"`
	TokenExpiryLeeway   timex.Duration `json:"token_expiry_leeway"`
	S3RootUser          string         `json:"s3_root_user"`
	S3RootPassword      string         `json:"s3_root_password"`
	S3Bucket            string         `json:"s3_bucket"`
	S3Region            string         `json:"s3_region"`
	S3BaseEndpoint      string         `json:"s3_base_endpoint"`
	PresignValidity     timex.Duration `json:"presign_validity"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c/-config flags; when
// neither is set, no JSON file is loaded. Unset fields keep their previous
// values. An unreadable or invalid file panics: a broken config file is a
// deployment error, not a condition to limp through.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setDuration := func(dst *time.Duration, v timex.Duration) {
		if v.Duration != 0 {
			*dst = v.Duration
		}
	}

	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.NoteMasterKey, c.NoteMasterKey)
	setString(&config.NoteKeySalt, c.NoteKeySalt)
	setString(&config.StateSecretKey, c.StateSecretKey)
	setDuration(&config.StateTokenValidity, c.StateTokenValidity)
	setString(&config.GoogleClientID, c.GoogleClientID)
	setString(&config.GoogleClientSecret, c.GoogleClientSecret)
	setString(&config.GoogleRedirectURL, c.GoogleRedirectURL)
	setDuration(&config.CalendarCallTimeout, c.CalendarCallTimeout)
	setDuration(&config.TokenExpiryLeeway, c.TokenExpiryLeeway)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setDuration(&config.PresignValidity, c.PresignValidity)
}
