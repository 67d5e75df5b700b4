package config

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func validConfig() *Config {
	return &Config{
		Server:    ServerConfig{Port: "8080"},
		Firestore: FirestoreConfig{ProjectID: "megg", CredentialsBase64: base64.StdEncoding.EncodeToString([]byte(`{"type":"service_account"}`))},
		MongoDB:   MongoDBConfig{URI: "mongodb://localhost:27017", DBName: "megg"},
		Reporting: ReportingConfig{CronSchedule: "0 20 * * *", Timezone: "UTC"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing port", func(c *Config) { c.Server.Port = "" }, "APP_PORT"},
		{"missing project", func(c *Config) { c.Firestore.ProjectID = "" }, "FIREBASE_PROJECT_ID"},
		{"missing credentials", func(c *Config) { c.Firestore.CredentialsBase64 = "" }, "FIREBASE_CREDS"},
		{"bad timezone", func(c *Config) { c.Reporting.Timezone = "Mars/Olympus" }, "TIMEZONE"},
		{"whatsapp without recipient", func(c *Config) {
			c.WhatsApp = WhatsAppConfig{AccessToken: "t", PhoneNumberID: "1"}
		}, "WHATSAPP_REPORT_RECIPIENT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestCredentialsJSON(t *testing.T) {
	creds, source, err := validConfig().Firestore.CredentialsJSON()
	if err != nil || source != "base64" || string(creds) != `{"type":"service_account"}` {
		t.Fatalf("creds = %q source = %q err = %v", creds, source, err)
	}

	_, _, err = FirestoreConfig{CredentialsBase64: "%%%"}.CredentialsJSON()
	if err == nil {
		t.Fatal("expected decode error")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("FIREBASE_PROJECT_ID", "megg")
	t.Setenv("FIREBASE_CREDS_FILE", "/tmp/creds.json")
	t.Setenv("REPORT_ACCOUNT_IDS", " acct-1, ,acct-2 ")
	t.Setenv("TIMEZONE", "UTC")
	for _, key := range []string{"FIREBASE_CREDS_BASE64", "MONGODB_DB_NAME", "SHEETS_EXPORT_RANGE", "GOOGLE_SHEETS_CREDENTIALS_PATH", "WHATSAPP_TOKEN"} {
		t.Setenv(key, "")
	}

	cfg, err := Load("testdata/does-not-exist.env")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.MongoDB.DBName != "megg" || cfg.Sheets.ExportRange != "Inventory!A:L" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if diff := cmp.Diff([]string{"acct-1", "acct-2"}, cfg.Reporting.AccountIDs); diff != "" {
		t.Fatalf("account ids (-want +got):\n%s", diff)
	}
	if cfg.Sheets.Enabled() || cfg.WhatsApp.Enabled() {
		t.Fatal("optional integrations should be disabled by default")
	}
}
