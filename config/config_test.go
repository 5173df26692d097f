package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProduction() *Config {
	return &Config{
		Server:   ServerConfig{Port: "8080"},
		Database: DatabaseConfig{Host: "localhost", Port: 5432, User: "postgres", Name: "solarcrm"},
		Firebase: FirebaseConfig{CredentialsPath: "/etc/firebase/creds.json"},
		App:      AppConfig{Mode: ModeProduction},
	}
}

func TestValidateProduction(t *testing.T) {
	require.NoError(t, validProduction().Validate())

	noPort := validProduction()
	noPort.Server.Port = ""
	assert.Error(t, noPort.Validate())

	noHost := validProduction()
	noHost.Database.Host = ""
	assert.Error(t, noHost.Validate())

	badMode := validProduction()
	badMode.App.Mode = "staging"
	assert.Error(t, badMode.Validate())
}

func TestValidateProductionRequiresFirebase(t *testing.T) {
	cfg := validProduction()
	cfg.Firebase.CredentialsPath = ""

	err := cfg.Validate()
	require.Error(t, err, "header identity is spoofable; production must verify tokens")
	assert.Contains(t, err.Error(), "FIREBASE_CREDENTIALS_PATH")
}

func TestValidateDemoNeedsNoBackingServices(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Port: "8080"},
		App:    AppConfig{Mode: ModeDemo},
	}
	assert.NoError(t, cfg.Validate())
}
