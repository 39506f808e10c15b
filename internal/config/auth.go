package config

type AuthConfig struct {
	Provider string          `yaml:"provider"` // jwt, firebase
	Firebase *FirebaseConfig `yaml:"firebase"`
}

type FirebaseConfig struct {
	ProjectID       string `yaml:"project_id"`
	CredentialsFile string `yaml:"credentials_file"`
	CheckRevoked    bool   `yaml:"check_revoked"`
}

func loadAuthConfig() *AuthConfig {
	return &AuthConfig{
		Provider: getEnv("AUTH_PROVIDER", "jwt"),
		Firebase: &FirebaseConfig{
			ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
			CredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
			CheckRevoked:    getEnvAsBool("FIREBASE_CHECK_REVOKED", false),
		},
	}
}
