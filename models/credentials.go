package models

// Credentials are held in memory only.
type Credentials struct {
	APIKey     string
	Secret     string
	Passphrase string
}

func (c Credentials) String() string {
	return "Credentials{APIKey: " + redact(c.APIKey) + ", Secret: " + redact(c.Secret) + ", Passphrase: " + redact(c.Passphrase) + "}"
}

func redact(s string) string {
	if s == "" {
		return `""`
	}
	return "***"
}
