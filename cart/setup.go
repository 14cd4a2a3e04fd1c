package cart

import (
	"strings"

	"github.com/fxpgr/go-crypto-cart/api"
	"github.com/fxpgr/go-crypto-cart/config"
	"github.com/fxpgr/go-crypto-cart/models"
)

// ResolveExchangeID returns configured when it names a supported exchange,
// otherwise it keeps asking until the user picks one.
func ResolveExchangeID(p *Prompter, configured string) (string, error) {
	if configured != "" {
		if api.IsSupported(configured) {
			return strings.ToLower(configured), nil
		}
		p.Say("Invalid exchange.")
	}
	for {
		p.Say("Please Select an Exchange:")
		for _, id := range api.Exchanges() {
			p.Say("%s", id)
		}
		answer, err := p.Ask("")
		if err != nil {
			return "", err
		}
		if api.IsSupported(answer) {
			return strings.ToLower(answer), nil
		}
		p.Say("Invalid exchange.")
	}
}

// ResolveCredentials fills whatever cfg lacks by asking the user. The
// passphrase is only asked for on exchanges that use one.
func ResolveCredentials(p *Prompter, cfg *config.Config, exchangeID string) (models.Credentials, error) {
	creds := models.Credentials{
		APIKey:     cfg.APIKey,
		Secret:     cfg.APISecret,
		Passphrase: cfg.APIPassword,
	}
	var err error
	if creds.APIKey == "" {
		if creds.APIKey, err = askRequired(p, "Please enter your "+exchangeID+" API key:"); err != nil {
			return creds, err
		}
	}
	if creds.Secret == "" {
		if creds.Secret, err = askRequired(p, "Please enter your "+exchangeID+" API secret:"); err != nil {
			return creds, err
		}
	}
	if creds.Passphrase == "" && api.RequiresPassphrase(exchangeID) {
		if creds.Passphrase, err = askRequired(p, "Please enter your "+exchangeID+" API passphrase:"); err != nil {
			return creds, err
		}
	}
	return creds, nil
}

func askRequired(p *Prompter, question string) (string, error) {
	for {
		answer, err := p.Ask(question)
		if err != nil {
			return "", err
		}
		if answer != "" {
			return answer, nil
		}
	}
}
