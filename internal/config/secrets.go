package config

import (
	"encoding/json"
	"fmt"
	"os"

	"dario.cat/mergo"
	"github.com/Shopify/ejson"
	"github.com/caarlos0/env/v6"
	"k8s.io/klog"
)

const (
	// EjsonKeyEnv holds the ejson private key used to decrypt the secrets file.
	EjsonKeyEnv = "CGDSCRAPER_EJSON_KEY"
	ejsonKeyDir = "/opt/ejson/keys"
)

// Secrets are the credentials kept out of cgdscraper.yaml.
type Secrets struct {
	ContractNumber string `json:"contract_number" env:"CGD_CONTRACT_NUMBER"`
	AccessCode     string `json:"access_code" env:"CGD_ACCESS_CODE"`
	AccountNumber  string `json:"account_number" env:"CGD_ACCOUNT_NUMBER"`
	DatabaseURL    string `json:"database_url" env:"DATABASE_URL"`
	InfluxUser     string `json:"influx_user" env:"INFLUX_USER"`
	InfluxPassword string `json:"influx_password" env:"INFLUX_PASSWORD"`
}

// ReadSecrets reads secrets from the environment and, when secretsFile is
// set, from an ejson file. Environment values win over file values.
func ReadSecrets(secretsFile string) (*Secrets, error) {
	envSecrets, err := readEnvSecrets()
	if err != nil {
		return nil, fmt.Errorf("reading env secrets: %w", err)
	}
	if secretsFile == "" {
		return envSecrets, nil
	}

	fileSecrets, err := readEjsonSecrets(secretsFile)
	if err != nil {
		return nil, fmt.Errorf("reading secrets file %s: %w", secretsFile, err)
	}

	if err := mergo.Merge(envSecrets, *fileSecrets); err != nil {
		return nil, fmt.Errorf("merging secrets: %w", err)
	}
	klog.V(2).Infof("Loaded secrets from environment and %s", secretsFile)
	return envSecrets, nil
}

func readEjsonSecrets(filename string) (*Secrets, error) {
	raw, err := ejson.DecryptFile(filename, ejsonKeyDir, os.Getenv(EjsonKeyEnv))
	if err != nil {
		return nil, err
	}

	var s Secrets
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parsing secrets: %w", err)
	}
	return &s, nil
}

func readEnvSecrets() (*Secrets, error) {
	var s Secrets
	if err := env.Parse(&s); err != nil {
		return nil, err
	}
	return &s, nil
}
