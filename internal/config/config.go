package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level kontor.yaml configuration.
type Config struct {
	Business BusinessConfig `yaml:"business"`
	Server   ServerConfig   `yaml:"server"`
	TaxKeys  []TaxKeyConfig `yaml:"tax_keys,omitempty"`
	Policy   PolicyConfig   `yaml:"policy"`
	Period   PeriodConfig   `yaml:"period"`
	Git      GitConfig      `yaml:"git"`
}

// BusinessConfig identifies the business entity.
type BusinessConfig struct {
	Name      string `yaml:"name"`
	LegalForm string `yaml:"legal_form"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // "debug" or "release"
}

// TaxKeyConfig is one tax key entry; rate is a percentage like "19".
type TaxKeyConfig struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
	Rate string `yaml:"rate"`
}

// PolicyConfig maps booking roles to chart-of-accounts codes.
type PolicyConfig struct {
	ReceivableAccount string            `yaml:"receivable_account"`
	InputTaxAccounts  map[string]string `yaml:"input_tax_accounts"`
	OutputTaxAccounts map[string]string `yaml:"output_tax_accounts"`
}

// PeriodConfig locks closed accounting periods. Postings dated on or
// before LockedThrough fail.
type PeriodConfig struct {
	LockedThrough string `yaml:"locked_through,omitempty"` // "2006-01-02"
}

// GitConfig controls git integration for the data directory.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a kontor.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(businessName, legalForm string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name:      businessName,
			LegalForm: legalForm,
		},
		Server: ServerConfig{
			Port: "8080",
			Mode: "release",
		},
		TaxKeys: []TaxKeyConfig{
			{Code: "UST19", Name: "Umsatzsteuer 19%", Rate: "19"},
			{Code: "UST7", Name: "Umsatzsteuer 7%", Rate: "7"},
			{Code: "VST19", Name: "Vorsteuer 19%", Rate: "19"},
			{Code: "VST7", Name: "Vorsteuer 7%", Rate: "7"},
			{Code: "UST0", Name: "Steuerfrei", Rate: "0"},
		},
		Policy: PolicyConfig{
			ReceivableAccount: "1400",
			InputTaxAccounts:  map[string]string{"VST19": "1576", "VST7": "1571"},
			OutputTaxAccounts: map[string]string{"UST19": "1776", "UST7": "1771"},
		},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "Kontor",
			AuthorEmail: "bot@kontor.dev",
		},
	}
}
