package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rocjay1/bo-ledger/internal/models"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// HTTP Server
	Port string

	// Table Storage
	TableServiceURL string
	EntriesTable    string
	AccountsTable   string
	CategoriesTable string

	// Blob Storage
	BlobServiceURL  string
	ImportContainer string
	BackupContainer string

	// Queue Storage
	QueueServiceURL string
	ImportQueue     string

	// Communication Services
	CommunicationServicesEndpoint string
	SenderEmail                   string
	UserEmail                     string

	// Ledger
	TagCardIDs bool
	RolesFile  string
	Roles      models.RoleMatchers
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}

	cfg := &Config{
		Port: getEnv("FUNCTIONS_CUSTOMHANDLER_PORT", "8080"),

		TableServiceURL: getEnv("TABLE_SERVICE_URL", ""),
		EntriesTable:    getEnv("ENTRIES_TABLE", "entries"),
		AccountsTable:   getEnv("ACCOUNTS_TABLE", "accounts"),
		CategoriesTable: getEnv("CATEGORIES_TABLE", "categories"),

		BlobServiceURL:  getEnv("BLOB_SERVICE_URL", ""),
		ImportContainer: getEnv("IMPORT_CONTAINER", "imports"),
		BackupContainer: getEnv("BACKUP_CONTAINER", "backups"),

		QueueServiceURL: getEnv("QUEUE_SERVICE_URL", ""),
		ImportQueue:     getEnv("IMPORT_QUEUE", "ledger-imports"),

		CommunicationServicesEndpoint: getEnv("COMMUNICATION_SERVICES_ENDPOINT", ""),
		SenderEmail:                   getEnv("SENDER_EMAIL", ""),
		UserEmail:                     getEnv("USER_EMAIL", ""),

		TagCardIDs: getEnvBool("TAG_CARD_IDS", false),
		RolesFile:  getEnv("ROLES_FILE", ""),
		Roles:      models.DefaultRoleMatchers(),
	}

	if cfg.RolesFile != "" {
		roles, err := LoadRoles(cfg.RolesFile)
		if err != nil {
			return nil, err
		}
		cfg.Roles = roles
	}

	return cfg, nil
}

// LoadRoles reads the category role table. Roles missing from the file keep
// their default matcher.
func LoadRoles(path string) (models.RoleMatchers, error) {
	roles := models.DefaultRoleMatchers()

	data, err := os.ReadFile(path)
	if err != nil {
		return roles, fmt.Errorf("failed to read roles file: %w", err)
	}

	var file struct {
		Roles models.RoleMatchers `yaml:"roles"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return roles, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if m := strings.TrimSpace(file.Roles.CardPayment); m != "" {
		roles.CardPayment = m
	}
	if m := strings.TrimSpace(file.Roles.Transfer); m != "" {
		roles.Transfer = m
	}
	return roles, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	required := []struct{ name, value string }{
		{"TABLE_SERVICE_URL", c.TableServiceURL},
		{"BLOB_SERVICE_URL", c.BlobServiceURL},
		{"QUEUE_SERVICE_URL", c.QueueServiceURL},
	}
	for _, r := range required {
		if r.value == "" {
			errors = append(errors, fmt.Sprintf("%s environment variable is required", r.name))
			continue
		}
		if _, err := url.ParseRequestURI(r.value); err != nil {
			errors = append(errors, fmt.Sprintf("invalid %s '%s': %v", r.name, r.value, err))
		}
	}

	names := []struct{ name, value string }{
		{"ENTRIES_TABLE", c.EntriesTable},
		{"ACCOUNTS_TABLE", c.AccountsTable},
		{"CATEGORIES_TABLE", c.CategoriesTable},
		{"IMPORT_CONTAINER", c.ImportContainer},
		{"BACKUP_CONTAINER", c.BackupContainer},
		{"IMPORT_QUEUE", c.ImportQueue},
	}
	for _, n := range names {
		if strings.TrimSpace(n.value) == "" {
			errors = append(errors, fmt.Sprintf("%s cannot be empty", n.name))
		}
	}

	if c.Roles.CardPayment == "" || c.Roles.Transfer == "" {
		errors = append(errors, "category roles card_payment and transfer must both be set")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// EmailEnabled reports whether outgoing mail is configured.
func (c *Config) EmailEnabled() bool {
	return c.CommunicationServicesEndpoint != "" && c.SenderEmail != "" && c.UserEmail != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
