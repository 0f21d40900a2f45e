package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fernet/fernet-go"

	"github.com/masarify/finance-tracker-backend/internal/apperrors"
)

// FeedTokenKey is the settings key holding the encrypted market data feed token.
const FeedTokenKey = "feed_access_token"

// SettingsRepository provides data access methods for the settings table.
// Secret values are stored as fernet tokens so the database file never holds
// plaintext credentials.
type SettingsRepository struct {
	db   *sql.DB
	keys []*fernet.Key
}

// NewSettingsRepository creates a new SettingsRepository. The fernet key is
// optional; the encrypted accessors fail with apperrors.ErrConfiguration
// when no key was configured.
func NewSettingsRepository(db *sql.DB, fernetKey string) (*SettingsRepository, error) {
	repo := &SettingsRepository{db: db}
	if fernetKey != "" {
		keys, err := fernet.DecodeKeys(fernetKey)
		if err != nil {
			return nil, fmt.Errorf("%w: bad fernet key: %v", apperrors.ErrConfiguration, err)
		}
		repo.keys = keys
	}
	return repo, nil
}

// Set stores a plaintext settings value.
func (r *SettingsRepository) Set(key, value string) error {
	_, err := r.db.Exec(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, FormatTimestamp(time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("failed to store setting: %w", err)
	}
	return nil
}

// Get retrieves a plaintext settings value.
// Returns apperrors.ErrSettingNotFound if the key is absent.
func (r *SettingsRepository) Get(key string) (string, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperrors.ErrSettingNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query setting: %w", err)
	}
	return value, nil
}

// SetEncrypted encrypts a value with the configured fernet key and stores it.
func (r *SettingsRepository) SetEncrypted(key, value string) error {
	if len(r.keys) == 0 {
		return fmt.Errorf("%w: no fernet key configured", apperrors.ErrConfiguration)
	}
	token, err := fernet.EncryptAndSign([]byte(value), r.keys[0])
	if err != nil {
		return fmt.Errorf("failed to encrypt setting: %w", err)
	}
	return r.Set(key, string(token))
}

// GetEncrypted retrieves and decrypts a fernet-encrypted settings value.
func (r *SettingsRepository) GetEncrypted(key string) (string, error) {
	if len(r.keys) == 0 {
		return "", fmt.Errorf("%w: no fernet key configured", apperrors.ErrConfiguration)
	}
	stored, err := r.Get(key)
	if err != nil {
		return "", err
	}
	plain := fernet.VerifyAndDecrypt([]byte(stored), 0, r.keys)
	if plain == nil {
		return "", fmt.Errorf("%w: stored token failed verification", apperrors.ErrConfiguration)
	}
	return string(plain), nil
}
