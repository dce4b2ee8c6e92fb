package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/teemow/calmcp/internal/logging"
)

// ErrMissingAccessToken is returned by SaveTokens when the credential
// set has no access token. Nothing is written in that case.
var ErrMissingAccessToken = errors.New("credential set has no access token")

// Outcome tags the result of a best-effort store read so callers can
// distinguish an absent record from a storage fault without either
// becoming an error.
type Outcome int

const (
	// Found means the record exists and was returned.
	Found Outcome = iota
	// NotFound means the query succeeded and no record exists.
	NotFound
	// Faulted means the storage layer failed; the result is neutral.
	Faulted
)

// String implements fmt.Stringer for log output.
func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	case Faulted:
		return "faulted"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// TokenStore is the credential record store. One record per user id,
// upserted atomically at the database level.
type TokenStore struct {
	db         *gorm.DB
	logger     *slog.Logger
	defaultTTL time.Duration
}

// Open connects to Postgres and runs the additive schema migration for
// the token and sync-state tables.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&TokenRecord{}, &SyncState{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// NewTokenStore creates a token store. defaultTTL substitutes for a
// missing expiry on saved credential sets; zero falls back to one hour.
func NewTokenStore(db *gorm.DB, logger *slog.Logger, defaultTTL time.Duration) *TokenStore {
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenStore{
		db:         db,
		logger:     logger,
		defaultTTL: defaultTTL,
	}
}

// SaveTokens upserts the credential set for userID. The upsert is
// atomic: concurrent saves for the same user resolve to last-write-wins
// at the database, never to duplicate rows. created_at is preserved on
// update; updated_at always advances. userEmail is only written when
// non-empty so a later save without it does not erase the stored value.
//
// A token without an expiry is stored as valid for the configured
// default TTL. That substitution is local policy, not a guarantee from
// the identity provider.
func (s *TokenStore) SaveTokens(ctx context.Context, userID string, token *oauth2.Token, userEmail string) error {
	if token == nil || token.AccessToken == "" {
		return ErrMissingAccessToken
	}

	expiry := token.Expiry
	if expiry.IsZero() {
		expiry = time.Now().Add(s.defaultTTL)
	}

	tokenType := token.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	record := TokenRecord{
		UserID:       userID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    tokenType,
		Scope:        extraString(token, "scope"),
		Expiry:       expiry,
		IDToken:      extraString(token, "id_token"),
		UserEmail:    userEmail,
	}

	updates := []string{"access_token", "refresh_token", "token_type", "scope", "expiry", "id_token", "updated_at"}
	if userEmail != "" {
		updates = append(updates, "user_email")
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns(updates),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to persist tokens: %w", err)
	}

	s.logger.Debug("tokens saved",
		logging.Operation("save_tokens"),
		logging.UserHash(userID),
		slog.Time("expiry", expiry))
	return nil
}

// LoadTokens returns the stored credential set mapped into the
// provider's token shape. Expired records are returned as-is: expiry is
// a caller concern, and an expired token with a refresh token can still
// be renewed.
func (s *TokenStore) LoadTokens(ctx context.Context, userID string) (*oauth2.Token, Outcome) {
	var record TokenRecord
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound
		}
		s.logger.Error("failed to load tokens",
			logging.Operation("load_tokens"),
			logging.UserHash(userID),
			logging.Err(err))
		return nil, Faulted
	}

	token := &oauth2.Token{
		AccessToken:  record.AccessToken,
		RefreshToken: record.RefreshToken,
		TokenType:    record.TokenType,
		Expiry:       record.Expiry,
	}
	extra := map[string]interface{}{}
	if record.Scope != "" {
		extra["scope"] = record.Scope
	}
	if record.IDToken != "" {
		extra["id_token"] = record.IDToken
	}
	if len(extra) > 0 {
		token = token.WithExtra(extra)
	}

	return token, Found
}

// GetUserEmail returns the stored email for userID, independent of
// token validity.
func (s *TokenStore) GetUserEmail(ctx context.Context, userID string) (string, Outcome) {
	var record TokenRecord
	err := s.db.WithContext(ctx).Select("user_email").Where("user_id = ?", userID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", NotFound
		}
		s.logger.Error("failed to load user email",
			logging.Operation("get_user_email"),
			logging.UserHash(userID),
			logging.Err(err))
		return "", Faulted
	}
	return record.UserEmail, Found
}

// DeleteTokens removes the record for userID. Deletion is best-effort
// cleanup: a missing record is not an error, and storage faults are
// logged rather than propagated.
func (s *TokenStore) DeleteTokens(ctx context.Context, userID string) {
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&TokenRecord{}).Error
	if err != nil {
		s.logger.Error("failed to delete tokens",
			logging.Operation("delete_tokens"),
			logging.UserHash(userID),
			logging.Err(err))
	}
}

// HasValidTokens reports whether a record exists for userID with an
// expiry strictly in the future. Point-in-time check, no side effect:
// it does not attempt a refresh.
func (s *TokenStore) HasValidTokens(ctx context.Context, userID string) bool {
	var count int64
	err := s.db.WithContext(ctx).Model(&TokenRecord{}).
		Where("user_id = ? AND expiry > ?", userID, time.Now()).
		Count(&count).Error
	if err != nil {
		s.logger.Error("failed to check token validity",
			logging.Operation("has_valid_tokens"),
			logging.UserHash(userID),
			logging.Err(err))
		return false
	}
	return count > 0
}

// CleanupExpiredTokens deletes every record that is both expired and
// without a refresh token, and returns the count removed. Records that
// still carry a refresh token are never touched: that token may still
// renew access out-of-band.
func (s *TokenStore) CleanupExpiredTokens(ctx context.Context) int64 {
	result := s.db.WithContext(ctx).
		Where("expiry < ? AND (refresh_token IS NULL OR refresh_token = '')", time.Now()).
		Delete(&TokenRecord{})
	if result.Error != nil {
		s.logger.Error("failed to clean up expired tokens",
			logging.Operation("cleanup_expired_tokens"),
			logging.Err(result.Error))
		return 0
	}

	if result.RowsAffected > 0 {
		s.logger.Info("expired tokens removed",
			logging.Operation("cleanup_expired_tokens"),
			logging.Count(result.RowsAffected))
	}
	return result.RowsAffected
}

func extraString(token *oauth2.Token, key string) string {
	if v, ok := token.Extra(key).(string); ok {
		return v
	}
	return ""
}
