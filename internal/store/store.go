package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	ErrUsernameTaken   = errors.New("username already taken")
	ErrBadCredentials  = errors.New("wrong username or password")
	ErrAccountExists   = errors.New("account already exists")
	ErrAccountNotFound = errors.New("account not found")
)

// User is an optional registered account. Its existence alone decides
// which quota tier a requester gets.
type User struct {
	ID           int64  `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;size:64;not null"`
	FullName     string `gorm:"size:128"`
	PasswordHash string `gorm:"size:128;not null"`
	Language     string `gorm:"size:8;default:en"`
	CreatedAt    time.Time
}

// Download is the append-only history record, written once per
// successfully delivered job.
type Download struct {
	ID        uint  `gorm:"primaryKey;autoIncrement"`
	UserID    int64 `gorm:"index:idx_downloads_user_time,priority:1;not null"`
	Platform  string
	URL       string
	Title     string
	Kind      string `gorm:"size:8"`
	Size      int64
	CreatedAt time.Time `gorm:"index:idx_downloads_user_time,priority:2"`
}

type Store struct {
	db *gorm.DB
}

func Open(path string) (*Store, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_journal_mode=WAL&_busy_timeout=5000"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.AutoMigrate(&User{}, &Download{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &Store{db: db}, nil
}

// CreateUser registers an account for a requester id. The password is
// bcrypt-hashed; a duplicate id or username comes back as a sentinel.
func (s *Store) CreateUser(id int64, username, fullName, password string) error {
	exists, err := s.UserExists(id)
	if err != nil {
		return err
	}
	if exists {
		return ErrAccountExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := User{
		ID:           id,
		Username:     username,
		FullName:     fullName,
		PasswordHash: string(hash),
		Language:     "en",
	}
	if err := s.db.Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameTaken
		}
		return err
	}
	return nil
}

// UserExists is the quota-tier check: a registered requester gets the
// higher daily limit.
func (s *Store) UserExists(id int64) (bool, error) {
	var count int64
	err := s.db.Model(&User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (s *Store) GetUser(id int64) (*User, error) {
	var user User
	err := s.db.First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate checks a username/password pair against the stored hash.
func (s *Store) Authenticate(username, password string) (*User, error) {
	var user User
	err := s.db.First(&user, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}
	return &user, nil
}

func (s *Store) SetLanguage(id int64, lang string) error {
	return s.db.Model(&User{}).Where("id = ?", id).Update("language", lang).Error
}

func (s *Store) Language(id int64) string {
	user, err := s.GetUser(id)
	if err != nil {
		return "en"
	}
	if user.Language == "" {
		return "en"
	}
	return user.Language
}

// SaveDownload appends one history record. No dedup, no update.
func (s *Store) SaveDownload(userID int64, platform, url, title, kind string, size int64) error {
	return s.db.Create(&Download{
		UserID:   userID,
		Platform: platform,
		URL:      url,
		Title:    title,
		Kind:     kind,
		Size:     size,
	}).Error
}

// Recent returns the newest records first, at most limit of them.
func (s *Store) Recent(userID int64, limit int) ([]Download, error) {
	var records []Download
	err := s.db.
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// CountSince counts a requester's records with created_at >= cutoff.
// The cutoff is a parameter on purpose; the admission handler passes the
// UTC midnight boundary.
func (s *Store) CountSince(userID int64, cutoff time.Time) (int64, error) {
	var count int64
	err := s.db.Model(&Download{}).
		Where("user_id = ? AND created_at >= ?", userID, cutoff).
		Count(&count).Error
	return count, err
}

// Stats returns total download count and total bytes for a requester.
func (s *Store) Stats(userID int64) (count int64, bytes int64, err error) {
	if err = s.db.Model(&Download{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, 0, err
	}
	var sum struct{ Total int64 }
	err = s.db.Model(&Download{}).
		Select("COALESCE(SUM(size), 0) AS total").
		Where("user_id = ?", userID).
		Scan(&sum).Error
	return count, sum.Total, err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "constraint failed")
}

// MidnightUTC is the calendar-day quota cutoff for the given instant.
func MidnightUTC(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
