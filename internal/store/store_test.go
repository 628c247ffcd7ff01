package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	return st
}

func TestCreateUserAndExists(t *testing.T) {
	st := openTestStore(t)

	exists, err := st.UserExists(100)
	if err != nil {
		t.Fatalf("UserExists failed: %v", err)
	}
	if exists {
		t.Error("User should not exist yet")
	}

	if err := st.CreateUser(100, "alice", "Alice A", "passw0rd1"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	exists, err = st.UserExists(100)
	if err != nil {
		t.Fatalf("UserExists failed: %v", err)
	}
	if !exists {
		t.Error("User should exist after CreateUser")
	}
}

func TestCreateUserDuplicates(t *testing.T) {
	st := openTestStore(t)

	if err := st.CreateUser(1, "bob", "Bob", "passw0rd1"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if err := st.CreateUser(1, "other", "Bob Again", "passw0rd1"); !errors.Is(err, ErrAccountExists) {
		t.Errorf("Duplicate id should return ErrAccountExists, got %v", err)
	}

	if err := st.CreateUser(2, "bob", "Bobby", "passw0rd1"); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("Duplicate username should return ErrUsernameTaken, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	st := openTestStore(t)

	if err := st.CreateUser(5, "carol", "Carol C", "secret12"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	user, err := st.Authenticate("carol", "secret12")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if user.ID != 5 || user.FullName != "Carol C" {
		t.Errorf("Unexpected user: %+v", user)
	}
	if user.PasswordHash == "secret12" {
		t.Error("Password stored in plaintext")
	}

	if _, err := st.Authenticate("carol", "wrong"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("Wrong password should return ErrBadCredentials, got %v", err)
	}
	if _, err := st.Authenticate("nobody", "secret12"); !errors.Is(err, ErrBadCredentials) {
		t.Errorf("Unknown username should return ErrBadCredentials, got %v", err)
	}
}

func TestLanguage(t *testing.T) {
	st := openTestStore(t)

	if lang := st.Language(9); lang != "en" {
		t.Errorf("Unknown user should default to en, got %s", lang)
	}

	if err := st.CreateUser(9, "dave", "Dave", "passw0rd1"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if err := st.SetLanguage(9, "fa"); err != nil {
		t.Fatalf("SetLanguage failed: %v", err)
	}
	if lang := st.Language(9); lang != "fa" {
		t.Errorf("Language not persisted, got %s", lang)
	}
}

func TestRecentOrderAndLimit(t *testing.T) {
	st := openTestStore(t)

	for i := 0; i < 5; i++ {
		if err := st.SaveDownload(42, "YouTube", "https://y/1", "title", "video", 100); err != nil {
			t.Fatalf("SaveDownload failed: %v", err)
		}
	}
	if err := st.SaveDownload(42, "SoundCloud", "https://s/1", "latest", "audio", 50); err != nil {
		t.Fatalf("SaveDownload failed: %v", err)
	}
	if err := st.SaveDownload(77, "YouTube", "https://y/2", "other user", "video", 10); err != nil {
		t.Fatalf("SaveDownload failed: %v", err)
	}

	records, err := st.Recent(42, 3)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}
	if records[0].Title != "latest" {
		t.Errorf("Newest record should come first, got %q", records[0].Title)
	}
	for _, rec := range records {
		if rec.UserID != 42 {
			t.Errorf("Foreign record leaked into history: %+v", rec)
		}
	}
}

func TestCountSince(t *testing.T) {
	st := openTestStore(t)

	for i := 0; i < 4; i++ {
		if err := st.SaveDownload(8, "YouTube", "https://y", "t", "video", 1); err != nil {
			t.Fatalf("SaveDownload failed: %v", err)
		}
	}

	past := time.Now().Add(-time.Hour)
	count, err := st.CountSince(8, past)
	if err != nil {
		t.Fatalf("CountSince failed: %v", err)
	}
	if count != 4 {
		t.Errorf("CountSince(past) = %d, expected 4", count)
	}

	future := time.Now().Add(time.Hour)
	count, err = st.CountSince(8, future)
	if err != nil {
		t.Fatalf("CountSince failed: %v", err)
	}
	if count != 0 {
		t.Errorf("CountSince(future) = %d, expected 0", count)
	}

	count, err = st.CountSince(999, past)
	if err != nil {
		t.Fatalf("CountSince failed: %v", err)
	}
	if count != 0 {
		t.Errorf("CountSince for unknown user = %d, expected 0", count)
	}
}

func TestStats(t *testing.T) {
	st := openTestStore(t)

	count, bytes, err := st.Stats(3)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if count != 0 || bytes != 0 {
		t.Errorf("Empty stats = (%d, %d), expected (0, 0)", count, bytes)
	}

	st.SaveDownload(3, "YouTube", "https://y", "a", "video", 1000)
	st.SaveDownload(3, "SoundCloud", "https://s", "b", "audio", 500)

	count, bytes, err = st.Stats(3)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if count != 2 || bytes != 1500 {
		t.Errorf("Stats = (%d, %d), expected (2, 1500)", count, bytes)
	}
}

func TestMidnightUTC(t *testing.T) {
	now := time.Date(2024, 6, 15, 23, 45, 12, 0, time.UTC)
	cutoff := MidnightUTC(now)
	want := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	if !cutoff.Equal(want) {
		t.Errorf("MidnightUTC = %v, expected %v", cutoff, want)
	}
}
