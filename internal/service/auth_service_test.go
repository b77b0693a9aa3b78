package service

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/hoizi89/advanced-switches/internal/models"
)

type fakeAuthRepo struct {
	createID  int
	createErr error
	user      *models.User
	getErr    error

	lastUsername string
	lastHash     string
}

func (f *fakeAuthRepo) Create(username, hash string) (int, error) {
	f.lastUsername = username
	f.lastHash = hash
	return f.createID, f.createErr
}
func (f *fakeAuthRepo) GetByUsername(username string) (*models.User, error) {
	return f.user, f.getErr
}

func TestAuthService_SignUpHashesPassword(t *testing.T) {
	repo := &fakeAuthRepo{createID: 11}
	svc := NewAuthService(repo)

	id, err := svc.SignUp("alice", "s3cret")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if id != 11 {
		t.Fatalf("id = %d, want 11", id)
	}
	if repo.lastHash == "s3cret" || repo.lastHash == "" {
		t.Fatalf("password stored without hashing")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(repo.lastHash), []byte("s3cret")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestAuthService_SignUpRejectsEmptyPassword(t *testing.T) {
	svc := NewAuthService(&fakeAuthRepo{})
	if _, err := svc.SignUp("alice", "   "); err == nil {
		t.Fatalf("expected empty password to be rejected")
	}
}

func TestAuthService_TokenRoundTrip(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	repo := &fakeAuthRepo{user: &models.User{ID: 42, Username: "alice", PasswordHash: string(hash)}}
	svc := NewAuthService(repo)

	token, err := svc.GenerateToken("alice", "s3cret")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	userID, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if userID != 42 {
		t.Fatalf("user id = %d, want 42", userID)
	}
}

func TestAuthService_GenerateTokenWrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	repo := &fakeAuthRepo{user: &models.User{ID: 42, PasswordHash: string(hash)}}
	svc := NewAuthService(repo)

	if _, err := svc.GenerateToken("alice", "wrong"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("err = %v, want ErrInvalidPassword", err)
	}
}

func TestAuthService_GenerateTokenUnknownUser(t *testing.T) {
	svc := NewAuthService(&fakeAuthRepo{user: nil})
	if _, err := svc.GenerateToken("ghost", "x"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestAuthService_ParseTokenGarbage(t *testing.T) {
	svc := NewAuthService(&fakeAuthRepo{})
	if _, err := svc.ParseToken("not.a.jwt"); err == nil {
		t.Fatalf("expected parse error")
	}
}
