package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/hoizi89/advanced-switches/internal/service"
)

func TestSignUp(t *testing.T) {
	auth := &mockAuth{signUpID: 5}
	s := &service.Service{Authorization: auth}
	r := newTestRouter(s)

	w := doRequest(r, http.MethodPost, "/auth/sign-up", []byte(`{"username":"alice","password":"s3cret"}`), "")
	if w.Code != http.StatusOK {
		t.Fatalf("sign-up status=%d, body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.ID != 5 {
		t.Fatalf("id = %d, want 5", resp.ID)
	}
	if auth.lastSignUpUsername != "alice" || auth.lastSignUpPassword != "s3cret" {
		t.Fatalf("credentials not forwarded: %q/%q", auth.lastSignUpUsername, auth.lastSignUpPassword)
	}
}

func TestSignUp_BadBody(t *testing.T) {
	s := &service.Service{Authorization: &mockAuth{}}
	r := newTestRouter(s)

	w := doRequest(r, http.MethodPost, "/auth/sign-up", []byte(`{"username":"alice"}`), "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing password, got %d", w.Code)
	}
}

func TestSignUp_ServiceError(t *testing.T) {
	auth := &mockAuth{signUpErr: errors.New("username taken")}
	s := &service.Service{Authorization: auth}
	r := newTestRouter(s)

	w := doRequest(r, http.MethodPost, "/auth/sign-up", []byte(`{"username":"alice","password":"x"}`), "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for service error, got %d", w.Code)
	}
}

func TestSignIn(t *testing.T) {
	auth := &mockAuth{genTokenToken: "jwt-token"}
	s := &service.Service{Authorization: auth}
	r := newTestRouter(s)

	w := doRequest(r, http.MethodPost, "/auth/sign-in", []byte(`{"username":"alice","password":"s3cret"}`), "")
	if w.Code != http.StatusOK {
		t.Fatalf("sign-in status=%d, body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Token != "jwt-token" {
		t.Fatalf("token = %q", resp.Token)
	}
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	auth := &mockAuth{genTokenErr: errors.New("bad password")}
	s := &service.Service{Authorization: auth}
	r := newTestRouter(s)

	w := doRequest(r, http.MethodPost, "/auth/sign-in", []byte(`{"username":"alice","password":"wrong"}`), "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad credentials, got %d", w.Code)
	}
	var resp struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Error != "invalid credentials" {
		t.Fatalf("error = %q", resp.Error)
	}
}
