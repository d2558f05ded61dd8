package tracker

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"babytrack/internal/credential"
	"babytrack/internal/model"
)

func testEvent() model.Event {
	return model.DiaperEvent{
		Header: model.Header{
			ObjectID:  "obj-1",
			Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			Baby:      model.Baby{Name: "Alice", ObjectID: "baby-1"},
		},
		Status: model.DiaperWet,
	}
}

func testCreds() credential.Credentials {
	return credential.Credentials{
		EmailAddress: "parent@example.com",
		Password:     "hunter2",
		DeviceID:     "device-1234",
	}
}

// fakeService implements the three service endpoints with a cookie-bound
// session, capturing what the client sends.
type fakeService struct {
	t *testing.T

	loginBody  string
	devices    []deviceRecord
	lastLogin  loginRequest
	lastTx     syncTransaction
	loginCalls int
	txCalls    int
}

func (f *fakeService) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /session", func(w http.ResponseWriter, r *http.Request) {
		f.loginCalls++
		if err := json.NewDecoder(r.Body).Decode(&f.lastLogin); err != nil {
			f.t.Errorf("decoding login body: %v", err)
		}
		http.SetCookie(w, &http.Cookie{Name: "sess", Value: "abc"})
		w.Write([]byte(f.loginBody))
	})
	mux.HandleFunc("GET /account/device", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("sess"); err != nil {
			f.t.Error("device list request carried no session cookie")
		}
		json.NewEncoder(w).Encode(f.devices)
	})
	mux.HandleFunc("POST /account/transaction", func(w http.ResponseWriter, r *http.Request) {
		f.txCalls++
		if _, err := r.Cookie("sess"); err != nil {
			f.t.Error("transaction request carried no session cookie")
		}
		if err := json.NewDecoder(r.Body).Decode(&f.lastTx); err != nil {
			f.t.Errorf("decoding transaction body: %v", err)
		}
		w.Write([]byte(`{}`))
	})
	return mux
}

func TestRecord(t *testing.T) {
	svc := &fakeService{t: t, loginBody: `{}`, devices: []deviceRecord{
		{DeviceUUID: "other-device", LastSyncID: 99},
		{DeviceUUID: "device-1234", LastSyncID: 41},
	}}
	srv := httptest.NewServer(svc.handler())
	defer srv.Close()

	c := New(srv.URL)
	receipt, err := c.Record(context.Background(), testEvent(), testCreds())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt.SyncID != 42 {
		t.Fatalf("SyncID = %d, want 42", receipt.SyncID)
	}

	if svc.lastLogin.EmailAddress != "parent@example.com" || svc.lastLogin.Password != "hunter2" {
		t.Fatalf("unexpected login body: %+v", svc.lastLogin)
	}
	if svc.lastLogin.Device.DeviceUUID != "device-1234" {
		t.Fatalf("login device UUID = %q", svc.lastLogin.Device.DeviceUUID)
	}
	if svc.lastLogin.Device.DeviceOSInfo != "Alexa" {
		t.Fatalf("login DeviceOSInfo = %q", svc.lastLogin.Device.DeviceOSInfo)
	}

	if svc.lastTx.SyncID != 42 || svc.lastTx.OPCode != 0 {
		t.Fatalf("unexpected transaction envelope: %+v", svc.lastTx)
	}
	raw, err := base64.StdEncoding.DecodeString(svc.lastTx.Transaction)
	if err != nil {
		t.Fatalf("Transaction is not base64: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("Transaction is not base64-wrapped JSON: %v", err)
	}
	if payload["BCObjectType"] != "Diaper" {
		t.Fatalf("BCObjectType = %v", payload["BCObjectType"])
	}
	if payload["objectID"] != "obj-1" {
		t.Fatalf("objectID = %v", payload["objectID"])
	}
	if string(receipt.Payload) != string(raw) {
		t.Fatal("receipt payload should match the posted transaction document")
	}
}

func TestRecord_UnknownDeviceDefaultsToFirstSync(t *testing.T) {
	svc := &fakeService{t: t, loginBody: `{}`, devices: []deviceRecord{
		{DeviceUUID: "other-device", LastSyncID: 17},
	}}
	srv := httptest.NewServer(svc.handler())
	defer srv.Close()

	receipt, err := New(srv.URL).Record(context.Background(), testEvent(), testCreds())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt.SyncID != 1 {
		t.Fatalf("SyncID = %d, want 1 for first-ever sync", receipt.SyncID)
	}
}

func TestRecord_AccountReset(t *testing.T) {
	svc := &fakeService{t: t, loginBody: `{"Message":"Account reset, please register the device again"}`}
	srv := httptest.NewServer(svc.handler())
	defer srv.Close()

	_, err := New(srv.URL).Record(context.Background(), testEvent(), testCreds())
	if !errors.Is(err, ErrAccountReset) {
		t.Fatalf("expected ErrAccountReset, got %v", err)
	}
	if svc.txCalls != 0 {
		t.Fatal("no transaction should be posted after a reset signal")
	}
}

func TestRecord_Unauthorized(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /session", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	mux.HandleFunc("GET /account/device", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`"Unauthorized"`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	_, err := New(srv.URL).Record(context.Background(), testEvent(), testCreds())
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestRecord_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Record(context.Background(), testEvent(), testCreds())
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %T: %v", err, err)
	}
	if te.Op != "login" {
		t.Fatalf("TransportError.Op = %q, want login", te.Op)
	}
}

func TestRecord_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening

	_, err := New(srv.URL).Record(context.Background(), testEvent(), testCreds())
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %T: %v", err, err)
	}
}

func TestRecord_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithTimeout(20*time.Millisecond))
	_, err := c.Record(context.Background(), testEvent(), testCreds())
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError on timeout, got %T: %v", err, err)
	}
}
