package audit

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestStoreSave(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	store := NewStoreWithDB(db)

	event := RegistrationEvent{
		Username:  "alice",
		ClientIP:  "10.0.0.1",
		Operation: "register",
		SchoolID:  10,
		Outcome:   "registered",
		Success:   true,
	}

	mock.ExpectExec(`INSERT INTO audit_events`).
		WithArgs(
			FacilityAuth,        // facility
			int(SeverityNotice), // severity
			sqlmock.AnyArg(),    // timestamp
			sqlmock.AnyArg(),    // hostname
			"inscricao",         // appname
			sqlmock.AnyArg(),    // procid
			"registration",      // msgid
			sqlmock.AnyArg(),    // sdata (JSON)
			sqlmock.AnyArg(),    // message
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := store.Save(context.Background(), event); err != nil {
		t.Errorf("Save() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestStoreSaveLoginFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	store := NewStoreWithDB(db)

	mock.ExpectExec(`INSERT INTO audit_events`).
		WithArgs(
			FacilityAuthPriv,
			int(SeverityWarning), // Failed events have warning severity
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
			"inscricao",
			sqlmock.AnyArg(),
			"login",
			sqlmock.AnyArg(),
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = store.Save(context.Background(), LoginEvent{ClientIP: "10.0.0.1", ErrorMessage: "verifier rejected"})
	if err != nil {
		t.Errorf("Save() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestStoreNilDB(t *testing.T) {
	store := &Store{db: nil}

	// Should not error when db is nil
	if err := store.Save(context.Background(), LogoutEvent{Username: "alice"}); err != nil {
		t.Errorf("Save() with nil db should not error, got: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Errorf("Close() with nil db should not error, got: %v", err)
	}
}

func TestNewStoreDisabled(t *testing.T) {
	store, err := NewStore("")
	if err != nil || store != nil {
		t.Errorf("NewStore(\"\") = %v, %v; want nil, nil", store, err)
	}
}

func TestAuditorPersists(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	mock.ExpectExec(`INSERT INTO audit_events`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectClose()

	auditor := NewAuditor(nil, NewStoreWithDB(db))
	auditor.Log(context.Background(), LogoutEvent{Username: "alice", ClientIP: "10.0.0.1"})
	if err := auditor.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestStoreRecent(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"facility", "severity", "timestamp", "hostname", "appname", "procid", "msgid", "sdata", "message"}).
		AddRow(FacilityAuth, int(SeverityError), ts, "web-1", "inscricao", "42", "registration",
			[]byte(`{"action@32473":{"error":"PERSISTENCE_ERROR"}}`), "alice failed to register")
	mock.ExpectQuery(`SELECT facility, severity, timestamp`).WithArgs(10).WillReturnRows(rows)

	messages, err := NewStoreWithDB(db).Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	if messages[0].Msgid != "registration" || messages[0].Severity != int(SeverityError) {
		t.Errorf("unexpected message: %+v", messages[0])
	}
	action, _ := messages[0].Sdata["action@32473"].(map[string]any)
	if action["error"] != "PERSISTENCE_ERROR" {
		t.Errorf("unexpected sdata: %+v", messages[0].Sdata)
	}
}
