package testutil

import (
	"io"
	"log"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/staffdesk/core"
	"github.com/trezcool/staffdesk/core/employee"
	"github.com/trezcool/staffdesk/core/session"
	logsvc "github.com/trezcool/staffdesk/services/logger"
	"github.com/trezcool/staffdesk/storage/database"
	inmemdb "github.com/trezcool/staffdesk/storage/database/inmem"
)

// NewLogger returns a logger writing nowhere, with rollbar disabled.
func NewLogger() core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), &core.Config{Env: "TEST"})
	logger.Enable(false)
	return logger
}

// Employees returns a small, mixed set of normalized records.
func Employees() []employee.Employee {
	return []employee.Employee{
		{ID: 1, Name: "Asha Rao", Designation: "Engineer", City: "Pune", Salary: 82500, EmpID: "E1001", JoinDate: "2020-01-06"},
		{ID: 2, Name: "Bruno Diaz", Designation: "Designer", City: "Delhi", Salary: 45000, EmpID: "E1002", JoinDate: "2021-03-15"},
		{ID: 3, Name: "Chen Li", Designation: "Engineer", City: "Mumbai", Salary: 120000, EmpID: "E1003", JoinDate: "2019-07-01"},
		{ID: 4, Name: "Dana Kapoor", Designation: "Manager", City: "Pune", Salary: 155000, EmpID: "E1004", JoinDate: "2018-11-20"},
	}
}

// NewStore returns an in-memory session store, logged in with records when any are given.
func NewStore(t *testing.T, records ...employee.Employee) *session.Store {
	t.Helper()
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	store := session.NewStore(inmemdb.NewKVStore(db))
	if len(records) > 0 {
		if err := store.Login(records); err != nil {
			t.Fatalf("store.Login() failed: %v", err)
		}
	}
	return store
}

// PrepareDB connects to the test PostgreSQL database and empties the kv table.
// The test is skipped when TEST_DATABASE_HOST is not set.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	if os.Getenv("TEST_DATABASE_HOST") == "" {
		t.Skip("TEST_DATABASE_HOST not set")
	}
	t.Setenv("ENV", "TEST")
	conf := core.NewConfig()

	db, err := database.Open(conf.Database)
	if err != nil {
		t.Fatalf("database.Open() failed: %v", err)
	}
	if _, err := db.Exec("TRUNCATE kv"); err != nil {
		t.Fatalf("truncating kv failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
