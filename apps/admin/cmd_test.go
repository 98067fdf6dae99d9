package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/staffdesk/core"
	"github.com/trezcool/staffdesk/core/attendance"
	"github.com/trezcool/staffdesk/core/employee"
	"github.com/trezcool/staffdesk/core/report"
	"github.com/trezcool/staffdesk/core/session"
	"github.com/trezcool/staffdesk/tests"
)

type staticFetcher struct {
	payload interface{}
}

func (f staticFetcher) Fetch(context.Context) (interface{}, error) {
	return f.payload, nil
}

func setup(t *testing.T) (*commandLine, *bytes.Buffer, *session.Store) {
	t.Helper()
	t.Setenv("ENV", "TEST")
	conf := core.NewConfig()

	store := testutil.NewStore(t, testutil.Employees()...)
	f := staticFetcher{payload: []interface{}{
		[]interface{}{"Asha Rao", "Engineer", "Pune", "E1001", "2020-01-06", "$82,500"},
		[]interface{}{"Bruno Diaz", "Designer", "Delhi", "E1002", "2021-03-15", "$45,000"},
	}}
	sessSvc, err := session.NewService(store, f, conf.Dashboard, testutil.NewLogger())
	require.NoError(t, err)

	out := new(bytes.Buffer)
	return &commandLine{
		conf:      conf,
		out:       out,
		sessSvc:   sessSvc,
		empSvc:    employee.NewService(store, conf.Dashboard.PageSize),
		reportSvc: report.NewService(store, attendance.NewService(store), conf.AppName),
	}, out, store
}

func mockPassword(t *testing.T, pwd string) {
	orig := readPasswordFunc
	readPasswordFunc = func(int) ([]byte, error) { return []byte(pwd), nil }
	t.Cleanup(func() { readPasswordFunc = orig })
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func runCLITests(t *testing.T, cli *commandLine, tests []cliTest) {
	t.Helper()
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(context.Background(), args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, err)
			case tt.wantErrStr != "":
				if assert.Error(t, err) {
					assert.Equal(t, tt.wantErrStr, err.Error())
				}
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func Test_commandLine_usage(t *testing.T) {
	cli, out, _ := setup(t)

	runCLITests(t, cli, []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "import: no file", args: []string{"import"}, wantErr: errHelp},
		{name: "export: no kind", args: []string{"export", "-format", "csv"}, wantErr: errHelp},
	})
	assert.Contains(t, out.String(), "Usage:")
}

func Test_commandLine_fetch(t *testing.T) {
	cli, out, store := setup(t)

	mockPassword(t, "")
	runCLITests(t, cli, []cliTest{{name: "no password", args: []string{"fetch"}, wantErr: errHelp}})

	mockPassword(t, "wrong")
	runCLITests(t, cli, []cliTest{{name: "wrong password", args: []string{"fetch"}, wantErr: session.ErrInvalidCredentials}})
	assert.Len(t, store.Records(), 4)

	mockPassword(t, "Test123")
	runCLITests(t, cli, []cliTest{{name: "ok", args: []string{"fetch"}}})
	assert.Contains(t, out.String(), "loaded 2 employees (rows payload)")
	assert.Len(t, store.Records(), 2)
}

func Test_commandLine_import(t *testing.T) {
	cli, out, store := setup(t)

	path := filepath.Join(t.TempDir(), "staff.xlsx")
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"Name", "Designation", "City", "Emp ID", "Join Date", "Salary"},
		{"Ira Shah", "Analyst", "Goa", "E9", "2022-02-01", 61000},
		{},
		{"Jon Bell", "Engineer", "Pune", "E10", "2023-08-14", "$99,000"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	err := cli.run(context.Background(), []string{"admin", "import", "-file", filepath.Join(t.TempDir(), "nope.xlsx")})
	assert.Error(t, err)

	runCLITests(t, cli, []cliTest{{name: "ok", args: []string{"import", "-file", path, "-header"}}})
	assert.Contains(t, out.String(), "imported 2 employees")

	records := store.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "Ira Shah", records[0].Name)
	assert.Equal(t, 61000, records[0].Salary)
	assert.Equal(t, 99000, records[1].Salary)
}

func Test_commandLine_list(t *testing.T) {
	cli, out, _ := setup(t)

	runCLITests(t, cli, []cliTest{
		{name: "unknown ordering", args: []string{"list", "-ordering", "password"}, wantErrStr: "ordering: cannot order by password"},
		{name: "ok", args: []string{"list", "-city", "Pune", "-ordering", "-salary"}},
	})
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.Contains(t, lines[1], "Dana Kapoor")
	assert.Contains(t, lines[1], "$155,000")
	assert.Contains(t, lines[2], "Asha Rao")
	assert.Equal(t, "page 1/1 (2 employees)", lines[3])
}

func Test_commandLine_stats(t *testing.T) {
	cli, out, _ := setup(t)

	runCLITests(t, cli, []cliTest{{name: "ok", args: []string{"stats"}}})
	assert.Contains(t, out.String(), "$402,500")
	assert.Contains(t, out.String(), "$45,000 - $155,000")
}

func Test_commandLine_export(t *testing.T) {
	cli, out, _ := setup(t)
	dir := t.TempDir()

	runCLITests(t, cli, []cliTest{
		{name: "unknown kind", args: []string{"export", "-kind", "secret"}, wantErrStr: "kind: unknown report kind: secret"},
		{name: "unknown format", args: []string{"export", "-kind", "payroll", "-format", "pdf"}, wantErrStr: "format: unknown report format: pdf"},
		{
			name: "sftp not configured", args: []string{"export", "-kind", "payroll", "-out", dir, "-sftp"},
			wantErrStr: "sftp.host: is required",
		},
		{name: "ok", args: []string{"export", "-kind", "payroll", "-format", "csv", "-out", dir}},
	})
	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.True(t, strings.HasPrefix(files[0].Name(), "payroll_report_"))
	assert.Contains(t, out.String(), "wrote "+filepath.Join(dir, files[0].Name()))

	// publishing
	cli.conf.SFTP = core.SFTPConfig{Host: "sftp.local", Port: 22, User: "hr", Password: "secret", RemoteDir: "/reports"}
	orig := sftpUploadFunc
	t.Cleanup(func() { sftpUploadFunc = orig })
	var uploaded []byte
	sftpUploadFunc = func(_ context.Context, conf core.SFTPConfig, name string, body io.Reader) (string, error) {
		data, err := io.ReadAll(body)
		uploaded = data
		return conf.RemoteDir + "/" + name, err
	}

	runCLITests(t, cli, []cliTest{{name: "sftp", args: []string{"export", "-kind", "salary", "-format", "json", "-out", dir, "-sftp"}}})
	assert.Contains(t, out.String(), "uploaded /reports/salary_report_")
	assert.Contains(t, string(uploaded), `"kind": "salary"`)
}

func Test_commandLine_logout(t *testing.T) {
	cli, out, store := setup(t)

	runCLITests(t, cli, []cliTest{
		{name: "ok", args: []string{"logout"}},
		{name: "list requires a session", args: []string{"list"}, wantErr: session.ErrNotAuthenticated},
		{name: "export requires a session", args: []string{"export", "-kind", "payroll"}, wantErr: session.ErrNotAuthenticated},
	})
	assert.False(t, store.Authenticated())
	assert.Contains(t, out.String(), "logged out")
}

func Test_commandLine_hashPassword(t *testing.T) {
	cli, out, _ := setup(t)

	mockPassword(t, "s3cret!")
	runCLITests(t, cli, []cliTest{{name: "ok", args: []string{"hashpassword"}}})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	hash := lines[len(lines)-1]
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret!")))
}
