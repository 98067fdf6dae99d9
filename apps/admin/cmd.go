package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/staffdesk/core"
	"github.com/trezcool/staffdesk/core/employee"
	"github.com/trezcool/staffdesk/core/report"
	"github.com/trezcool/staffdesk/core/session"
	sftpsvc "github.com/trezcool/staffdesk/services/sftp"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	sftpUploadFunc   = sftpsvc.Upload    // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf      *core.Config
	out       io.Writer
	sessSvc   *session.Service
	empSvc    *employee.Service
	reportSvc *report.Service
}

func (cli *commandLine) printUsage() {
	_, _ = fmt.Fprintln(cli.out, "Usage:")
	_, _ = fmt.Fprintln(cli.out, "  fetch - log in with the dashboard password (prompted) and load the employee data")
	_, _ = fmt.Fprintln(cli.out, "  import -file PATH [-header] - start a session from an .xlsx or .xls export")
	_, _ = fmt.Fprintln(cli.out, "  list [-search TEXT] [-city CITY] [-ordering -salary,name] [-page N] [-size N] - list employees")
	_, _ = fmt.Fprintln(cli.out, "  stats - print salary statistics")
	_, _ = fmt.Fprintln(cli.out, "  export -kind KIND [-format html|csv|xlsx|json] [-out DIR] [-sftp] - render a report")
	_, _ = fmt.Fprintln(cli.out, "  logout - clear the session")
	_, _ = fmt.Fprintln(cli.out, "  hashpassword - print the bcrypt hash of a password (prompted), for DASHBOARD_PASSWORDHASH")
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	importCmd := flag.NewFlagSet("import", flag.ContinueOnError)
	importFile := importCmd.String("file", "", "The .xlsx or .xls file to import.")
	importHeader := importCmd.Bool("header", false, "Skip the first row.")

	listCmd := flag.NewFlagSet("list", flag.ContinueOnError)
	listSearch := listCmd.String("search", "", "Case-insensitive text searched in names and designations.")
	listCity := listCmd.String("city", "", "Exact city.")
	listOrdering := listCmd.String("ordering", "", "Comma separated fields, '-' prefixed for descending order.")
	listPage := listCmd.Int("page", 1, "Page number.")
	listSize := listCmd.Int("size", 0, "Page size (dashboard page size by default).")

	exportCmd := flag.NewFlagSet("export", flag.ContinueOnError)
	exportKind := exportCmd.String("kind", "", "One of payroll, salary, attendance, custom, employees.")
	exportFormat := exportCmd.String("format", "html", "One of html, csv, xlsx, json.")
	exportOut := exportCmd.String("out", ".", "Output directory.")
	exportSFTP := exportCmd.Bool("sftp", false, "Also upload the report to the configured SFTP drop.")

	for _, fs := range []*flag.FlagSet{importCmd, listCmd, exportCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "fetch":
		pwd, err := cli.promptPassword("Enter dashboard password:")
		if err != nil {
			return err
		}
		if pwd == "" {
			cli.printUsage()
			return errHelp
		}
		return cli.fetch(ctx, pwd)
	case "import":
		if err := importCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importFile == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importSheet(ctx, *importFile, *importHeader)
	case "list":
		if err := listCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.list(employee.QueryFilter{Search: *listSearch, City: *listCity}, *listOrdering, *listPage, *listSize)
	case "stats":
		return cli.stats()
	case "export":
		if err := exportCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *exportKind == "" {
			exportCmd.Usage()
			return errHelp
		}
		return cli.export(ctx, *exportKind, *exportFormat, *exportOut, *exportSFTP)
	case "logout":
		return cli.logout()
	case "hashpassword":
		pwd, err := cli.promptPassword("Enter password:")
		if err != nil {
			return err
		}
		if pwd == "" {
			cli.printUsage()
			return errHelp
		}
		return cli.hashPassword(pwd)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword(prompt string) (string, error) {
	_, _ = fmt.Fprint(cli.out, prompt)
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	_, _ = fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
