package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/trezcool/staffdesk/core/report"
	"github.com/trezcool/staffdesk/core/session"
	sftpsvc "github.com/trezcool/staffdesk/services/sftp"
)

// export renders a report into dir, then optionally publishes it over SFTP.
func (cli *commandLine) export(ctx context.Context, kind, format, dir string, upload bool) error {
	if !cli.sessSvc.Store().Authenticated() {
		return session.ErrNotAuthenticated
	}
	k, err := report.ParseKind(kind)
	if err != nil {
		return err
	}
	f, err := report.ParseFormat(format)
	if err != nil {
		return err
	}
	if upload {
		if err := sftpsvc.Validate(cli.conf.SFTP); err != nil {
			return err
		}
	}

	doc, err := cli.reportSvc.Render(k, f)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "creating output directory")
	}
	path := filepath.Join(dir, doc.Filename)
	if err := os.WriteFile(path, doc.Body, 0o644); err != nil {
		return errors.Wrap(err, "writing report")
	}
	_, _ = fmt.Fprintf(cli.out, "wrote %s\n", path)

	if upload {
		remote, err := sftpUploadFunc(ctx, cli.conf.SFTP, doc.Filename, bytes.NewReader(doc.Body))
		if err != nil {
			return errors.Wrap(err, "uploading report")
		}
		_, _ = fmt.Fprintf(cli.out, "uploaded %s\n", remote)
	}
	return nil
}
