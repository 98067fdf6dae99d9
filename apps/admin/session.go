package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/staffdesk/services/fetcher"
)

func (cli *commandLine) fetch(ctx context.Context, pwd string) error {
	res, err := cli.sessSvc.Login(ctx, cli.conf.Dashboard.Username, pwd)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "loaded %d employees (%s payload)\n", res.Count, res.Shape)
	return nil
}

func (cli *commandLine) importSheet(ctx context.Context, path string, header bool) error {
	raw, err := fetcher.SheetFetcher{Path: path, HasHeader: header}.Fetch(ctx)
	if err != nil {
		return err
	}
	res, err := cli.sessSvc.Import(raw)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "imported %d employees\n", res.Count)
	return nil
}

func (cli *commandLine) logout() error {
	if err := cli.sessSvc.Logout(); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cli.out, "logged out")
	return nil
}

func (cli *commandLine) hashPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hashing password")
	}
	_, _ = fmt.Fprintln(cli.out, string(hash))
	return nil
}
