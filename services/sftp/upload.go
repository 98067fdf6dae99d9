// Package sftpsvc publishes rendered documents to an SFTP drop.
package sftpsvc

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/pkg/errors"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/trezcool/staffdesk/core"
)

const dialTimeout = 20 * time.Second

// Validate reports missing connection settings.
func Validate(conf core.SFTPConfig) error {
	var missing []core.FieldError
	if conf.Host == "" {
		missing = append(missing, core.FieldError{Field: "sftp.host", Error: "is required"})
	}
	if conf.User == "" {
		missing = append(missing, core.FieldError{Field: "sftp.user", Error: "is required"})
	}
	if conf.Password == "" {
		missing = append(missing, core.FieldError{Field: "sftp.password", Error: "is required"})
	}
	if len(missing) > 0 {
		return core.NewValidationError(nil, missing...)
	}
	return nil
}

// Upload writes body to conf.RemoteDir/name, creating the directory when needed.
// It returns the remote path.
func Upload(ctx context.Context, conf core.SFTPConfig, name string, body io.Reader) (string, error) {
	if err := Validate(conf); err != nil {
		return "", err
	}
	if conf.Port <= 0 {
		conf.Port = 22
	}
	if conf.RemoteDir == "" {
		conf.RemoteDir = "/"
	}

	sshConf := &ssh.ClientConfig{
		User:            conf.User,
		Auth:            []ssh.AuthMethod{ssh.Password(conf.Password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), // TODO: verify against a known_hosts file from config
		Timeout:         dialTimeout,
	}
	addr := fmt.Sprintf("%s:%d", conf.Host, conf.Port)

	type dialResult struct {
		client *ssh.Client
		err    error
	}
	ch := make(chan dialResult, 1)
	go func() {
		c, err := ssh.Dial("tcp", addr, sshConf)
		ch <- dialResult{client: c, err: err}
	}()

	var sshClient *ssh.Client
	select {
	case <-ctx.Done():
		go func() { // don't leak the connection if the dial completes later
			if r := <-ch; r.client != nil {
				_ = r.client.Close()
			}
		}()
		return "", errors.Wrap(ctx.Err(), "sftp: dial canceled")
	case r := <-ch:
		if r.err != nil {
			return "", errors.Wrapf(r.err, "sftp: dialing %s", addr)
		}
		sshClient = r.client
	}
	defer func() { _ = sshClient.Close() }()

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		return "", errors.Wrap(err, "sftp: new client")
	}
	defer func() { _ = client.Close() }()

	if err := client.MkdirAll(conf.RemoteDir); err != nil {
		return "", errors.Wrapf(err, "sftp: mkdir %s", conf.RemoteDir)
	}

	remotePath := path.Join(conf.RemoteDir, path.Base(name))
	dst, err := client.Create(remotePath)
	if err != nil {
		return "", errors.Wrap(err, "sftp: create remote file")
	}
	if _, err := io.Copy(dst, body); err != nil {
		_ = dst.Close()
		return "", errors.Wrap(err, "sftp: upload copy")
	}
	if err := dst.Close(); err != nil {
		return "", errors.Wrap(err, "sftp: closing remote file")
	}
	return remotePath, nil
}
