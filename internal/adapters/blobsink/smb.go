package blobsink

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path"
	"strings"
	"time"

	"github.com/hirochachacha/go-smb2"
	"github.com/target/report-relay/internal/core"
	apperrors "github.com/target/report-relay/internal/errors"
)

var (
	_ core.RemoteShare = (*SMBSink)(nil)
	_ core.Pinger      = (*SMBSink)(nil)
)

// SMBConfig describes one SMB share.
type SMBConfig struct {
	Server   string
	Port     int
	Share    string
	User     string
	Password string
	Domain   string
	// Root is a directory on the share that all paths are relative to.
	Root        string
	DialTimeout time.Duration
}

// SMBSink stores files on an SMB share. Each call opens its own session so a
// dropped connection never outlives one operation.
type SMBSink struct {
	cfg SMBConfig
}

// NewSMBSink validates cfg and returns a sink.
func NewSMBSink(cfg SMBConfig) (*SMBSink, error) {
	cfg.Server = strings.TrimSpace(cfg.Server)
	cfg.Share = strings.Trim(strings.TrimSpace(cfg.Share), `\/`)
	if cfg.Server == "" {
		return nil, errors.New("smb server is required")
	}
	if cfg.Share == "" {
		return nil, errors.New("smb share is required")
	}
	if cfg.Port <= 0 {
		cfg.Port = 445
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 15 * time.Second
	}
	return &SMBSink{cfg: cfg}, nil
}

// Target returns a printable \\server\share name.
func (s *SMBSink) Target() string {
	return `\\` + s.cfg.Server + `\` + s.cfg.Share
}

// Store writes content under a temporary name and renames it over path.
func (s *SMBSink) Store(ctx context.Context, name string, content []byte) error {
	full := s.sharePath(name)
	err := s.withShare(ctx, func(share *smb2.Share) error {
		if dir := path.Dir(full); dir != "." && dir != "" {
			if err := share.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create directory %s: %w", dir, err)
			}
		}

		tmpName := full + ".partial"
		if err := writeShareFile(share, tmpName, content); err != nil {
			_ = share.Remove(tmpName)
			return err
		}

		// The rename does not replace an existing target.
		if _, err := share.Stat(full); err == nil {
			if err := share.Remove(full); err != nil {
				_ = share.Remove(tmpName)
				return fmt.Errorf("replace %s: %w", full, err)
			}
		}
		if err := share.Rename(tmpName, full); err != nil {
			_ = share.Remove(tmpName)
			return fmt.Errorf("rename into place: %w", err)
		}
		return nil
	})
	if err != nil {
		return apperrors.SinkError(err, s.Target()+`\`+full)
	}
	return nil
}

// Exists reports whether name exists on the share.
func (s *SMBSink) Exists(ctx context.Context, name string) (bool, error) {
	full := s.sharePath(name)
	found := false
	err := s.withShare(ctx, func(share *smb2.Share) error {
		_, err := share.Stat(full)
		switch {
		case err == nil:
			found = true
			return nil
		case errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err):
			return nil
		default:
			return fmt.Errorf("stat %s: %w", full, err)
		}
	})
	return found, err
}

// Ping opens and closes a session against the share.
func (s *SMBSink) Ping(ctx context.Context) error {
	return s.withShare(ctx, func(*smb2.Share) error { return nil })
}

func (s *SMBSink) sharePath(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), `\`, "/")
	root := strings.ReplaceAll(strings.TrimSpace(s.cfg.Root), `\`, "/")
	return strings.TrimPrefix(path.Join(root, name), "/")
}

func (s *SMBSink) withShare(ctx context.Context, fn func(*smb2.Share) error) (err error) {
	dialer := &net.Dialer{Timeout: s.cfg.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(s.cfg.Server, fmt.Sprint(s.cfg.Port)))
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.cfg.Server, err)
	}
	defer func() { _ = conn.Close() }()

	d := &smb2.Dialer{
		Initiator: &smb2.NTLMInitiator{
			User:     s.cfg.User,
			Password: s.cfg.Password,
			Domain:   s.cfg.Domain,
		},
	}
	session, err := d.DialContext(ctx, conn)
	if err != nil {
		return fmt.Errorf("smb session %s: %w", s.cfg.Server, err)
	}
	defer func() {
		if logoffErr := session.Logoff(); logoffErr != nil && err == nil {
			err = fmt.Errorf("smb logoff: %w", logoffErr)
		}
	}()

	share, err := session.Mount(s.cfg.Share)
	if err != nil {
		return fmt.Errorf("mount %s: %w", s.Target(), err)
	}
	defer func() { _ = share.Umount() }()

	return fn(share.WithContext(ctx))
}

func writeShareFile(share *smb2.Share, name string, content []byte) error {
	f, err := share.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := f.Write(content); err != nil {
		return errors.Join(fmt.Errorf("write %s: %w", name, err), f.Close())
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	return nil
}
