// Package blobstore stores uploaded contract documents on the SFTP storage box.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/ghuser/contractflow/pkg/config"
	"github.com/ghuser/contractflow/pkg/logger"
)

// ErrNotFound is returned when no object exists at the requested path.
var ErrNotFound = errors.New("blob not found")

// Object describes one stored file.
type Object struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
}

// Store is the file store used by the contract service. Paths are relative to
// the store root and always use forward slashes.
type Store interface {
	Put(ctx context.Context, p string, r io.Reader) (int64, error)
	Get(ctx context.Context, p string) (io.ReadCloser, error)
	List(ctx context.Context, dir string) ([]Object, error)
	URL(p string) string
	Ping(ctx context.Context) error
	Close() error
}

// SFTPStore implements Store over an SFTP session.
type SFTPStore struct {
	mu      sync.Mutex
	client  *sftp.Client
	conn    *ssh.Client
	dial    func() (*ssh.Client, *sftp.Client, error)
	baseDir string
	public  string
	log     logger.Logger
}

// NewSFTPStore dials the storage box described by cfg.
func NewSFTPStore(cfg *config.Config, log logger.Logger) (*SFTPStore, error) {
	hostKey, err := hostKeyCallback(cfg.SFTPHostKey)
	if err != nil {
		return nil, err
	}
	if cfg.SFTPHostKey == "" {
		log.Warn("sftp host key not pinned", "addr", cfg.SFTPAddr)
	}

	sshCfg := &ssh.ClientConfig{
		User:            cfg.SFTPUser,
		Auth:            []ssh.AuthMethod{ssh.Password(cfg.SFTPPassword)},
		HostKeyCallback: hostKey,
		Timeout:         10 * time.Second,
	}
	dial := func() (*ssh.Client, *sftp.Client, error) {
		conn, err := ssh.Dial("tcp", cfg.SFTPAddr, sshCfg)
		if err != nil {
			return nil, nil, fmt.Errorf("ssh dial %s: %w", cfg.SFTPAddr, err)
		}
		c, err := sftp.NewClient(conn)
		if err != nil {
			_ = conn.Close()
			return nil, nil, fmt.Errorf("sftp session: %w", err)
		}
		return conn, c, nil
	}

	conn, c, err := dial()
	if err != nil {
		return nil, err
	}
	s := NewFromClient(c, cfg.SFTPBaseDir, cfg.SFTPPublicBaseURL, log)
	s.conn = conn
	s.dial = dial
	log.Info("sftp store connected", "addr", cfg.SFTPAddr, "base_dir", cfg.SFTPBaseDir)
	return s, nil
}

// NewFromClient wraps an existing SFTP client. The store does not redial.
func NewFromClient(c *sftp.Client, baseDir, publicBaseURL string, log logger.Logger) *SFTPStore {
	return &SFTPStore{
		client:  c,
		baseDir: path.Clean("/" + baseDir),
		public:  strings.TrimRight(publicBaseURL, "/"),
		log:     log,
	}
}

func hostKeyCallback(authorizedKey string) (ssh.HostKeyCallback, error) {
	if authorizedKey == "" {
		return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec
	}
	pk, _, _, _, err := ssh.ParseAuthorizedKey([]byte(authorizedKey))
	if err != nil {
		return nil, fmt.Errorf("parse SFTP_HOST_KEY: %w", err)
	}
	return ssh.FixedHostKey(pk), nil
}

// resolve maps a store path to an absolute remote path that cannot escape baseDir.
func (s *SFTPStore) resolve(p string) string {
	return path.Join(s.baseDir, path.Clean("/"+p))
}

func (s *SFTPStore) session(ctx context.Context) (*sftp.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil, errors.New("sftp store closed")
	}
	return s.client, nil
}

// reconnect replaces a dropped session. It is a no-op for stores built with NewFromClient.
func (s *SFTPStore) reconnect() error {
	if s.dial == nil {
		return sftp.ErrSSHFxConnectionLost
	}
	conn, c, err := s.dial()
	if err != nil {
		return err
	}
	s.mu.Lock()
	oldConn, oldClient := s.conn, s.client
	s.conn, s.client = conn, c
	s.mu.Unlock()
	if oldClient != nil {
		_ = oldClient.Close()
	}
	if oldConn != nil {
		_ = oldConn.Close()
	}
	s.log.Info("sftp store reconnected")
	return nil
}

// withRetry runs op once more on a fresh session when the connection was lost.
func (s *SFTPStore) withRetry(ctx context.Context, op func(*sftp.Client) error) error {
	c, err := s.session(ctx)
	if err != nil {
		return err
	}
	err = op(c)
	if !errors.Is(err, sftp.ErrSSHFxConnectionLost) {
		return err
	}
	if rerr := s.reconnect(); rerr != nil {
		return fmt.Errorf("%w (reconnect: %v)", err, rerr)
	}
	if c, err = s.session(ctx); err != nil {
		return err
	}
	return op(c)
}

// Put writes r to p, creating parent directories and replacing any existing file.
func (s *SFTPStore) Put(ctx context.Context, p string, r io.Reader) (int64, error) {
	remote := s.resolve(p)
	var n int64
	err := s.withRetry(ctx, func(c *sftp.Client) error {
		if err := c.MkdirAll(path.Dir(remote)); err != nil {
			return fmt.Errorf("mkdir %s: %w", path.Dir(remote), err)
		}
		f, err := c.OpenFile(remote, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
		if err != nil {
			return fmt.Errorf("create %s: %w", remote, err)
		}
		n, err = io.Copy(f, r)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("write %s: %w", remote, err)
		}
		return nil
	})
	return n, err
}

// Get opens p for reading. The caller closes the returned reader.
func (s *SFTPStore) Get(ctx context.Context, p string) (io.ReadCloser, error) {
	remote := s.resolve(p)
	var f *sftp.File
	err := s.withRetry(ctx, func(c *sftp.Client) error {
		var err error
		f, err = c.Open(remote)
		return err
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", remote, err)
	}
	return f, nil
}

// List returns the regular files directly under dir, sorted by path. A
// missing directory yields an empty list.
func (s *SFTPStore) List(ctx context.Context, dir string) ([]Object, error) {
	remote := s.resolve(dir)
	var infos []os.FileInfo
	err := s.withRetry(ctx, func(c *sftp.Client) error {
		var err error
		infos, err = c.ReadDir(remote)
		return err
	})
	if errors.Is(err, fs.ErrNotExist) {
		return []Object{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", remote, err)
	}

	rel := strings.TrimPrefix(path.Clean("/"+dir), "/")
	objs := make([]Object, 0, len(infos))
	for _, fi := range infos {
		if fi.IsDir() {
			continue
		}
		objs = append(objs, Object{
			Path:    path.Join(rel, fi.Name()),
			Size:    fi.Size(),
			ModTime: fi.ModTime().UTC(),
		})
	}
	sort.Slice(objs, func(i, j int) bool { return objs[i].Path < objs[j].Path })
	return objs, nil
}

// URL returns the public download URL for p.
func (s *SFTPStore) URL(p string) string {
	segments := strings.Split(strings.TrimPrefix(path.Clean("/"+p), "/"), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.public + "/" + strings.Join(segments, "/")
}

// Ping checks that the base directory is reachable.
func (s *SFTPStore) Ping(ctx context.Context) error {
	err := s.withRetry(ctx, func(c *sftp.Client) error {
		_, err := c.Stat(s.baseDir)
		if errors.Is(err, fs.ErrNotExist) {
			return c.MkdirAll(s.baseDir)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("sftp ping: %w", err)
	}
	return nil
}

// Close ends the SFTP session and the SSH connection.
func (s *SFTPStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	if s.client != nil {
		err = s.client.Close()
		s.client = nil
	}
	if s.conn != nil {
		if cerr := s.conn.Close(); err == nil {
			err = cerr
		}
		s.conn = nil
	}
	return err
}
