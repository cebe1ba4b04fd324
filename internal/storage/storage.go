package storage

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/updateserve/omaha-backend/internal/config"
	"github.com/updateserve/omaha-backend/internal/pkg/filehash"

	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
)

// Descriptor describes a stored artifact: the digests recorded on the
// owning version row and the byte size.
type Descriptor struct {
	SHA1   string
	SHA256 string
	Size   int64
}

// Store is the artifact store consumed by the admin write path. The
// decision path never touches it.
type Store interface {
	Put(key string, r io.Reader) (Descriptor, error)
	Open(key string) (io.ReadCloser, error)
	Stat(key string) (Descriptor, error)
	Delete(key string) error
	SignedURL(key string, ttl time.Duration) (string, error)
}

// FileStore keeps artifacts under a root directory and signs download
// URLs with an HMAC token.
type FileStore struct {
	logger  *zap.Logger
	root    string
	baseURL string
	secret  string
}

func NewFileStore(conf *config.Config, logger *zap.Logger) *FileStore {
	return &FileStore{
		logger:  logger,
		root:    conf.Storage.Root,
		baseURL: strings.TrimSuffix(conf.Storage.BaseURL, "/"),
		secret:  conf.Storage.Secret,
	}
}

func (s *FileStore) path(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") {
		return "", errors.Errorf("invalid artifact key %q", key)
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}

func (s *FileStore) Put(key string, r io.Reader) (Descriptor, error) {
	path, err := s.path(key)
	if err != nil {
		return Descriptor{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Descriptor{}, errors.Wrap(err, "create artifact directory")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return Descriptor{}, errors.Wrap(err, "create temp artifact")
	}
	defer os.Remove(tmp.Name())

	sums, err := filehash.Sum(io.TeeReader(r, tmp))
	if err != nil {
		tmp.Close()
		return Descriptor{}, errors.Wrap(err, "write artifact")
	}
	if err := tmp.Close(); err != nil {
		return Descriptor{}, errors.Wrap(err, "close temp artifact")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return Descriptor{}, errors.Wrap(err, "commit artifact")
	}

	return Descriptor(sums), nil
}

func (s *FileStore) Open(key string) (io.ReadCloser, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Stat recomputes the digests from the stored bytes, so the record
// hash always reflects what clients will download.
func (s *FileStore) Stat(key string) (Descriptor, error) {
	f, err := s.Open(key)
	if err != nil {
		return Descriptor{}, err
	}
	defer f.Close()

	sums, err := filehash.Sum(f)
	if err != nil {
		return Descriptor{}, errors.Wrapf(err, "hash artifact %s", key)
	}
	return Descriptor(sums), nil
}

func (s *FileStore) Delete(key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return errors.Wrapf(err, "delete artifact %s", key)
	}
	return nil
}

// SignedURL issues a time limited download URL:
// <base>/<key>?expires=<unix>&nonce=<ksuid>&token=hex(hmac-sha1(secret, key|expires|nonce)).
func (s *FileStore) SignedURL(key string, ttl time.Duration) (string, error) {
	if _, err := s.path(key); err != nil {
		return "", err
	}
	var (
		expires = strconv.FormatInt(time.Now().Add(ttl).Unix(), 10)
		nonce   = ksuid.New().String()
	)
	return fmt.Sprintf("%s/%s?expires=%s&nonce=%s&token=%s",
		s.baseURL, key, expires, nonce, s.sign(key, expires, nonce)), nil
}

func (s *FileStore) sign(key, expires, nonce string) string {
	h := hmac.New(sha1.New, []byte(s.secret))
	h.Write([]byte(strings.Join([]string{key, expires, nonce}, "|")))
	return hex.EncodeToString(h.Sum(nil))
}
