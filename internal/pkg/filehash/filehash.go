package filehash

import (
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"io"

	"github.com/updateserve/omaha-backend/internal/pkg/bufpool"
	"github.com/minio/sha256-simd"
)

// Sums carries both digests an update record needs: the legacy Omaha
// wire hash (base64 SHA-1) and the modern hex SHA-256.
type Sums struct {
	SHA1   string
	SHA256 string
	Size   int64
}

func Sum(r io.Reader) (Sums, error) {
	var (
		h1   = sha1.New()
		h256 = sha256.New()
	)

	buf := bufpool.Get()
	defer bufpool.Put(buf)

	n, err := io.CopyBuffer(io.MultiWriter(h1, h256), r, *buf)
	if err != nil {
		return Sums{}, err
	}

	return Sums{
		SHA1:   base64.StdEncoding.EncodeToString(h1.Sum(nil)),
		SHA256: hex.EncodeToString(h256.Sum(nil)),
		Size:   n,
	}, nil
}
