package hashutil

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"lukechampine.com/blake3"
)

type HashAlgo string

const (
	HashAlgoMD5    HashAlgo = "md5"
	HashAlgoSHA256 HashAlgo = "sha256"
	HashAlgoBLAKE3 HashAlgo = "blake3"
)

// HashBytes returns the hash of bytes as a hex string using the specified algorithm.
// Supported algorithms: "md5", "sha256" and "blake3".
func HashBytes(data []byte, algo HashAlgo) (string, error) {
	switch algo {
	case HashAlgoMD5:
		return MD5Hex(data), nil
	case HashAlgoSHA256:
		return hashBytesSha256(data), nil
	case HashAlgoBLAKE3:
		return hashBytesBlake3(data), nil
	default:
		return "", fmt.Errorf("unsupported hash algorithm: %s", algo)
	}
}

// MD5Hex returns the 32-char hex MD5 digest of data. MD5 is the fixed
// identity hash for URLs and extracted page text; collisions are treated
// as equality at this corpus size.
func MD5Hex(data []byte) string {
	hash := md5.Sum(data)
	return hex.EncodeToString(hash[:])
}

// Sum64 returns a stable 64-bit hash of s. The value is deterministic
// across runs and platforms, which keeps near-duplicate fingerprints
// reproducible between crawls.
func Sum64(s string) uint64 {
	return xxhash.Sum64String(s)
}

func hashBytesSha256(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func hashBytesBlake3(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}
