package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"lukechampine.com/blake3"
)

type HashAlgo string

const (
	HashAlgoSHA256 HashAlgo = "sha256"
	HashAlgoBLAKE3 HashAlgo = "blake3"
)

// HashBytes returns the hex digest of data using algo.
func HashBytes(data []byte, algo HashAlgo) (string, error) {
	switch algo {
	case HashAlgoSHA256:
		sum := sha256.Sum256(data)
		return hex.EncodeToString(sum[:]), nil
	case HashAlgoBLAKE3:
		sum := blake3.Sum256(data)
		return hex.EncodeToString(sum[:]), nil
	default:
		return "", fmt.Errorf("unsupported hash algorithm: %s", algo)
	}
}

// Digest returns "<algo>:<hex>", the form recorded next to stored resources.
func Digest(data []byte, algo HashAlgo) (string, error) {
	sum, err := HashBytes(data, algo)
	if err != nil {
		return "", err
	}
	return string(algo) + ":" + sum, nil
}

// SplitDigest is the inverse of Digest.
func SplitDigest(digest string) (HashAlgo, string, bool) {
	algo, sum, ok := strings.Cut(digest, ":")
	if !ok || algo == "" || sum == "" {
		return "", "", false
	}
	return HashAlgo(algo), sum, true
}
