// Package signing provides the hashing and HMAC primitives used to build
// provider request signatures: MD5 for Baidu, SHA-256 for Youdao, and the
// HMAC-SHA256 chain for Tencent's TC3 scheme. It also implements Youdao's
// input truncation rule, which is part of the v3 signature contract.
package signing

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// MD5Hex returns the lowercase hex MD5 digest of s.
func MD5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// SHA256Hex returns the lowercase hex SHA-256 digest of s.
func SHA256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// HashSHA256Hex returns the lowercase hex SHA-256 digest of raw bytes.
func HashSHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HMACSHA256 computes HMAC-SHA256 of msg with key and returns the raw
// digest, suitable for chaining into the next derivation step.
func HMACSHA256(key []byte, msg string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(msg))
	return h.Sum(nil)
}

// HMACSHA256Hex computes HMAC-SHA256 of msg with key and returns the
// lowercase hex digest.
func HMACSHA256Hex(key []byte, msg string) string {
	return hex.EncodeToString(HMACSHA256(key, msg))
}

// Truncate applies Youdao's signature input rule: text of 20 characters or
// fewer is used as-is; longer text becomes the first 10 characters, the
// decimal character count, and the last 10 characters. The exact shape is
// part of the signature contract and must not be altered.
func Truncate(q string) string {
	r := []rune(q)
	if len(r) <= 20 {
		return q
	}
	return string(r[:10]) + strconv.Itoa(len(r)) + string(r[len(r)-10:])
}
