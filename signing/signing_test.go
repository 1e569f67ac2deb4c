package signing

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Digest primitives
// ---------------------------------------------------------------------------

func TestMD5Hex(t *testing.T) {
	got := MD5Hex("abc")
	want := "900150983cd24fb0d6963f7d28e17f72"
	if got != want {
		t.Errorf("MD5Hex(abc) = %s, want %s", got, want)
	}
}

func TestSHA256Hex(t *testing.T) {
	got := SHA256Hex("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Errorf("SHA256Hex(abc) = %s, want %s", got, want)
	}
	if SHA256Hex("abc") != HashSHA256Hex([]byte("abc")) {
		t.Error("SHA256Hex and HashSHA256Hex disagree")
	}
}

func TestHMACSHA256_Chaining(t *testing.T) {
	// Tencent-style derivation: each step keys the next with the raw digest.
	k := HMACSHA256([]byte("TC3"+"testsecretkey"), "2023-11-14")
	k = HMACSHA256(k, "tmt")
	k = HMACSHA256(k, "tc3_request")
	if len(k) != 32 {
		t.Fatalf("derived key length = %d, want 32", len(k))
	}
	sig := HMACSHA256Hex(k, "payload")
	if len(sig) != 64 || strings.ToLower(sig) != sig {
		t.Errorf("signature %q is not lowercase hex", sig)
	}
}

// ---------------------------------------------------------------------------
// Youdao truncation rule
// ---------------------------------------------------------------------------

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"short", "hello", "hello"},
		{"exactly 20", "abcdefghijklmnopqrst", "abcdefghijklmnopqrst"},
		{"25 chars", "abcdefghijklmnopqrstuvwxy", "abcdefghij25pqrstuvwxy"},
		{"chinese runes counted, not bytes", strings.Repeat("中", 21), strings.Repeat("中", 10) + "21" + strings.Repeat("中", 10)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Truncate(tc.in)
			if got != tc.want {
				t.Errorf("Truncate(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestTruncate_LongResultLength(t *testing.T) {
	// first10 + "25" + last10 -> 22 characters total.
	got := Truncate("abcdefghijklmnopqrstuvwxy")
	if len([]rune(got)) != 22 {
		t.Errorf("truncated length = %d, want 22", len([]rune(got)))
	}
}

// ---------------------------------------------------------------------------
// Signature vectors (precomputed; any concatenation reorder is a break)
// ---------------------------------------------------------------------------

func TestYoudaoSignatureVector(t *testing.T) {
	appKey := "test-app-key"
	appSecret := "test-app-secret"
	salt := "1700000000000"
	curtime := "1700000000"

	got := SHA256Hex(appKey + Truncate("hello") + salt + curtime + appSecret)
	want := "bf47b35c8939c1aee9d36f70f22f00b7d4bf87c7c51a2ddd7d988850783b2ba8"
	if got != want {
		t.Errorf("short-text signature = %s, want %s", got, want)
	}

	long := "abcdefghijklmnopqrstuvwxy"
	got = SHA256Hex(appKey + Truncate(long) + salt + curtime + appSecret)
	want = "b871109853fe3954f89e6c19e5e69c86541a61866618513d43bb6ca49a61cdda"
	if got != want {
		t.Errorf("long-text signature = %s, want %s", got, want)
	}
}

func TestBaiduSignatureVector(t *testing.T) {
	got := MD5Hex("20230001" + "hello" + "1700000000000" + "secret")
	want := "bef3f27d9696edf0bf2ff4f419a575cf"
	if got != want {
		t.Errorf("Baidu signature = %s, want %s", got, want)
	}
}
