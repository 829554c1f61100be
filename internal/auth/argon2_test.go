package auth

import (
	"strings"
	"testing"
)

// testParams keeps argon2 cheap enough for unit tests.
var testParams = Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func TestHash_Format(t *testing.T) {
	t.Parallel()

	h := NewArgon2Hasher(DefaultArgon2Params())

	hash, err := h.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	// Verify PHC format: $argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>
	if !strings.HasPrefix(hash, "$argon2id$v=") {
		t.Errorf("Hash should be in PHC format, got: %s", hash)
	}

	parts := strings.Split(hash, "$")
	if len(parts) != 6 {
		t.Fatalf("Hash should have 6 parts, got: %d", len(parts))
	}

	if parts[1] != "argon2id" {
		t.Errorf("Expected argon2id algorithm, got: %s", parts[1])
	}
	if parts[2] != "v=19" {
		t.Errorf("Expected v=19, got: %s", parts[2])
	}
	if parts[3] != "m=65536,t=3,p=4" {
		t.Errorf("Expected m=65536,t=3,p=4, got: %s", parts[3])
	}
}

func TestHash_Uniqueness(t *testing.T) {
	t.Parallel()

	h := NewArgon2Hasher(testParams)
	password := "pw123"

	hash1, err := h.Hash(password)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	hash2, err := h.Hash(password)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	// Same password should produce different hashes (different salts)
	if hash1 == hash2 {
		t.Error("Same password should produce different hashes due to random salt")
	}

	// But both should be valid and verify correctly
	match1, _ := h.Verify(password, hash1)
	match2, _ := h.Verify(password, hash2)

	if !match1 || !match2 {
		t.Error("Both hashes should verify correctly")
	}
}

func TestVerify_Correct(t *testing.T) {
	t.Parallel()

	h := NewArgon2Hasher(testParams)

	hash, err := h.Hash("s3cret!")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	match, err := h.Verify("s3cret!", hash)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !match {
		t.Error("Correct password should match")
	}
}

func TestVerify_Incorrect(t *testing.T) {
	t.Parallel()

	h := NewArgon2Hasher(testParams)

	hash, err := h.Hash("s3cret!")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	// Wrong password should not verify (but no error)
	match, err := h.Verify("s3cret?", hash)
	if err != nil {
		t.Fatalf("Verify should not return error for wrong password: %v", err)
	}
	if match {
		t.Error("Wrong password should not match")
	}
}

func TestVerify_UsesEncodedParams(t *testing.T) {
	t.Parallel()

	hash, err := NewArgon2Hasher(testParams).Hash("pw")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	// A hasher configured differently still verifies hashes produced elsewhere.
	match, err := NewArgon2Hasher(DefaultArgon2Params()).Verify("pw", hash)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !match {
		t.Error("Verify should read parameters from the encoded hash")
	}
}

func TestVerify_InvalidHashFormat(t *testing.T) {
	t.Parallel()

	h := NewArgon2Hasher(testParams)

	tests := []struct {
		name    string
		hash    string
		wantErr error
	}{
		{"empty", "", ErrInvalidHash},
		{"wrong format", "not-a-hash", ErrInvalidHash},
		{"wrong algorithm", "$bcrypt$v=19$m=65536,t=3,p=4$salt$hash", ErrInvalidHash},
		{"missing parts", "$argon2id$v=19$m=65536", ErrInvalidHash},
		{"wrong part count", "$argon2id$v=19", ErrInvalidHash},
		{"empty digest", "$argon2id$v=19$m=65536,t=3,p=4$c29tZXNhbHQ$", ErrInvalidHash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := h.Verify("password", tt.hash)
			if err != tt.wantErr {
				t.Errorf("Verify with %q error = %v, want %v", tt.name, err, tt.wantErr)
			}
		})
	}
}

func TestVerify_WrongVersion(t *testing.T) {
	t.Parallel()

	invalidVersionHash := "$argon2id$v=18$m=65536,t=3,p=4$c29tZXNhbHRoZXJl$c29tZWhhc2hoZXJl"

	match, err := NewArgon2Hasher(testParams).Verify("password", invalidVersionHash)
	if err != ErrIncompatibleVersion {
		t.Errorf("Expected ErrIncompatibleVersion, got: %v", err)
	}
	if match {
		t.Error("Should not match with incompatible version")
	}
}

func TestQuickHash_Deterministic(t *testing.T) {
	t.Parallel()

	input := "01HZX3M4T5Q6R7S8V9W0XYZABC"

	if QuickHash(input) != QuickHash(input) {
		t.Error("Same input should produce same hash")
	}
}

func TestQuickHash_Length(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"session id", "01HZX3M4T5Q6R7S8V9W0XYZABC"},
		{"short string", "abc"},
		{"empty string", ""},
		{"long string", strings.Repeat("x", 1000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hash := QuickHash(tt.input)
			if len(hash) != 32 {
				t.Errorf("Hash should be 32 chars, got: %d", len(hash))
			}
		})
	}
}

func TestQuickHash_Different(t *testing.T) {
	t.Parallel()

	if QuickHash("input-one") == QuickHash("input-two") {
		t.Error("Different input should produce different hash")
	}
}
