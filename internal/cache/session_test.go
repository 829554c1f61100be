package cache

import (
	"strings"
	"testing"
)

func TestSessionKey(t *testing.T) {
	t.Parallel()

	key := sessionKey("01HZX0000000000000000000AA")

	if !strings.HasPrefix(key, sessionKeyPrefix) {
		t.Errorf("key %q missing prefix %q", key, sessionKeyPrefix)
	}
	if strings.Contains(key, "01HZX") {
		t.Errorf("key %q exposes the raw session id", key)
	}
	if key != sessionKey("01HZX0000000000000000000AA") {
		t.Error("same id should produce same key")
	}
	if key == sessionKey("01HZX0000000000000000000AB") {
		t.Error("different ids should produce different keys")
	}
}
