package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
)

// storedCookie is the on-disk form of a session cookie. Only name and value
// survive a round trip through an http.CookieJar; the backend revalidates
// the token on every credentialed call, so that is enough.
type storedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SaveCookies persists the cookies the jar holds for base to path, so the
// CLI stays logged in between runs. When passphrase is non-empty the file is
// encrypted at rest (AES-256-GCM, Argon2id-derived key); otherwise it is
// written plaintext with 0600 permissions.
func SaveCookies(jar http.CookieJar, base *url.URL, path, passphrase string) error {
	cookies := jar.Cookies(base)
	stored := make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		stored = append(stored, storedCookie{Name: c.Name, Value: c.Value})
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("encode cookies: %w", err)
	}

	if passphrase != "" {
		encrypted, err := encryptData(data, passphrase)
		if err != nil {
			return fmt.Errorf("encrypt cookies: %w", err)
		}
		data = append([]byte(magicHeader), encrypted...)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create cookie directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write cookie file: %w", err)
	}
	return nil
}

// LoadCookies restores previously saved cookies into the jar for base. A
// missing file is not an error; the session simply starts anonymous.
func LoadCookies(jar http.CookieJar, base *url.URL, path, passphrase string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read cookie file: %w", err)
	}

	if bytes.HasPrefix(data, []byte(magicHeader)) {
		if passphrase == "" {
			return fmt.Errorf("cookie file is encrypted but no passphrase is configured")
		}
		data, err = decryptData(data[len(magicHeader):], passphrase)
		if err != nil {
			return fmt.Errorf("decrypt cookies: %w", err)
		}
	}

	var stored []storedCookie
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("decode cookies: %w", err)
	}

	cookies := make([]*http.Cookie, 0, len(stored))
	for _, c := range stored {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	jar.SetCookies(base, cookies)
	return nil
}

// ClearCookies removes the persisted cookie file. Called on logout.
func ClearCookies(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove cookie file: %w", err)
	}
	return nil
}
