package seo

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// Artifact is a file to be written at a path relative to the site root.
type Artifact struct {
	Path string
	Data []byte
}

// NormalizeGoogleToken accepts a token as shown by Search Console, with or
// without the "google" prefix and ".html" suffix, and returns the bare token.
func NormalizeGoogleToken(token string) string {
	token = strings.TrimSpace(token)
	token = strings.TrimSuffix(token, ".html")
	return strings.TrimPrefix(token, "google")
}

// GoogleVerification returns the google<token>.html ownership file.
func GoogleVerification(token string) (Artifact, error) {
	token = NormalizeGoogleToken(token)
	if err := checkToken(token); err != nil {
		return Artifact{}, fmt.Errorf("google: %w", err)
	}
	name := "google" + token + ".html"
	return Artifact{
		Path: name,
		Data: []byte("google-site-verification: " + name),
	}, nil
}

// BingVerification returns the BingSiteAuth.xml ownership file.
func BingVerification(token string) (Artifact, error) {
	token = strings.TrimSpace(token)
	if err := checkToken(token); err != nil {
		return Artifact{}, fmt.Errorf("bing: %w", err)
	}
	data := "<?xml version=\"1.0\"?>\n<users>\n\t<user>" + token + "</user>\n</users>\n"
	return Artifact{Path: "BingSiteAuth.xml", Data: []byte(data)}, nil
}

// IndexNowKeyFile returns the <key>.txt file engines fetch to confirm
// that the submitter controls the host.
func IndexNowKeyFile(key string) Artifact {
	return Artifact{Path: key + ".txt", Data: []byte(key)}
}

// NewIndexNowKey returns a random 32 character hex key.
func NewIndexNowKey() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate IndexNow key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// VerificationFiles returns the ownership and key files for the configured
// tokens. Empty tokens are skipped.
func VerificationFiles(googleToken, bingToken, indexNowKey string) ([]Artifact, error) {
	var files []Artifact
	if googleToken != "" {
		a, err := GoogleVerification(googleToken)
		if err != nil {
			return nil, err
		}
		files = append(files, a)
	}
	if bingToken != "" {
		a, err := BingVerification(bingToken)
		if err != nil {
			return nil, err
		}
		files = append(files, a)
	}
	if indexNowKey != "" {
		files = append(files, IndexNowKeyFile(indexNowKey))
	}
	return files, nil
}

func checkToken(token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	for _, r := range token {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return ErrInvalidToken
		}
	}
	return nil
}
