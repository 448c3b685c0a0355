package token

import (
	"errors"
	"testing"
	"time"
)

func newTestCodec() *Codec {
	return NewCodec([]byte("test-secret"), 15*time.Minute, 14*24*time.Hour)
}

func TestCodec_IssueAndVerify_ReturnsUserID(t *testing.T) {
	c := newTestCodec()

	for _, kind := range []Kind{KindAccess, KindRefresh} {
		signed, err := c.Issue("user-123", kind)
		if err != nil {
			t.Fatalf("Issue(%s) error = %v", kind, err)
		}

		userID, err := c.Verify(signed, kind)
		if err != nil {
			t.Fatalf("Verify(%s) error = %v", kind, err)
		}
		if userID != "user-123" {
			t.Errorf("userID = %q, want %q", userID, "user-123")
		}
	}
}

func TestCodec_Verify_ExpiredToken_ReturnsErrTokenExpired(t *testing.T) {
	c := NewCodec([]byte("test-secret"), -1*time.Minute, -1*time.Minute)

	signed, err := c.Issue("user-123", KindAccess)
	if err != nil {
		t.Fatalf("Issue error = %v", err)
	}

	_, err = c.Verify(signed, KindAccess)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
}

func TestCodec_Verify_WrongSecret_ReturnsErrInvalidToken(t *testing.T) {
	c := newTestCodec()
	other := NewCodec([]byte("other-secret"), 15*time.Minute, 14*24*time.Hour)

	signed, err := c.Issue("user-123", KindAccess)
	if err != nil {
		t.Fatalf("Issue error = %v", err)
	}

	_, err = other.Verify(signed, KindAccess)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestCodec_Verify_KindMismatch_ReturnsErrInvalidToken(t *testing.T) {
	c := newTestCodec()

	// リフレッシュトークンをアクセストークンとして検証させない
	signed, err := c.Issue("user-123", KindRefresh)
	if err != nil {
		t.Fatalf("Issue error = %v", err)
	}

	_, err = c.Verify(signed, KindAccess)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("err = %v, want ErrInvalidToken", err)
	}
}

func TestCodec_Verify_MalformedToken_ReturnsErrInvalidToken(t *testing.T) {
	c := newTestCodec()

	tests := []string{
		"",
		"not-a-jwt",
		"aaaa.bbbb.cccc",
	}
	for _, input := range tests {
		_, err := c.Verify(input, KindAccess)
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify(%q) err = %v, want ErrInvalidToken", input, err)
		}
	}
}
