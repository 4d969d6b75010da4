package aead

import (
	"bytes"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		plaintext []byte
	}{
		{"empty", []byte{}},
		{"short", []byte("hello world")},
		{"long", bytes.Repeat([]byte{0x42}, 1<<20)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, blob, err := Encrypt(tt.plaintext)
			if err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}
			if len(key) != KeySize {
				t.Fatalf("key length = %d, want %d", len(key), KeySize)
			}
			if len(blob) != NonceSize+len(tt.plaintext)+TagSize {
				t.Fatalf("blob length = %d, want %d", len(blob), NonceSize+len(tt.plaintext)+TagSize)
			}

			got, err := Decrypt(key, blob)
			if err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if !bytes.Equal(got, tt.plaintext) {
				t.Errorf("Decrypt() = %x, want %x", got, tt.plaintext)
			}
		})
	}
}

func TestDecryptDetectsTamperedCiphertext(t *testing.T) {
	key, blob, err := Encrypt([]byte("top secret"))
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	tampered := append([]byte(nil), blob...)
	tampered[len(tampered)-1] ^= 0xFF

	if _, err := Decrypt(key, tampered); err == nil {
		t.Error("Decrypt() on tampered blob succeeded, want error")
	}
}

func TestDecryptDetectsWrongKey(t *testing.T) {
	_, blob, err := Encrypt([]byte("top secret"))
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	wrongKey := make([]byte, KeySize)

	if _, err := Decrypt(wrongKey, blob); err == nil {
		t.Error("Decrypt() with wrong key succeeded, want error")
	}
}

func TestDecryptRejectsShortBlob(t *testing.T) {
	key := make([]byte, KeySize)
	if _, err := Decrypt(key, []byte("too short")); err == nil {
		t.Error("Decrypt() on short blob succeeded, want error")
	}
}

func TestEncryptNoncesAreFresh(t *testing.T) {
	_, blobA, err := Encrypt([]byte("same plaintext"))
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	_, blobB, err := Encrypt([]byte("same plaintext"))
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if bytes.Equal(blobA[:NonceSize], blobB[:NonceSize]) {
		t.Error("two independent Encrypt() calls produced the same nonce")
	}
}
