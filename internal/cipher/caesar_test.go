// SPDX-License-Identifier: MIT

package cipher

import (
	"errors"
	"testing"
)

func TestCaesarEncrypt(t *testing.T) {
	tests := []struct {
		name  string
		shift int
		input string
		want  string
	}{
		{
			name:  "classic shift 3",
			shift: 3,
			input: "ATTACK AT DAWN",
			want:  "DWWDFN DW GDZQ",
		},
		{
			name:  "wraps past Z",
			shift: 3,
			input: "XYZ",
			want:  "ABC",
		},
		{
			name:  "lowercase input uppercased",
			shift: 3,
			input: "attack",
			want:  "DWWDFN",
		},
		{
			name:  "punctuation preserved",
			shift: 1,
			input: "HELLO, WORLD!",
			want:  "IFMMP, XPSME!",
		},
		{
			name:  "negative shift normalized",
			shift: -23,
			input: "ABC",
			want:  "DEF",
		},
		{
			name:  "shift 26 is identity",
			shift: 26,
			input: "NOOP",
			want:  "NOOP",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCaesar(tt.shift)
			got, err := c.Encrypt(tt.input)
			if err != nil {
				t.Fatalf("Encrypt(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Encrypt(%q) = %q, want %q", tt.input, got, tt.want)
			}
			back, err := c.Decrypt(got)
			if err != nil {
				t.Fatalf("Decrypt(%q) error: %v", got, err)
			}
			if want := upperOf(tt.input); back != want {
				t.Errorf("Decrypt(Encrypt(%q)) = %q, want %q", tt.input, back, want)
			}
		})
	}
}

func TestCaesarEmptyText(t *testing.T) {
	c := NewCaesar(3)
	if _, err := c.Encrypt(""); !errors.Is(err, ErrEmptyText) {
		t.Errorf("Encrypt(\"\") error = %v, want ErrEmptyText", err)
	}
	if _, err := c.Decrypt(""); !errors.Is(err, ErrEmptyText) {
		t.Errorf("Decrypt(\"\") error = %v, want ErrEmptyText", err)
	}
}

func TestKeyedCaesar(t *testing.T) {
	c, err := NewKeyedCaesar("ZEBRAS", 3)
	if err != nil {
		t.Fatalf("NewKeyedCaesar: %v", err)
	}
	// alphabet is ZEBRASCDFGHIJKLMNOPQTUVWXY; Z shifts to R (3 positions on).
	got, err := c.Encrypt("Z")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if got != "R" {
		t.Errorf("Encrypt(Z) = %q, want R", got)
	}

	ct, err := c.Encrypt("MEET ME AT THE ZOO")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	pt, err := c.Decrypt(ct)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if pt != "MEET ME AT THE ZOO" {
		t.Errorf("round trip = %q", pt)
	}
}

func TestKeyedCaesarInvalidKeyword(t *testing.T) {
	if _, err := NewKeyedCaesar("", 3); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("empty keyword error = %v, want ErrInvalidKey", err)
	}
	if _, err := NewKeyedCaesar("AB3", 3); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("non-letter keyword error = %v, want ErrInvalidKey", err)
	}
}
