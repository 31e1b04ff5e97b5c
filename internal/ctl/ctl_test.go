package ctl

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/bierclub/bier/internal/cryptox"
)

func stubPassword(t *testing.T, pw string, err error) {
	t.Helper()
	orig := readPassword
	readPassword = func(int) ([]byte, error) {
		if err != nil {
			return nil, err
		}
		return []byte(pw), nil
	}
	t.Cleanup(func() { readPassword = orig })
}

func TestRun_GenKey(t *testing.T) {
	var out bytes.Buffer
	if err := Run([]string{"gen-key"}, &out); err != nil {
		t.Fatalf("gen-key error: %v", err)
	}
	if _, err := cryptox.ParseHexKey(strings.TrimSpace(out.String())); err != nil {
		t.Fatalf("gen-key output is not a valid key: %v", err)
	}
}

func TestRun_HashThenVerify(t *testing.T) {
	stubPassword(t, "correct horse", nil)

	var out bytes.Buffer
	if err := Run([]string{"hash-password"}, &out); err != nil {
		t.Fatalf("hash-password error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	hash := lines[len(lines)-1]
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Fatalf("unexpected hash %q", hash)
	}

	out.Reset()
	if err := Run([]string{"verify-password", hash}, &out); err != nil {
		t.Fatalf("verify-password error: %v", err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out.String()), "ok") {
		t.Fatalf("unexpected output %q", out.String())
	}

	stubPassword(t, "wrong horse", nil)
	if err := Run([]string{"verify-password", hash}, &out); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("want ErrPasswordMismatch, got %v", err)
	}
}

func TestRun_ReadError(t *testing.T) {
	boom := errors.New("no tty")
	stubPassword(t, "", boom)

	if err := Run([]string{"hash-password"}, &bytes.Buffer{}); !errors.Is(err, boom) {
		t.Fatalf("want read error, got %v", err)
	}
}

func TestRun_Usage(t *testing.T) {
	for _, args := range [][]string{nil, {"nope"}, {"verify-password"}} {
		if err := Run(args, &bytes.Buffer{}); !errors.Is(err, ErrUsage) {
			t.Errorf("Run(%v) = %v, want ErrUsage", args, err)
		}
	}
}
