// Package ctl implements bierctl, the operator tool for producing server
// secrets and checking stored credentials.
package ctl

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/bierclub/bier/internal/common"
	"github.com/bierclub/bier/internal/cryptox"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

var (
	ErrUsage            = errors.New("usage: bierctl gen-key | hash-password | verify-password <hash>")
	ErrPasswordMismatch = errors.New("password does not match")
)

// Run executes one command. args excludes the program name.
func Run(args []string, w io.Writer) error {
	if len(args) == 0 {
		return ErrUsage
	}

	switch args[0] {
	case "gen-key":
		key, err := common.MakeRandHexString(cryptox.KeySize)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, key)
		return err

	case "hash-password":
		pw, err := GetPassword(w)
		if err != nil {
			return err
		}
		defer common.WipeByteArray(pw)

		hash, err := cryptox.HashPassword(pw, cryptox.DefaultArgon2Params())
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, hash)
		return err

	case "verify-password":
		if len(args) != 2 {
			return ErrUsage
		}
		pw, err := GetPassword(w)
		if err != nil {
			return err
		}
		defer common.WipeByteArray(pw)

		if !cryptox.VerifyPassword(pw, args[1]) {
			return ErrPasswordMismatch
		}
		_, err = fmt.Fprintln(w, "ok")
		return err

	default:
		return ErrUsage
	}
}

// GetPassword prints a prompt to w and reads a password from the terminal
// without echo. The caller should wipe the result.
func GetPassword(w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, "Enter password: "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}
