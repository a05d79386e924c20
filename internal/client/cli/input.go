package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

var errEmptyPassword = errors.New("empty password")

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// GetPassword prompts for username's password on w and reads it from the
// terminal without echo. The caller wipes the returned slice.
func GetPassword(w io.Writer, username string) ([]byte, error) {
	if _, err := fmt.Fprintf(w, "Password for %s: ", username); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	if len(pw) == 0 {
		return nil, errEmptyPassword
	}
	return pw, nil
}
