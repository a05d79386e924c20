package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophgate/internal/common"
)

// getPassword is an indirection used to facilitate testing.
var getPassword = GetPassword

var errUsage = errors.New("usage")

// Login reads the password for args[0] and authenticates through the
// AuthService. The password is wiped before returning.
func (a *App) Login(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: login <username>", errUsage)
	}

	password, err := getPassword(a.out, args[0])
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Login(ctx, args[0], password); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Login successful")
	return nil
}

// Logout revokes the session on the server and clears local credentials.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
