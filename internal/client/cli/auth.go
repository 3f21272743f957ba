package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/outfitcal/daybook/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for an email and password and creates a new account.
// The password byte slice is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.client.Register(ctx, email, string(password)); err != nil {
		fmt.Println("Registration failed:", err)
		return err
	}

	fmt.Println("Success! You can now login.")
	return nil
}

// Login prompts for credentials and authenticates against the server.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.client.Login(ctx, email, string(password)); err != nil {
		fmt.Println("Login failed:", err)
		return err
	}

	fmt.Println("Success!")
	return nil
}

// Logout drops the held tokens and the working state.
func (a *App) Logout(ctx context.Context) error {
	a.client.Logout()
	fmt.Println("Logged out.")
	return nil
}
