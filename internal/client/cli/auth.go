package cli

import (
	"context"
	"os"

	"github.com/dmitrijs2005/filekeeper/internal/common"
)

// Register prompts for credentials and creates a new account on the server.
func (a *App) Register(ctx context.Context) error {
	userName, err := GetSimpleText(a.reader, "Enter user name", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	password, err := GetPassword(os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.client.Register(ctx, userName, password); err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn("Registered. You can now log in.")
	return nil
}

// Login verifies credentials with the server and remembers the user name
// for subsequent file commands.
func (a *App) Login(ctx context.Context) error {
	userName, err := GetSimpleText(a.reader, "Enter user name", os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	password, err := GetPassword(os.Stdout)
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.client.Login(ctx, userName, password); err != nil {
		printlnFn(err.Error())
		return err
	}

	a.userName = userName
	printlnFn("Success!")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.userName = ""
	printlnFn("Logged out")
	return nil
}
