package cli

import (
	"context"
	"os"
	"path/filepath"
)

// optionalPath returns the folder argument at position i, or "" meaning
// the user root.
func optionalPath(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return ""
}

func (a *App) requireLogin() bool {
	if !a.isLoggedIn() {
		printlnFn("Log in first")
		return false
	}
	return true
}

// List prints one folder level of the user tree. Usage: ls [path]
func (a *App) List(ctx context.Context, args []string) error {
	if !a.requireLogin() {
		return nil
	}

	l, err := a.client.List(ctx, a.userName, optionalPath(args, 0))
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	for _, f := range l.Folders {
		printlnFn(f + "/")
	}
	for _, f := range l.Files {
		printlnFn(f)
	}
	return nil
}

// MakeFolder creates a folder. Usage: mkdir <name> [path]
func (a *App) MakeFolder(ctx context.Context, args []string) error {
	if !a.requireLogin() {
		return nil
	}
	if len(args) == 0 {
		printlnFn("Usage: mkdir <name> [path]")
		return nil
	}

	if err := a.client.CreateFolder(ctx, a.userName, optionalPath(args, 1), args[0]); err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn("Folder created")
	return nil
}

// Put uploads a local file. Usage: put <file> [path]
func (a *App) Put(ctx context.Context, args []string) error {
	if !a.requireLogin() {
		return nil
	}
	if len(args) == 0 {
		printlnFn("Usage: put <file> [path]")
		return nil
	}

	f, err := os.Open(args[0])
	if err != nil {
		printlnFn(err.Error())
		return err
	}
	defer f.Close()

	name, err := a.client.Upload(ctx, a.userName, optionalPath(args, 1), args[0], f)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn("Uploaded " + name)
	return nil
}

// Get downloads a file into the current directory. Usage: get <name> [path]
func (a *App) Get(ctx context.Context, args []string) error {
	if !a.requireLogin() {
		return nil
	}
	if len(args) == 0 {
		printlnFn("Usage: get <name> [path]")
		return nil
	}

	name := args[0]
	dest := filepath.Base(name)

	f, err := os.Create(dest)
	if err != nil {
		printlnFn(err.Error())
		return err
	}

	if _, err := a.client.Download(ctx, a.userName, optionalPath(args, 1), name, f); err != nil {
		f.Close()
		os.Remove(dest)
		printlnFn(err.Error())
		return err
	}

	if err := f.Close(); err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn("Saved " + dest)
	return nil
}

// RemoveFile deletes a file. Usage: rm <name> [path]
func (a *App) RemoveFile(ctx context.Context, args []string) error {
	if !a.requireLogin() {
		return nil
	}
	if len(args) == 0 {
		printlnFn("Usage: rm <name> [path]")
		return nil
	}

	if err := a.client.DeleteFile(ctx, a.userName, optionalPath(args, 1), args[0]); err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn("File deleted")
	return nil
}

// RemoveFolder deletes a folder recursively. Usage: rmdir <name> [path]
func (a *App) RemoveFolder(ctx context.Context, args []string) error {
	if !a.requireLogin() {
		return nil
	}
	if len(args) == 0 {
		printlnFn("Usage: rmdir <name> [path]")
		return nil
	}

	if err := a.client.DeleteFolder(ctx, a.userName, optionalPath(args, 1), args[0]); err != nil {
		printlnFn(err.Error())
		return err
	}

	printlnFn("Folder deleted")
	return nil
}
