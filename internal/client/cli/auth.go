package cli

import (
	"context"
	"errors"
	"os"

	"github.com/dmitrijs2005/alarmify/internal/common"
)

// Register creates an account on the sync server and registers this
// device under it.
func (a *App) Register(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Choose a username", os.Stdout)
	if err != nil {
		return err
	}
	password, err := GetPassword(os.Stdout)
	if err != nil {
		return err
	}

	if err := a.api.Register(ctx, username, password); err != nil {
		if errors.Is(err, common.ErrValidation) {
			printlnFn("Registration failed:", err.Error())
		} else {
			printlnFn("Server unavailable, try again later")
		}
		return err
	}

	a.userName = username
	printlnFn("Account created, you are logged in")
	return a.registerThisDevice(ctx)
}

// Login authenticates against the sync server.
func (a *App) Login(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "Username", os.Stdout)
	if err != nil {
		return err
	}
	password, err := GetPassword(os.Stdout)
	if err != nil {
		return err
	}

	if err := a.api.Login(ctx, username, password); err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			printlnFn("Invalid username or password")
		} else {
			printlnFn("Server unavailable, try again later")
		}
		return err
	}

	a.userName = username
	printlnFn("Logged in")
	return a.registerThisDevice(ctx)
}

// Logout drops the local session. Nothing is removed on the server.
func (a *App) Logout(ctx context.Context) error {
	a.api.Logout()
	a.userName = ""
	printlnFn("Logged out")
	return nil
}

func (a *App) registerThisDevice(ctx context.Context) error {
	if err := a.api.RegisterDevice(ctx, a.deviceID, a.config.DeviceName); err != nil {
		a.logger.Warn(ctx, "device registration failed", "device_id", a.deviceID, "error", err)
		return err
	}
	return nil
}
