package tray

import "errors"

var (
	// ErrLockPoisoned is returned when the tray store was left inconsistent by a
	// panic while the lock was held.
	ErrLockPoisoned = errors.New("lock failed")

	// ErrPlatformUpdate is returned when the platform rejects an in-place update.
	ErrPlatformUpdate = errors.New("tray platform rejected update")

	// ErrConstruction is returned when a menu or tray icon could not be built.
	ErrConstruction = errors.New("tray construction failed")

	// ErrIconRequired is returned when the platform needs an icon image and none
	// was supplied.
	ErrIconRequired = errors.New("tray icon image required on this platform")

	// ErrAlreadyInstalled is returned by Setup when a tray resource is already live.
	ErrAlreadyInstalled = errors.New("tray already installed")
)
