//go:build headless

package main

import "errors"

func runWindow(_ *driver, _, _ int) error {
	return errors.New("built without window support, use -term")
}
