// Package main is the entry point of the campus-server application.
// It sets up and starts the server by calling initialization functions from the internal package.
package main

import (
	"campus-server/internal"
)

func main() {
	internal.Init()
}
