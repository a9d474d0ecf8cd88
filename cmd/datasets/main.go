// Copyright © 2018 One Concern

package main

import (
	"github.com/oneconcern/datasets/cmd/datasets/cmd"
)

func main() {
	cmd.Execute()
}
