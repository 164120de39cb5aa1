package main

import (
	"github.com/hlysunnaram/sirius-ci/cmd"
)

func main() {
	cmd.Execute()
}
