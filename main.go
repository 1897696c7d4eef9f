// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/gogunpack/gogunpack/cmd/gogunpack"

func main() {
	cmd.Execute()
}
