// SPDX-License-Identifier: MPL-2.0

package main

import cmd "pyspect/cmd/pyspect"

func main() {
	cmd.Execute()
}
