// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/cdda-tools/cdda-updater/cmd/cdda-updater"

func main() {
	cmd.Execute()
}
