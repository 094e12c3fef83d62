// Command keeper signs a single user in and out against a policy file and
// checks routes against its rule table.
package main

import "github.com/xraph/keeper/cmd/keeper/cmd"

func main() {
	cmd.Execute()
}
