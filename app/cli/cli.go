// Package cli defines the command line interface of prefsync.
package cli

import "github.com/alecthomas/kong"

// CLI is the command line interface of prefsync.
type CLI struct {
	Ctx *kong.Context

	Declare Declare `kong:"cmd,help='Declare a preference key and its type.'"`
	Get     Get     `kong:"cmd,help='Print the value of a preference.'"`
	Set     Set     `kong:"cmd,help='Set the value of a preference.'"`
	Ls      Ls      `kong:"cmd,help='List declared preferences.'"`
	Watch   Watch   `kong:"cmd,help='Print preference changes as they happen.'"`
	Serve   Serve   `kong:"cmd,help='Serve the preference API over HTTP.'"`

	DataDir       string `kong:"help='Directory to keep preference data in.'"`
	Backend       string `kong:"default='badger',enum='badger,sqlite',help='Persistent store backend.'"`
	EncryptionKey string `kong:"help='Base58-encoded 32-byte key used for encrypting stored values.\n Only supported by the badger backend. '"`
}

// Setup the command-line interface.
func (c *CLI) Setup(args []string) error {
	parser, err := kong.New(c,
		kong.Name("prefsync"),
		kong.UsageOnError(),
		kong.DefaultEnvars("PREFSYNC"),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
	)
	if err != nil {
		return err
	}

	c.Ctx, err = parser.Parse(args)

	return err
}
