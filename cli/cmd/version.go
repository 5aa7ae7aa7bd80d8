package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/mariocostaoptiply/tap-synccheck/cli/render"
)

// VersionResponse is the response for the version command.
type VersionResponse struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
}

// VersionCommand returns the version command.
// It must not touch the tap or any artifact.
func VersionCommand(version, commit string) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Flags: ReadOnlyFlags(),
		Action: func(c *cli.Context) error {
			r, err := render.NewRenderer(c)
			if err != nil {
				return err
			}
			return r.Render(VersionResponse{Version: version, Commit: commit})
		},
	}
}
