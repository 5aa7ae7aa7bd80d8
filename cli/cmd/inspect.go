package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/mariocostaoptiply/tap-synccheck/bookmark"
	"github.com/mariocostaoptiply/tap-synccheck/cli/render"
	"github.com/mariocostaoptiply/tap-synccheck/tap"
)

// InspectResponse summarizes a saved run log.
type InspectResponse struct {
	Log            string              `json:"log"`
	Messages       int                 `json:"messages"`
	Records        int                 `json:"records"`
	States         int                 `json:"states"`
	Others         int                 `json:"others"`
	HasCheckpoint  bool                `json:"has_checkpoint"`
	ReplicationKey string              `json:"replication_key_value"`
	Checkpoint     bookmark.Checkpoint `json:"checkpoint,omitempty"`
}

// InspectCommand returns the inspect command.
// Inspect reparses a raw run log left behind by check, without invoking
// the tap.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Summarize a saved run log (message counts, last checkpoint)",
		ArgsUsage: "<log-path>",
		Flags: append(ReadOnlyFlags(),
			&cli.StringFlag{
				Name:  "stream",
				Usage: "Stream whose replication key value is displayed",
				Value: "products",
			},
		),
		Action: inspectAction,
	}
}

func inspectAction(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("log-path required", exitOrchestration)
	}
	logPath := c.Args().First()

	r, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	resp, err := inspectLog(logPath, c.String("stream"))
	if err != nil {
		return cli.Exit(err.Error(), exitOrchestration)
	}

	return r.Render(resp)
}

func inspectLog(logPath, stream string) (*InspectResponse, error) {
	f, err := os.Open(logPath)
	if err != nil {
		return nil, fmt.Errorf("cannot open run log: %w", err)
	}
	defer func() { _ = f.Close() }()

	messages, err := tap.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse run log %s: %w", logPath, err)
	}

	resp := &InspectResponse{
		Log:            logPath,
		Messages:       len(messages),
		Records:        tap.Count(messages, tap.MessageRecord),
		States:         tap.Count(messages, tap.MessageState),
		Others:         tap.Count(messages, tap.MessageOther),
		ReplicationKey: bookmark.NotAvailable,
	}

	if cp, ok := bookmark.Latest(messages); ok {
		resp.HasCheckpoint = true
		resp.Checkpoint = cp
		if rk, found := cp.ReplicationKeyValue(stream); found {
			resp.ReplicationKey = fmt.Sprint(rk)
		}
	}

	return resp, nil
}
