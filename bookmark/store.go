package bookmark

import (
	"encoding/json"
	"fmt"
	"os"
)

// Store persists a checkpoint at a fixed path so the next tap invocation
// can receive it via --state. The file is exclusively owned by the
// verification that wrote it and is overwritten by the next one.
type Store struct {
	// Path is the checkpoint file location.
	Path string
}

// Write serializes the checkpoint to the store path.
// A nil checkpoint writes an empty-object placeholder: the run that follows
// should behave as if no checkpoint were available, not crash.
func (s *Store) Write(c Checkpoint) error {
	if c == nil {
		c = Checkpoint{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(s.Path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write checkpoint to %s: %w", s.Path, err)
	}
	return nil
}

// Load re-reads the checkpoint file. The second return is false when the
// file holds the empty-object placeholder (no checkpoint was captured).
func (s *Store) Load() (Checkpoint, bool, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read checkpoint from %s: %w", s.Path, err)
	}
	var c Checkpoint
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, false, fmt.Errorf("invalid checkpoint JSON in %s: %w", s.Path, err)
	}
	return c, len(c) > 0, nil
}
