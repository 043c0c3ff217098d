package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/cycler/pkg/codec"
	cerrors "github.com/matzehuels/cycler/pkg/errors"
	"github.com/matzehuels/cycler/pkg/pipeline"
)

// stdio names standard input or output in place of a path.
const stdio = "-"

// readInput reads the document at path, or stdin for "" and "-".
func (c *CLI) readInput(path string) ([]byte, error) {
	if path == "" {
		path = stdio
	}
	if err := cerrors.ValidateInputFilename(path); err != nil {
		return nil, err
	}

	var r io.Reader = c.Stdin
	if path != stdio {
		f, err := os.Open(path)
		if err != nil {
			return nil, cerrors.Classify(fmt.Errorf("open input: %w", err))
		}
		defer f.Close()
		r = f
	}

	// One extra byte tells an oversized input from one at the limit.
	data, err := io.ReadAll(io.LimitReader(r, pipeline.MaxInputSize+1))
	if err != nil {
		return nil, cerrors.Wrap(cerrors.ErrCodeInvalidInput, err, "read %s", displayPath(path))
	}
	return data, nil
}

// writeOutput writes data to path, or stdout for "" and "-". Files are
// written to a temporary sibling first and renamed into place.
func (c *CLI) writeOutput(path string, data []byte) error {
	if path == "" || path == stdio {
		_, err := c.Stdout.Write(data)
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// formatFor returns the explicit format name, or guesses one from path.
// An empty result leaves the choice to the pipeline defaults.
func formatFor(explicit, path string) codec.Format {
	if explicit != "" {
		return codec.Format(explicit)
	}
	if path == "" || path == stdio {
		return ""
	}
	return codec.FormatFromPath(path, "")
}

func displayPath(path string) string {
	if path == "" || path == stdio {
		return "stdin"
	}
	return path
}
