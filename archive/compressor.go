package archive

import (
	"fmt"

	"github.com/BackupTheBerlios/kryptocd/childfilter"
	"github.com/BackupTheBerlios/kryptocd/endpoint"
	"github.com/BackupTheBerlios/kryptocd/kerrors"
)

// Compressor is a ChildFilter around the compression tool. A level in
// 1..9 selects compression; any other value selects decompression, per
// the spec's "signed integer whose meaning is level if in 1..9 else
// decompress" contract.
type Compressor struct {
	filter *childfilter.ChildFilter
}

// NewCompressor spawns the compression tool wired between source and
// sink.
func NewCompressor(compressorExe string, level int, source endpoint.Source, sink endpoint.Sink) (*Compressor, error) {
	var argv []string
	if level >= 1 && level <= 9 {
		argv = []string{compressorExe, "--stdout", fmt.Sprintf("-%d", level)}
	} else {
		argv = []string{compressorExe, "--stdout", "--decompress"}
	}

	filter, err := childfilter.New(compressorExe, argv, source, sink)
	if err != nil {
		return nil, err
	}
	return &Compressor{filter: filter}, nil
}

// Close reaps the compressor, terminating it first if it is still
// running (a no-op signal if it has already exited naturally), and
// reports an abnormal exit.
func (c *Compressor) Close() error {
	if err := c.filter.Close(); err != nil {
		return fmt.Errorf("compressor: close: %w", err)
	}
	if state := c.filter.LastState(); state != nil && state.ExitedAbnormally() {
		return fmt.Errorf("compressor: %w: %s", kerrors.ErrSpawnFailed, state)
	}
	return nil
}

// ValidCompressionLevel reports whether level is a valid compress
// selection (1..9). It does not validate the "decompress" sentinel space,
// since any other integer is legal for that purpose by contract.
func ValidCompressionLevel(level int) bool {
	return level >= 1 && level <= 9
}
