package video

// TrimCommand is the stream-copy invocation handed to the codec engine.
// It is built fresh per request and never persisted.
type TrimCommand struct {
	InputPath  string
	Start      string // seek offset applied to the input, HH:MM:SS.mmm
	Duration   string // length of the output, HH:MM:SS.mmm
	OutputPath string
	StreamCopy bool
	Overwrite  bool
}

// BuildTrimCommand assembles a stream-copy trim of [start, end) from inputPath into outputPath.
// It performs no I/O.
func BuildTrimCommand(inputPath string, start, end float64, outputPath string) (*TrimCommand, error) {
	if inputPath == "" {
		return nil, ErrSourceRequired
	}
	if err := ValidateRange(start, end); err != nil {
		return nil, err
	}

	return &TrimCommand{
		InputPath:  inputPath,
		Start:      FormatTimecode(start),
		Duration:   FormatTimecode(end - start),
		OutputPath: outputPath,
		StreamCopy: true,
		Overwrite:  true,
	}, nil
}
