package ffmpeg

import (
	ffmpeg_go "github.com/u2takey/ffmpeg-go"

	"video-trimmer/domain/video"
)

// Args renders a trim command as an ffmpeg argument list (without the program name):
// seek the input to Start, read InputPath, limit the output to Duration, stream-copy
// into OutputPath, overwriting it if present.
func Args(cmd *video.TrimCommand) []string {
	inputKw := ffmpeg_go.KwArgs{"ss": cmd.Start}
	outputKw := ffmpeg_go.KwArgs{"t": cmd.Duration}
	if cmd.StreamCopy {
		outputKw["c"] = "copy"
	}

	stream := ffmpeg_go.Input(cmd.InputPath, inputKw).Output(cmd.OutputPath, outputKw)
	if cmd.Overwrite {
		stream = stream.OverWriteOutput()
	}

	return stream.GetArgs()
}
