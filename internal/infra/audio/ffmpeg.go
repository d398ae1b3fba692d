package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// decodeViaFFmpeg converts anything the in-process decoders cannot handle
// (video containers, ogg-opus voice notes) to a throwaway 16 kHz mono wav
// and decodes that. Requires ffmpeg on PATH.
func decodeViaFFmpeg(ctx context.Context, path string) ([]float32, error) {
	tmp, err := os.CreateTemp("", "scribe-*.wav")
	if err != nil {
		return nil, err
	}
	wavPath := tmp.Name()
	tmp.Close()
	defer os.Remove(wavPath)

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-i", path, "-y",
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		wavPath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpeg conversion failed: %w: %s", err, tail(out, 300))
	}

	f, err := os.Open(wavPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pcm, err := decodeWAV(f)
	if err != nil {
		return nil, err
	}
	if len(pcm) == 0 {
		return nil, errNoSamples
	}
	return pcm, nil
}

func tail(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[len(b)-n:])
}
