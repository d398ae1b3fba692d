package audio

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

// whisper.cpp expects mono float32 PCM at 16 kHz in [-1, 1].
const TargetSampleRate = 16000

// DecodePCM16k turns a media file into mono 16 kHz float32 samples.
// wav, mp3 and ogg-vorbis are decoded in-process; anything else (video
// containers, ogg-opus voice notes) goes through an ffmpeg conversion to a
// temporary wav first.
func DecodePCM16k(ctx context.Context, path string) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch sniffFormat(f, path) {
	case "wav":
		return decodeWAV(f)
	case "mp3":
		return decodeMP3(f)
	case "ogg":
		if pcm, err := decodeOggVorbis(f); err == nil {
			return pcm, nil
		}
		// Telegram voice notes are ogg-opus; hand those to ffmpeg.
		fallthrough
	default:
		return decodeViaFFmpeg(ctx, path)
	}
}

// sniffFormat trusts the extension first and falls back to magic bytes,
// since Telegram file paths do not always carry one.
func sniffFormat(f *os.File, path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return "wav"
	case ".mp3":
		return "mp3"
	case ".ogg", ".oga":
		return "ogg"
	}
	br := bufio.NewReader(f)
	magic, _ := br.Peek(4)
	_, _ = f.Seek(0, io.SeekStart)
	switch string(magic) {
	case "RIFF":
		return "wav"
	case "OggS":
		return "ogg"
	}
	return ""
}

func decodeWAV(r io.ReadSeeker) ([]float32, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid wav")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, errors.New("empty wav")
	}

	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}
	pcm := make([]float32, len(buf.Data))
	scale := 1.0 / float64(int64(1)<<(bitDepth-1))
	for i, v := range buf.Data {
		pcm[i] = float32(clamp(float64(v) * scale))
	}

	channels, rate := 1, 44100
	if buf.Format != nil {
		if buf.Format.NumChannels > 0 {
			channels = buf.Format.NumChannels
		}
		if buf.Format.SampleRate > 0 {
			rate = buf.Format.SampleRate
		}
	}
	return normalize(pcm, channels, rate), nil
}

func decodeMP3(r io.Reader) ([]float32, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}
	var raw bytes.Buffer
	if _, err := io.Copy(&raw, dec); err != nil {
		return nil, err
	}
	ints := make([]int16, raw.Len()/2)
	if err := binary.Read(bytes.NewReader(raw.Bytes()), binary.LittleEndian, &ints); err != nil {
		return nil, err
	}
	pcm := make([]float32, len(ints))
	for i, v := range ints {
		pcm[i] = float32(v) / 32768.0
	}
	// the mp3 decoder always emits interleaved stereo
	return normalize(pcm, 2, dec.SampleRate()), nil
}

func decodeOggVorbis(r io.Reader) ([]float32, error) {
	pcm, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if format == nil || format.Channels <= 0 || format.SampleRate <= 0 {
		return nil, errors.New("invalid ogg-vorbis stream")
	}
	return normalize(pcm, format.Channels, format.SampleRate), nil
}

// normalize downmixes interleaved channels to mono and resamples to the
// target rate.
func normalize(pcm []float32, channels, rate int) []float32 {
	if channels > 1 {
		frames := len(pcm) / channels
		mono := make([]float32, frames)
		for i := 0; i < frames; i++ {
			var sum float64
			for c := 0; c < channels; c++ {
				sum += float64(pcm[i*channels+c])
			}
			mono[i] = float32(sum / float64(channels))
		}
		pcm = mono
	}
	if rate <= 0 {
		rate = 44100
	}
	if rate != TargetSampleRate {
		pcm = resample(pcm, rate, TargetSampleRate)
	}
	return pcm
}

// resample does linear interpolation; accuracy is sufficient for speech.
func resample(in []float32, from, to int) []float32 {
	if from == to || len(in) == 0 {
		return in
	}
	ratio := float64(to) / float64(from)
	n := int(float64(len(in)) * ratio)
	out := make([]float32, n)
	for i := range out {
		src := float64(i) / ratio
		j := int(src)
		if j+1 >= len(in) {
			out[i] = in[len(in)-1]
			continue
		}
		frac := float32(src - float64(j))
		out[i] = in[j]*(1-frac) + in[j+1]*frac
	}
	return out
}

func clamp(x float64) float64 {
	if x < -1 {
		return -1
	}
	if x > 1 {
		return 1
	}
	return x
}

var errNoSamples = fmt.Errorf("no audio samples decoded")
