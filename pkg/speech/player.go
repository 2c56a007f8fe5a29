package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
)

const playerBinary = "aplay"

// pcmPlayer plays raw PCM16 mono audio through an aplay subprocess.
// One process per utterance: playback ends when stdin is closed and
// the process exits, which keeps Speak naturally synchronous.
type pcmPlayer struct {
	binary     string
	sampleRate int
}

func newPCMPlayer(sampleRate int) *pcmPlayer {
	return &pcmPlayer{binary: playerBinary, sampleRate: sampleRate}
}

// play streams pcm to the audio device and blocks until done.
func (p *pcmPlayer) play(ctx context.Context, pcm []byte) error {
	if len(pcm) == 0 {
		return ErrNoAudio
	}

	cmd := exec.CommandContext(ctx, p.binary,
		"-q",
		"-t", "raw",
		"-f", "S16_LE",
		"-c", "1",
		"-r", strconv.Itoa(p.sampleRate),
	)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("player pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", p.binary, err)
	}

	_, werr := io.Copy(stdin, bytes.NewReader(pcm))
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ErrInterrupted
		}
		return fmt.Errorf("%s: %w", p.binary, err)
	}
	if werr != nil {
		return fmt.Errorf("player write: %w", werr)
	}
	return nil
}
