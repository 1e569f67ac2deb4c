// Package tts binds text-to-speech playback to the platform synthesizer:
// say on macOS, PowerShell System.Speech on Windows, espeak elsewhere.
// Playback runs the synth binary as a child process; Stop kills it.
package tts

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/tsinghua-lau/transgo/i18n"
)

// Default voices per platform and language.
const (
	voiceDarwinZh  = "Ting-Ting"
	voiceDarwinEn  = "Alex"
	voiceWindowsZh = "Microsoft Huihui Desktop"
	voiceWindowsEn = "Microsoft Zira Desktop"
)

// Options tunes one playback.
type Options struct {
	// Voice overrides the platform default for the language.
	Voice string
	// Rate is the speech rate in words per minute; 0 keeps the platform
	// default.
	Rate int
}

// Voice is one preset offered to the UI.
type Voice struct {
	Name string
	Lang string
}

// Service drives the platform synthesizer. At most one playback runs at a
// time; starting a new one stops the previous.
type Service struct {
	mu  sync.Mutex
	cmd *exec.Cmd

	// Injection points for tests.
	goos     string
	lookPath func(string) (string, error)
}

func NewService() *Service {
	return &Service{
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
	}
}

// synthBinary names the binary probed for availability.
func synthBinary(goos string) string {
	switch goos {
	case "darwin":
		return "say"
	case "windows":
		return "powershell"
	default:
		return "espeak"
	}
}

// defaultVoice picks the platform voice for a language.
func defaultVoice(goos, lang string) string {
	switch goos {
	case "darwin":
		if lang == "zh" {
			return voiceDarwinZh
		}
		return voiceDarwinEn
	case "windows":
		if lang == "zh" {
			return voiceWindowsZh
		}
		return voiceWindowsEn
	default:
		if lang == "zh" {
			return "zh"
		}
		return "en"
	}
}

// buildArgs assembles the synth invocation. Pure, so the per-platform
// contracts are testable without running a synthesizer.
func buildArgs(goos, text, lang string, opts Options) (bin string, args []string) {
	voice := opts.Voice
	if voice == "" {
		voice = defaultVoice(goos, lang)
	}

	switch goos {
	case "darwin":
		args = []string{"-v", voice}
		if opts.Rate > 0 {
			args = append(args, "-r", strconv.Itoa(opts.Rate))
		}
		return "say", append(args, text)

	case "windows":
		var script strings.Builder
		script.WriteString("Add-Type -AssemblyName System.Speech; ")
		script.WriteString("$s = New-Object System.Speech.Synthesis.SpeechSynthesizer; ")
		script.WriteString("$s.SelectVoice('" + psQuote(voice) + "'); ")
		if opts.Rate > 0 {
			// System.Speech rate runs -10..10.
			script.WriteString("$s.Rate = " + strconv.Itoa(clampRate(opts.Rate)) + "; ")
		}
		script.WriteString("$s.Speak('" + psQuote(text) + "')")
		return "powershell", []string{"-NoProfile", "-Command", script.String()}

	default:
		args = []string{"-v", voice}
		if opts.Rate > 0 {
			args = append(args, "-s", strconv.Itoa(opts.Rate))
		}
		return "espeak", append(args, text)
	}
}

// psQuote escapes a string for a single-quoted PowerShell literal.
func psQuote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// clampRate maps a words-per-minute figure onto System.Speech's -10..10
// scale, pinned around the ~180 wpm default.
func clampRate(wpm int) int {
	r := (wpm - 180) / 20
	if r < -10 {
		r = -10
	}
	if r > 10 {
		r = 10
	}
	return r
}

// IsAvailable reports whether the platform synthesizer is on PATH.
func (s *Service) IsAvailable() bool {
	_, err := s.lookPath(synthBinary(s.goos))
	return err == nil
}

// Voices lists the presets for the current platform.
func (s *Service) Voices() []Voice {
	switch s.goos {
	case "darwin":
		return []Voice{{Name: voiceDarwinZh, Lang: "zh"}, {Name: voiceDarwinEn, Lang: "en"}}
	case "windows":
		return []Voice{{Name: voiceWindowsZh, Lang: "zh"}, {Name: voiceWindowsEn, Lang: "en"}}
	default:
		return []Voice{{Name: "zh", Lang: "zh"}, {Name: "en", Lang: "en"}}
	}
}

// Speak plays text aloud and blocks until playback finishes, the context
// is cancelled, or Stop is called. Starting a playback stops any previous
// one.
func (s *Service) Speak(ctx context.Context, text, lang string, opts Options) error {
	if strings.TrimSpace(text) == "" {
		return errors.New(i18n.T("nothing to read aloud"))
	}
	if !s.IsAvailable() {
		return errors.New(i18n.T("text to speech is not available on this system"))
	}

	bin, args := buildArgs(s.goos, text, lang, opts)

	s.mu.Lock()
	if s.cmd != nil && s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	if err := cmd.Start(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.cmd = cmd
	s.mu.Unlock()

	err := cmd.Wait()

	s.mu.Lock()
	if s.cmd == cmd {
		s.cmd = nil
	}
	s.mu.Unlock()

	// A kill from Stop or context cancellation is not a playback failure.
	if err != nil && (ctx.Err() != nil || strings.Contains(err.Error(), "killed")) {
		return nil
	}
	return err
}

// Stop terminates the current playback, if any. Safe to call repeatedly.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd != nil && s.cmd.Process != nil {
		s.cmd.Process.Kill()
		s.cmd = nil
	}
}
