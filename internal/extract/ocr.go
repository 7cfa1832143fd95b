package extract

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"curebird/internal/util"
)

// OCR turns image bytes into text. Unreadable input yields "", never an error.
type OCR interface {
	Recognize(ctx context.Context, image []byte) string
}

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, stdin io.Reader, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct {
	logger zerolog.Logger
}

func (r execRunner) Run(ctx context.Context, stdin io.Reader, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()
	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdin = stdin
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	elapsed := time.Since(start)
	if err != nil {
		r.logger.Error().Err(err).Str("cmd", name).Str("args", strings.Join(args, " ")).
			Int64("elapsed_ms", elapsed.Milliseconds()).Str("stderr", util.Truncate(errb.String(), 8<<10, "...(truncated)")).
			Msg("exec.failed")
	} else {
		r.logger.Debug().Str("cmd", name).Int64("elapsed_ms", elapsed.Milliseconds()).
			Int("stdout_bytes", out.Len()).Msg("exec.ok")
	}
	return out.Bytes(), errb.Bytes(), err
}

type TesseractConfig struct {
	Bin         string
	Lang        string
	TessdataDir string
	Timeout     time.Duration
}

// Tesseract runs the tesseract CLI, reading the image from stdin.
type Tesseract struct {
	cfg    TesseractConfig
	runner Runner
	logger zerolog.Logger
}

func NewTesseract(cfg TesseractConfig, logger zerolog.Logger) *Tesseract {
	logger = logger.With().Str("component", "ocr").Logger()
	return NewTesseractWithRunner(cfg, execRunner{logger: logger}, logger)
}

func NewTesseractWithRunner(cfg TesseractConfig, runner Runner, logger zerolog.Logger) *Tesseract {
	if cfg.Bin == "" {
		cfg.Bin = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Tesseract{cfg: cfg, runner: runner, logger: logger}
}

func (t *Tesseract) Recognize(ctx context.Context, image []byte) string {
	if len(image) == 0 {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	// tesseract stdin stdout -l <lang>
	args := []string{"stdin", "stdout", "-l", t.cfg.Lang}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}
	out, _, err := t.runner.Run(ctx, bytes.NewReader(image), t.cfg.Bin, args...)
	if err != nil {
		t.logger.Warn().Err(err).Msg("ocr.failed")
		return ""
	}
	return util.NormalizeWhitespace(util.SanitizeText(string(out)))
}
