package render

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	terr "github.com/matzehuels/townsquare/pkg/errors"
)

// Converter is the external tool used for PDF and PNG output.
const Converter = "rsvg-convert"

const installHint = `install librsvg:
  macOS:  brew install librsvg
  Linux:  apt install librsvg2-bin`

// ToPDF converts SVG bytes to PDF.
func ToPDF(svg []byte) ([]byte, error) {
	return convert(svg, "pdf")
}

// ToPNG converts SVG bytes to PNG. A scale of 2 doubles the resolution;
// non-positive scales mean 1.
func ToPNG(svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	return convert(svg, "png", "--zoom", fmt.Sprintf("%.2f", scale))
}

// Available reports whether the converter is on PATH.
func Available() bool {
	_, err := exec.LookPath(Converter)
	return err == nil
}

// convert pipes svg through the converter. A missing converter is
// UNSUPPORTED so the server answers 501 rather than 500.
func convert(svg []byte, format string, args ...string) ([]byte, error) {
	if len(svg) == 0 {
		return nil, terr.New(terr.ErrCodeInvalidInput, "%s export: empty svg", format)
	}
	if !Available() {
		return nil, terr.New(terr.ErrCodeUnsupported, "%s export needs %s; %s", format, Converter, installHint)
	}

	cmd := exec.Command(Converter, append([]string{"--format", format}, args...)...)
	cmd.Stdin = bytes.NewReader(svg)
	var out, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &out, &stderr

	if err := cmd.Run(); err != nil {
		return nil, terr.Wrap(terr.ErrCodeInternal, err, "%s: %s", Converter, strings.TrimSpace(stderr.String()))
	}
	return out.Bytes(), nil
}
