package activation

import "crypto/rand"

const (
	// CodeLength is the number of characters in a generated activation code.
	CodeLength = 10

	// CodeAlphabet excludes glyphs that are easy to misread (i, l, o, 0, 1).
	// It has exactly 32 symbols, so a byte masked with 31 is uniform over it.
	CodeAlphabet = "abcdefghjkmnpqrstuvwxyz23456789#"
)

// Generator produces fresh activation codes.
type Generator interface {
	Generate() string
}

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func() string

func (f GeneratorFunc) Generate() string { return f() }

// RandomGenerator draws codes from crypto/rand. A draw equal to
// ConsumedValue is discarded and drawn again.
type RandomGenerator struct {
	// draw is replaced in tests.
	draw func() string
}

func (g RandomGenerator) Generate() string {
	draw := g.draw
	if draw == nil {
		draw = randomCode
	}
	for {
		code := draw()
		if code != ConsumedValue {
			return code
		}
	}
}

func randomCode() string {
	buf := make([]byte, CodeLength)
	// crypto/rand.Read never returns an error on supported platforms.
	_, _ = rand.Read(buf)
	for i, b := range buf {
		buf[i] = CodeAlphabet[b&31]
	}
	return string(buf)
}
