// Package decode turns raw console bytes emitted by flashing tools into text.
//
// Vendor tools write in the console code page of the host: GBK on Chinese
// Windows installations, UTF-8 elsewhere. Decoding is total: bytes that do not
// form a valid sequence are replaced with U+FFFD instead of failing.
package decode

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/unicode"

	"github.com/kbukum/edlflash/errors"
)

// Decoder maps a raw byte chunk to text. Implementations are stateless and
// safe for concurrent use.
type Decoder interface {
	Decode(b []byte) string
	Name() string
}

// Func adapts a plain function to the Decoder interface.
type Func func(b []byte) string

// Decode calls f(b).
func (f Func) Decode(b []byte) string { return f(b) }

// Name returns "func".
func (f Func) Name() string { return "func" }

type encodingDecoder struct {
	name string
	enc  encoding.Encoding
}

// Decode creates a fresh x/text decoder per call; encoding.Decoder carries
// transform state and must not be shared between goroutines.
func (d encodingDecoder) Decode(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	out, err := d.enc.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), string(utf8Replacement))
	}
	return string(out)
}

func (d encodingDecoder) Name() string { return d.name }

const utf8Replacement = '\uFFFD'

var (
	// GBK decodes the simplified Chinese double-byte code page (CP936).
	GBK Decoder = encodingDecoder{name: "gbk", enc: simplifiedchinese.GBK}
	// UTF8 decodes UTF-8, substituting U+FFFD for invalid bytes.
	UTF8 Decoder = encodingDecoder{name: "utf8", enc: unicode.UTF8}
)

// ByName resolves a configured encoding name. An empty name or "auto"
// selects the platform default.
func ByName(name string) (Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return Default, nil
	case "gbk", "cp936", "gb2312":
		return GBK, nil
	case "utf8", "utf-8":
		return UTF8, nil
	default:
		return nil, errors.InvalidInput("encoding", "unsupported encoding "+name+" (want auto, gbk or utf8)")
	}
}
