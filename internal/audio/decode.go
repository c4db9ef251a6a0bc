package audio

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/wav"
)

var ErrUnsupported = errors.New("unsupported audio format")

type memFile struct{ *bytes.Reader }

func (memFile) Close() error { return nil }

// Decode picks a decoder from the extension of name, which may be a URL.
// Names without an extension are treated as mp3.
func Decode(name string, data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	if u, err := url.Parse(name); err == nil && u.Path != "" {
		name = u.Path
	}
	r := memFile{bytes.NewReader(data)}
	switch ext := strings.ToLower(path.Ext(name)); ext {
	case ".mp3", "":
		s, f, err := mp3.Decode(r)
		if err != nil {
			return nil, beep.Format{}, fmt.Errorf("decode mp3: %w", err)
		}
		return s, f, nil
	case ".wav":
		s, f, err := wav.Decode(r)
		if err != nil {
			return nil, beep.Format{}, fmt.Errorf("decode wav: %w", err)
		}
		return s, f, nil
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
}
