package loader

import (
	"bytes"
	"strings"

	"github.com/h2non/filetype"
	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

type srcEncoding int

const (
	encUnknown srcEncoding = iota
	encUTF8
	encUTF16BigEndian
	encUTF16LittleEndian
	encUTF32BigEndian
	encUTF32LittleEndian
)

func (e srcEncoding) String() string {
	switch e {
	case encUTF8:
		return "utf-8"
	case encUTF16BigEndian:
		return "utf-16be"
	case encUTF16LittleEndian:
		return "utf-16le"
	case encUTF32BigEndian:
		return "utf-32be"
	case encUTF32LittleEndian:
		return "utf-32le"
	default:
		return "unknown"
	}
}

// encoding returns decoder which also drops BOM.
func (e srcEncoding) encoding() encoding.Encoding {
	switch e {
	case encUTF8:
		return unicode.UTF8BOM
	case encUTF16BigEndian:
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	case encUTF16LittleEndian:
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)
	case encUTF32BigEndian:
		return utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM)
	case encUTF32LittleEndian:
		return utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM)
	}
	return nil
}

func isUTF8BOM3(buf []byte) bool {
	return len(buf) >= 3 && buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF
}

func isUTF16BigEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFE && buf[1] == 0xFF
}

func isUTF16LittleEndianBOM2(buf []byte) bool {
	return len(buf) >= 2 && buf[0] == 0xFF && buf[1] == 0xFE
}

func isUTF32BigEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0x00 && buf[1] == 0x00 && buf[2] == 0xFE && buf[3] == 0xFF
}

func isUTF32LittleEndianBOM4(buf []byte) bool {
	return len(buf) >= 4 && buf[0] == 0xFF && buf[1] == 0xFE && buf[2] == 0x00 && buf[3] == 0x00
}

// detectUTF looks for byte order mark. UTF-32LE has to be checked before
// UTF-16LE, their marks share first two bytes.
func detectUTF(buf []byte) srcEncoding {
	switch {
	case isUTF8BOM3(buf):
		return encUTF8
	case isUTF32BigEndianBOM4(buf):
		return encUTF32BigEndian
	case isUTF32LittleEndianBOM4(buf):
		return encUTF32LittleEndian
	case isUTF16BigEndianBOM2(buf):
		return encUTF16BigEndian
	case isUTF16LittleEndianBOM2(buf):
		return encUTF16LittleEndian
	}
	return encUnknown
}

// binaryKind returns name of recognized binary format, empty for anything
// which could be text.
func binaryKind(head []byte) string {
	if !filetype.IsImage(head) && !filetype.IsArchive(head) && !filetype.IsFont(head) &&
		!filetype.IsVideo(head) && !filetype.IsAudio(head) && !filetype.IsDocument(head) {
		return ""
	}
	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown {
		return "binary"
	}
	return kind.MIME.Value
}

// sniffLimit is how much of a stylesheet is looked at for @charset.
const sniffLimit = 1024

// sniffCharset returns label of leading @charset rule, empty when there is
// none.
func sniffCharset(data []byte) string {
	if len(data) > sniffLimit {
		data = data[:sniffLimit]
	}
	p := css.NewParser(parse.NewInputBytes(data), false)
	for {
		gt, _, name := p.Next()
		switch gt {
		case css.CommentGrammar:
			continue
		case css.TokenGrammar:
			if len(bytes.TrimSpace(name)) == 0 {
				continue
			}
		case css.AtRuleGrammar:
			if !bytes.EqualFold(name, []byte("@charset")) {
				return ""
			}
			for _, v := range p.Values() {
				if v.TokenType == css.StringToken {
					return strings.Trim(string(v.Data), `"'`)
				}
			}
		}
		return ""
	}
}
