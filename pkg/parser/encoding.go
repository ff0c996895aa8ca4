package parser

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DetectAndDecode detects the encoding of raw CSV bytes, strips any BOM, and
// returns UTF-8 bytes plus the detected encoding name. Exports from the
// commercial dashboard arrive as UTF-8, UTF-16 with BOM, or Windows-1252;
// anything that is not valid UTF-8 and carries no BOM falls back to the
// Windows-1252 interpretation.
func DetectAndDecode(data []byte) ([]byte, string, error) {
	if len(data) == 0 {
		return data, "utf-8", nil
	}

	if bytes.HasPrefix(data, bomUTF8) {
		return data[len(bomUTF8):], "utf-8-bom", nil
	}

	if bytes.HasPrefix(data, bomUTF16LE) {
		decoded, err := decodeWith(data, unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM))
		if err != nil {
			return nil, "", fmt.Errorf("UTF-16 LE decode failed: %w", err)
		}
		return decoded, "utf-16le", nil
	}

	if bytes.HasPrefix(data, bomUTF16BE) {
		decoded, err := decodeWith(data, unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM))
		if err != nil {
			return nil, "", fmt.Errorf("UTF-16 BE decode failed: %w", err)
		}
		return decoded, "utf-16be", nil
	}

	if utf8.Valid(data) {
		return data, "utf-8", nil
	}

	decoded, err := decodeWith(data, charmap.Windows1252)
	if err != nil {
		return nil, "", fmt.Errorf("Windows-1252 decode failed: %w", err)
	}
	return decoded, "windows-1252", nil
}

func decodeWith(data []byte, enc encoding.Encoding) ([]byte, error) {
	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	return out, err
}
