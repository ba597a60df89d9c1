package importer

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
)

const (
	EncodingUTF8    = "utf-8"
	EncodingUTF8BOM = "utf-8-sig"
	EncodingGBK     = "gbk"
	EncodingGB18030 = "gb18030"
	EncodingLatin1  = "iso-8859-1"
)

//nolint:gochecknoglobals // Read-only lookup tables.
var (
	utf8BOM = []byte{0xEF, 0xBB, 0xBF}

	legacyEncodings = []struct {
		name string
		enc  encoding.Encoding
	}{
		{EncodingGBK, simplifiedchinese.GBK},
		{EncodingGB18030, simplifiedchinese.GB18030},
	}
)

// Decode converts raw file bytes to text. UTF-8 (with or without BOM) is
// tried first, then GBK and GB18030. ISO-8859-1 accepts any input and is the
// last resort. The name of the encoding that was used is returned alongside.
func Decode(data []byte) (string, string) {
	if rest, ok := bytes.CutPrefix(data, utf8BOM); ok && utf8.Valid(rest) {
		return string(rest), EncodingUTF8BOM
	}

	if utf8.Valid(data) {
		return string(data), EncodingUTF8
	}

	for _, legacy := range legacyEncodings {
		decoded, err := legacy.enc.NewDecoder().Bytes(data)
		if err != nil {
			continue
		}

		// x/text decoders replace invalid sequences instead of failing.
		if strings.ContainsRune(string(decoded), utf8.RuneError) {
			continue
		}

		return string(decoded), legacy.name
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return string(bytes.ToValidUTF8(data, nil)), EncodingLatin1
	}

	return string(decoded), EncodingLatin1
}
