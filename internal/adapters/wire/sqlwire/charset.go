package sqlwire

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// charset pairs a client charset with its MySQL name. enc is nil for UTF-8.
type charset struct {
	mysql string
	enc   encoding.Encoding
}

// Names used by TDS servers that the WHATWG index does not know.
var charsetAliases = map[string]string{
	"iso_1":   "iso-8859-1",
	"utf8mb4": "utf-8",
	"utf8mb3": "utf-8",
	"mac":     "macintosh",
	"latin1":  "windows-1252",
}

var mysqlCharsets = map[string]string{
	"utf-8":        "utf8mb4",
	"windows-1252": "latin1",
	"iso-8859-2":   "latin2",
	"iso-8859-7":   "greek",
	"iso-8859-8":   "hebrew",
	"iso-8859-9":   "latin5",
	"windows-1250": "cp1250",
	"windows-1251": "cp1251",
	"windows-1256": "cp1256",
	"windows-1257": "cp1257",
	"koi8-r":       "koi8r",
	"shift_jis":    "sjis",
	"euc-jp":       "ujis",
	"euc-kr":       "euckr",
	"gbk":          "gbk",
	"big5":         "big5",
	"ibm866":       "cp866",
	"macintosh":    "macroman",
}

func lookupCharset(name string) (charset, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := charsetAliases[key]; ok {
		key = alias
	}
	enc, err := htmlindex.Get(key)
	if err != nil {
		return charset{}, fmt.Errorf("unknown charset %q: %w", name, err)
	}
	canonical, err := htmlindex.Name(enc)
	if err != nil {
		return charset{}, fmt.Errorf("unknown charset %q: %w", name, err)
	}

	cs := charset{mysql: mysqlCharsets[canonical]}
	if cs.mysql == "" {
		cs.mysql = canonical
	}
	if canonical != "utf-8" {
		cs.enc = enc
	}
	return cs, nil
}

// decodeText transcodes server text to UTF-8.
func (cs charset) decodeText(b []byte) (string, error) {
	if cs.enc == nil {
		return string(b), nil
	}
	out, err := cs.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("decode %s text: %w", cs.mysql, err)
	}
	return string(out), nil
}
