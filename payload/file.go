package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/calebcase/oops"
	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// Format is the serialization of a stored response.
type Format int

// Response Formats
const (
	Auto Format = iota
	JSON
	MsgPack
)

func (f Format) String() string {
	switch f {
	case Auto:
		return "auto"
	case JSON:
		return "json"
	case MsgPack:
		return "msgpack"
	}

	return "unknown"
}

// ParseFormat maps a format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return Auto, nil
	case "json":
		return JSON, nil
	case "msgpack", "mp":
		return MsgPack, nil
	}

	return Auto, Error.New("unknown format %q", s)
}

// zstdMagic prefixes every zstd frame.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Detect guesses the format of data. JSON documents start with '{' after
// optional whitespace; anything else is treated as msgpack.
func Detect(data []byte) Format {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return JSON
	}

	return MsgPack
}

// Unmarshal decodes a response serialized as f.
func Unmarshal(data []byte, f Format) (p *Payload, err error) {
	if bytes.HasPrefix(data, zstdMagic) {
		data, err = decompress(data)
		if err != nil {
			return nil, err
		}
	}

	if f == Auto {
		f = Detect(data)
	}

	var v any

	switch f {
	case JSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()

		err = dec.Decode(&v)
		if err != nil {
			return nil, Error.Wrap(oops.Trace(err))
		}

		var extra any
		if err = dec.Decode(&extra); !errors.Is(err, io.EOF) {
			return nil, Error.New("trailing data after response")
		}
	case MsgPack:
		err = msgpack.Unmarshal(data, &v)
		if err != nil {
			return nil, Error.Wrap(oops.Trace(err))
		}
	default:
		return nil, Error.New("unsupported format: %s", f)
	}

	return FromValue(v)
}

// ReadFile loads a stored response. A .zst suffix selects zstd decompression
// and the remaining extension selects the format.
func ReadFile(path string) (p *Payload, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Error.Wrap(oops.Trace(err))
	}

	name := strings.TrimSuffix(path, ".zst")

	f := Auto
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		f = JSON
	case ".msgpack", ".mp", ".mpk":
		f = MsgPack
	}

	return Unmarshal(data, f)
}

func decompress(data []byte) (out []byte, err error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, Error.Wrap(oops.Trace(err))
	}
	defer dec.Close()

	out, err = dec.DecodeAll(data, nil)
	if err != nil {
		return nil, Error.Wrap(oops.Trace(err))
	}

	return out, nil
}
