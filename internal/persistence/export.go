package persistence

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pierrec/lz4"

	"github.com/talgya/copclicker/internal/engine"
)

// exportPrefix tags export strings so a future format can be told apart.
const exportPrefix = "CC2:"

// maxImportBytes bounds the decompressed size of an import.
const maxImportBytes = 1 << 20

// ErrBadExport is returned for strings Import cannot read.
var ErrBadExport = errors.New("unreadable save export")

// Export encodes s as a copy-pasteable string: base64 of the LZ4-framed
// JSON snapshot.
func Export(s engine.PlayerState) (string, error) {
	data, err := json.Marshal(FromState(s, time.Now().UTC()))
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	var buf bytes.Buffer
	writer := lz4.NewWriter(&buf)
	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return "", fmt.Errorf("compress: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("compress: %w", err)
	}

	return exportPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Import reads an Export string. Raw snapshot JSON, including saves from the
// browser build, is accepted too.
func Import(text string) (engine.PlayerState, error) {
	text = strings.TrimSpace(text)

	var data []byte
	if strings.HasPrefix(text, "{") {
		data = []byte(text)
	} else {
		raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(text, exportPrefix))
		if err != nil {
			return engine.PlayerState{}, fmt.Errorf("%w: %v", ErrBadExport, err)
		}
		reader := lz4.NewReader(bytes.NewReader(raw))
		data, err = io.ReadAll(io.LimitReader(reader, maxImportBytes))
		if err != nil {
			return engine.PlayerState{}, fmt.Errorf("%w: %v", ErrBadExport, err)
		}
	}

	snap, err := DecodeSnapshot(data)
	if err != nil {
		return engine.PlayerState{}, fmt.Errorf("%w: %v", ErrBadExport, err)
	}
	return snap.ToState(), nil
}
