package common

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
)

func MarshalResult(v interface{}) (io.Reader, error) {
	b, err := json.MarshalIndent(v, "", "\t")
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}

// output path without extension, e.g. plots/cross.pdf -> plots/cross
func Getfilename(s string) string {
	return strings.TrimSuffix(s, filepath.Ext(s))
}

func Makeplotdir(s string) error {
	dir := filepath.Dir(s)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0775)
}
