package savedata

import (
	"encoding/gob"
	"os"
	"path/filepath"

	"satanalysis/common"

	"go.uber.org/multierr"
)

func SaveData(path string, data interface{}) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, file.Close())
	}()
	return gob.NewEncoder(file).Encode(data)
}

func LoadData(path string, data interface{}) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return gob.NewDecoder(file).Decode(data)
}

// cut out the extension and replace it with .gob
func GobName(path string) string {
	ext := filepath.Ext(path)
	return path[:len(path)-len(ext)] + ".gob"
}

// SaveJSON writes data as indented json to path with its extension replaced by postfix
func SaveJSON(path, postfix string, data interface{}) (err error) {
	r, err := common.MarshalResult(data)
	if err != nil {
		return err
	}
	ext := filepath.Ext(path)
	f, err := os.Create(path[:len(path)-len(ext)] + postfix)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	_, err = f.ReadFrom(r)
	return err
}
