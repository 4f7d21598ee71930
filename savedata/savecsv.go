package savedata

import (
	"encoding/csv"
	"errors"
	"os"

	"go.uber.org/multierr"
)

var errNoCSV = errors.New("csv not initialised, call NewCSV first")

type SaveCSV struct {
	Name string
	Fp   *os.File
	Data [][]string
}

func (mycsv *SaveCSV) NewCSV(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	mycsv.Name = filename
	mycsv.Fp = file
	mycsv.Data = make([][]string, 0)
	return nil
}

// CloseCSV writes the buffered rows and closes the file
func (mycsv *SaveCSV) CloseCSV() (err error) {
	if mycsv.Fp == nil {
		return errNoCSV
	}
	defer func() {
		err = multierr.Append(err, mycsv.Fp.Close())
		mycsv.Fp = nil
	}()
	w := csv.NewWriter(mycsv.Fp)
	if err := w.WriteAll(mycsv.Data); err != nil {
		return err
	}
	return w.Error()
}

// Append one element to csv data, no actual write
func (mycsv *SaveCSV) AddOneToCSV(data []string) error {
	if mycsv.Fp == nil {
		return errNoCSV
	}
	mycsv.Data = append(mycsv.Data, data)
	return nil
}
