package statmodel

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/kshedden/dstream/dstream"
)

// Dataset is a column-oriented in-memory data table.  The columns are
// fixed for the lifetime of the dataset; models read them but never
// modify them.
type Dataset struct {
	data  [][]Dtype
	names []string
}

// NewDataset constructs a Dataset from the given data columns and
// variable names.  All columns must have the same length and the names
// must be distinct.
func NewDataset(data [][]Dtype, names []string) (*Dataset, error) {

	if len(data) != len(names) {
		return nil, fmt.Errorf("statmodel: %d data columns but %d names", len(data), len(names))
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("statmodel: dataset has no columns")
	}

	n := len(data[0])
	for j, col := range data {
		if len(col) != n {
			return nil, fmt.Errorf("statmodel: column '%s' has length %d, expected %d",
				names[j], len(col), n)
		}
	}

	seen := make(map[string]bool)
	for _, na := range names {
		if seen[na] {
			return nil, fmt.Errorf("statmodel: duplicate variable name '%s'", na)
		}
		seen[na] = true
	}

	return &Dataset{data: data, names: names}, nil
}

// Names returns the variable names of the dataset columns.
func (ds *Dataset) Names() []string {
	return ds.names
}

// NumObs returns the number of observations (rows) in the dataset.
func (ds *Dataset) NumObs() int {
	return len(ds.data[0])
}

// NumVar returns the number of variables (columns) in the dataset.
func (ds *Dataset) NumVar() int {
	return len(ds.data)
}

// Data returns the dataset columns.
func (ds *Dataset) Data() [][]Dtype {
	return ds.data
}

// Pos returns the position of the named variable, or -1 if it is not
// present.
func (ds *Dataset) Pos(name string) int {
	for j, na := range ds.names {
		if na == name {
			return j
		}
	}
	return -1
}

// Col returns the column of data for the named variable.
func (ds *Dataset) Col(name string) []Dtype {
	j := ds.Pos(name)
	if j == -1 {
		panic(fmt.Sprintf("statmodel: variable '%s' not found", name))
	}
	return ds.data[j]
}

// FromDstream materializes a dstream into a Dataset.  All variables in
// the dstream must have float64 type.
func FromDstream(da dstream.Dstream) (*Dataset, error) {

	names := da.Names()
	data := make([][]Dtype, len(names))

	da.Reset()
	for da.Next() {
		for j := range names {
			col, ok := da.GetPos(j).([]float64)
			if !ok {
				return nil, fmt.Errorf("statmodel: variable '%s' is not float64", names[j])
			}
			data[j] = append(data[j], col...)
		}
	}

	return NewDataset(data, names)
}

// FromCSVFile reads the named CSV file into a Dataset, retaining the
// given variables, all of which are converted to float64.  The file must
// have a header row.  Files ending in .gz are decompressed on the fly.
func FromCSVFile(path string, vars []string) (*Dataset, error) {

	fid, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fid.Close()

	var rdr io.Reader = fid
	if strings.HasSuffix(path, ".gz") {
		gid, err := gzip.NewReader(fid)
		if err != nil {
			return nil, err
		}
		defer gid.Close()
		rdr = gid
	}

	types := make([]dstream.VarType, len(vars))
	for j, v := range vars {
		types[j] = dstream.VarType{Name: v, Type: dstream.Float64}
	}

	da := dstream.FromCSV(rdr).SetTypes(types).ChunkSize(1024).HasHeader().Done()

	return FromDstream(da)
}
