package dataset

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mchmarny/healsure/pkg/insurance"
	"github.com/mchmarny/healsure/pkg/net"
	"github.com/pkg/errors"
)

var columns = []string{"age", "sex", "bmi", "children", "smoker", "region", "charges"}

// CSVFile reads a table from a local CSV file with a header row naming the
// age, sex, bmi, children, smoker, region and charges columns in any order.
type CSVFile struct {
	Path string
}

// TrainingTable reads and validates the file.
func (f CSVFile) TrainingTable(ctx context.Context) (insurance.Table, error) {
	if f.Path == "" {
		return nil, errors.New("csv path required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(f.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening csv file: %s", f.Path)
	}
	defer file.Close()

	t, err := ReadCSV(file)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading csv file: %s", f.Path)
	}
	slog.Debug("csv table loaded", "path", f.Path, "rows", len(t))
	return t, nil
}

// Remote downloads a CSV table from URL.
type Remote struct {
	URL string
}

// TrainingTable downloads the file into a temp dir and reads it.
func (r Remote) TrainingTable(ctx context.Context) (insurance.Table, error) {
	if r.URL == "" {
		return nil, errors.New("url required")
	}

	dir, err := os.MkdirTemp("", "healsure-")
	if err != nil {
		return nil, errors.Wrap(err, "error creating temp dir")
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "table.csv")
	if err := net.Download(ctx, r.URL, path); err != nil {
		return nil, errors.Wrapf(err, "error downloading table: %s", r.URL)
	}
	return CSVFile{Path: path}.TrainingTable(ctx)
}

// ReadCSV parses a table from r.
func ReadCSV(r io.Reader) (insurance.Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.Wrap(insurance.ErrEmptyTrainingSet, "missing header")
		}
		return nil, errors.Wrap(err, "error reading header")
	}

	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range columns {
		if _, ok := pos[c]; !ok {
			return nil, errors.Errorf("missing column: %s", c)
		}
	}

	table := make(insurance.Table, 0)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "error reading line %d", line)
		}

		row, err := parseRow(rec, pos)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		if err := row.Validate(); err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		table = append(table, row)
	}
	return table, nil
}

func parseRow(rec []string, pos map[string]int) (insurance.Row, error) {
	var r insurance.Row
	var err error

	field := func(name string) string {
		return strings.TrimSpace(rec[pos[name]])
	}

	if r.Age, err = strconv.Atoi(field("age")); err != nil {
		return r, errors.Wrap(err, "invalid age")
	}
	if r.BMI, err = strconv.ParseFloat(field("bmi"), 64); err != nil {
		return r, errors.Wrap(err, "invalid bmi")
	}
	if r.Children, err = strconv.Atoi(field("children")); err != nil {
		return r, errors.Wrap(err, "invalid children")
	}
	if r.Charges, err = strconv.ParseFloat(field("charges"), 64); err != nil {
		return r, errors.Wrap(err, "invalid charges")
	}
	r.Sex = strings.ToLower(field("sex"))
	r.Smoker = strings.ToLower(field("smoker"))
	r.Region = strings.ToLower(field("region"))
	return r, nil
}

// WriteCSV writes t with a header row.
func WriteCSV(w io.Writer, t insurance.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return errors.Wrap(err, "error writing header")
	}
	for _, r := range t {
		rec := []string{
			strconv.Itoa(r.Age),
			r.Sex,
			strconv.FormatFloat(r.BMI, 'f', -1, 64),
			strconv.Itoa(r.Children),
			r.Smoker,
			r.Region,
			strconv.FormatFloat(r.Charges, 'f', 2, 64),
		}
		if err := cw.Write(rec); err != nil {
			return errors.Wrap(err, "error writing row")
		}
	}
	cw.Flush()
	return cw.Error()
}
