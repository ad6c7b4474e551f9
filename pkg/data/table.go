package data

import (
	"context"
	"database/sql"
	"time"

	"github.com/mchmarny/healsure/pkg/insurance"
	"github.com/pkg/errors"
)

const (
	DatasetNameDefault = "default"

	upsertDatasetSQL = `INSERT INTO dataset (name, source, created_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET source = ?, created_at = ?`

	deleteDatasetRowsSQL = `DELETE FROM dataset_row WHERE dataset = ?`

	insertDatasetRowSQL = `INSERT INTO dataset_row (
		dataset, position, age, sex, bmi, children, smoker, region, charges
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectDatasetRowsSQL = `SELECT age, sex, bmi, children, smoker, region, charges
		FROM dataset_row
		WHERE dataset = ?
		ORDER BY position`

	selectDatasetsSQL = `SELECT d.name, d.source, d.created_at, COUNT(r.position)
		FROM dataset d
		LEFT JOIN dataset_row r ON r.dataset = d.name
		GROUP BY d.name, d.source, d.created_at
		ORDER BY d.name`

	deleteDatasetSQL = `DELETE FROM dataset WHERE name = ?`
)

// Dataset describes a stored training table.
type Dataset struct {
	Name      string `json:"name" yaml:"name"`
	Source    string `json:"source" yaml:"source"`
	CreatedAt string `json:"created_at" yaml:"created_at"`
	Rows      int64  `json:"rows" yaml:"rows"`
}

// SaveDataset replaces the rows of the named dataset with t in one transaction.
func SaveDataset(db *sql.DB, name, source string, t insurance.Table) error {
	if db == nil {
		return errDBNotInitialized
	}
	if name == "" {
		return errors.New("dataset name required")
	}
	if err := t.Validate(); err != nil {
		return errors.Wrap(err, "invalid dataset")
	}

	now := time.Now().UTC().Format(timeFormat)

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	if _, err := tx.Exec(upsertDatasetSQL, name, source, now, source, now); err != nil {
		_ = tx.Rollback()
		return errors.Wrapf(err, "failed to save dataset: %s", name)
	}
	if _, err := tx.Exec(deleteDatasetRowsSQL, name); err != nil {
		_ = tx.Rollback()
		return errors.Wrapf(err, "failed to clear dataset rows: %s", name)
	}

	stmt, err := tx.Prepare(insertDatasetRowSQL)
	if err != nil {
		_ = tx.Rollback()
		return errors.Wrap(err, "failed to prepare batch statement")
	}
	defer stmt.Close()

	for i, r := range t {
		if _, err := stmt.Exec(name, i, r.Age, r.Sex, r.BMI, r.Children, r.Smoker, r.Region, r.Charges); err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "failed to insert row %d", i)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

// GetDataset loads the rows of the named dataset in their original order.
func GetDataset(db *sql.DB, name string) (insurance.Table, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectDatasetRowsSQL, name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to select dataset: %s", name)
	}
	defer rows.Close()

	t := make(insurance.Table, 0)
	for rows.Next() {
		var r insurance.Row
		if err := rows.Scan(&r.Age, &r.Sex, &r.BMI, &r.Children, &r.Smoker, &r.Region, &r.Charges); err != nil {
			return nil, errors.Wrap(err, "failed to scan dataset row")
		}
		t = append(t, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating dataset rows")
	}
	return t, nil
}

// GetDatasets lists the stored datasets.
func GetDatasets(db *sql.DB) ([]*Dataset, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectDatasetsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to select datasets")
	}
	defer rows.Close()

	list := make([]*Dataset, 0)
	for rows.Next() {
		d := &Dataset{}
		if err := rows.Scan(&d.Name, &d.Source, &d.CreatedAt, &d.Rows); err != nil {
			return nil, errors.Wrap(err, "failed to scan dataset")
		}
		list = append(list, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating datasets")
	}
	return list, nil
}

// DeleteDataset removes the named dataset and its rows.
func DeleteDataset(db *sql.DB, name string) error {
	if db == nil {
		return errDBNotInitialized
	}
	if _, err := db.Exec(deleteDatasetSQL, name); err != nil {
		return errors.Wrapf(err, "failed to delete dataset: %s", name)
	}
	return nil
}

// TableSource serves a stored dataset as a training table source.
type TableSource struct {
	DB   *sql.DB
	Name string
}

// TrainingTable loads the dataset; an unknown or empty dataset yields an
// empty table.
func (s TableSource) TrainingTable(ctx context.Context) (insurance.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name := s.Name
	if name == "" {
		name = DatasetNameDefault
	}
	return GetDataset(s.DB, name)
}
