package data

import (
	"context"
	"testing"

	"github.com/mchmarny/healsure/pkg/dataset"
	"github.com/mchmarny/healsure/pkg/insurance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveDataset_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	table, err := dataset.Synthetic{Rows: 25, Seed: 7}.TrainingTable(context.Background())
	require.NoError(t, err)

	require.NoError(t, SaveDataset(db, "small", dataset.SourceSynthetic, table))

	got, err := GetDataset(db, "small")
	require.NoError(t, err)
	assert.Equal(t, table, got)

	// replacing keeps only the new rows
	require.NoError(t, SaveDataset(db, "small", dataset.SourceCSV, table[:5]))
	got, err = GetDataset(db, "small")
	require.NoError(t, err)
	assert.Len(t, got, 5)

	list, err := GetDatasets(db)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "small", list[0].Name)
	assert.Equal(t, dataset.SourceCSV, list[0].Source)
	assert.Equal(t, int64(5), list[0].Rows)
}

func TestSaveDataset_Invalid(t *testing.T) {
	db := setupTestDB(t)
	bad := insurance.Table{{
		Applicant: insurance.Applicant{
			Age: 30, Sex: insurance.SexMale, BMI: 25, Smoker: insurance.SmokerNo, Region: "atlantis",
		},
		Charges: 1000,
	}}
	err := SaveDataset(db, "bad", dataset.SourceCSV, bad)
	assert.ErrorIs(t, err, insurance.ErrInvalidInputRange)
	assert.Error(t, SaveDataset(db, "", dataset.SourceCSV, nil))
}

func TestDeleteDataset_CascadesRows(t *testing.T) {
	db := setupTestDB(t)
	table, err := dataset.Synthetic{Rows: 10, Seed: 1}.TrainingTable(context.Background())
	require.NoError(t, err)
	require.NoError(t, SaveDataset(db, DatasetNameDefault, dataset.SourceSynthetic, table))

	require.NoError(t, DeleteDataset(db, DatasetNameDefault))

	state, err := GetDataState(db)
	require.NoError(t, err)
	assert.Equal(t, int64(0), state["dataset"])
	assert.Equal(t, int64(0), state["dataset_row"])
}

func TestTableSource(t *testing.T) {
	db := setupTestDB(t)
	table, err := dataset.Synthetic{Rows: 12, Seed: 3}.TrainingTable(context.Background())
	require.NoError(t, err)
	require.NoError(t, SaveDataset(db, DatasetNameDefault, dataset.SourceSynthetic, table))

	var src dataset.Source = TableSource{DB: db}
	got, err := src.TrainingTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, table, got)

	missing, err := TableSource{DB: db, Name: "nope"}.TrainingTable(context.Background())
	require.NoError(t, err)
	assert.Empty(t, missing)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = TableSource{DB: db}.TrainingTable(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
