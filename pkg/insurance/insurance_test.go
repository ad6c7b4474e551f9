package insurance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validRow() Row {
	return Row{
		Applicant: Applicant{Age: 35, Sex: SexMale, BMI: 25.0, Children: 0, Smoker: SmokerNo, Region: RegionNortheast},
		Charges:   12000,
	}
}

func TestApplicantValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(a *Applicant)
		valid  bool
	}{
		{"valid", func(a *Applicant) {}, true},
		{"min age", func(a *Applicant) { a.Age = MinAge }, true},
		{"max age", func(a *Applicant) { a.Age = MaxAge }, true},
		{"too young", func(a *Applicant) { a.Age = 17 }, false},
		{"too old", func(a *Applicant) { a.Age = 101 }, false},
		{"bmi low", func(a *Applicant) { a.BMI = 14.9 }, false},
		{"bmi high", func(a *Applicant) { a.BMI = 50.1 }, false},
		{"bmi nan", func(a *Applicant) { a.BMI = math.NaN() }, false},
		{"bmi inf", func(a *Applicant) { a.BMI = math.Inf(1) }, false},
		{"negative children", func(a *Applicant) { a.Children = -1 }, false},
		{"too many children", func(a *Applicant) { a.Children = 6 }, false},
		{"unknown region passes range check", func(a *Applicant) { a.Region = "atlantis" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validRow().Applicant
			tt.modify(&a)
			err := a.Validate()
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidInputRange)
		})
	}
}

func TestRowValidate(t *testing.T) {
	r := validRow()
	assert.NoError(t, r.Validate())

	r.Region = "atlantis"
	assert.ErrorIs(t, r.Validate(), ErrInvalidInputRange)

	r = validRow()
	r.Sex = "Male"
	assert.ErrorIs(t, r.Validate(), ErrInvalidInputRange)

	r = validRow()
	r.Charges = 0
	assert.ErrorIs(t, r.Validate(), ErrInvalidInputRange)

	for _, c := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		r = validRow()
		r.Charges = c
		assert.ErrorIs(t, r.Validate(), ErrInvalidInputRange, "charges %v", c)
	}
}

func TestTableValidate(t *testing.T) {
	bad := validRow()
	bad.Smoker = "sometimes"
	tbl := Table{validRow(), bad}

	err := tbl.Validate()
	assert.ErrorIs(t, err, ErrInvalidInputRange)
	assert.Contains(t, err.Error(), "row 1")

	assert.NoError(t, Table{validRow()}.Validate())
	assert.NoError(t, Table{}.Validate())
}

func TestContains(t *testing.T) {
	assert.True(t, Contains(Regions, RegionSoutheast))
	assert.False(t, Contains(Regions, "atlantis"))
	assert.False(t, Contains[string](nil, "a"))
}
