package data

import (
	"database/sql"
	"time"

	"github.com/mchmarny/healsure/pkg/premium"
	"github.com/mchmarny/healsure/pkg/wellness"
	"github.com/pkg/errors"
)

const (
	QuoteLimitDefault = 100

	insertQuoteSQL = `INSERT INTO quote (
		id, created_at, session_id, age, sex, bmi, children, smoker, region,
		wellness_bmi, wellness_smoker, exercise_freq, diet_quality, sleep_hours, stress_level,
		base_premium, wellness_score, discount_percentage, final_premium
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectQuotesSQL = `SELECT
		id, created_at, age, sex, bmi, children, smoker, region,
		wellness_bmi, wellness_smoker, exercise_freq, diet_quality, sleep_hours, stress_level,
		base_premium, wellness_score, discount_percentage, final_premium
	FROM quote
	ORDER BY created_at DESC, id
	LIMIT ?`

	selectQuoteSummarySQL = `SELECT
		COUNT(*),
		COALESCE(AVG(base_premium), 0),
		COALESCE(AVG(final_premium), 0),
		COALESCE(AVG(wellness_score), 0),
		COALESCE(AVG(discount_percentage), 0),
		COALESCE(SUM(base_premium - final_premium), 0),
		COALESCE(MIN(created_at), ''),
		COALESCE(MAX(created_at), '')
	FROM quote`

	deleteQuotesSQL = `DELETE FROM quote`
)

// QuoteSummary aggregates the stored quote history.
type QuoteSummary struct {
	Count            int64   `json:"count" yaml:"count"`
	AvgBasePremium   float64 `json:"avg_base_premium" yaml:"avg_base_premium"`
	AvgFinalPremium  float64 `json:"avg_final_premium" yaml:"avg_final_premium"`
	AvgWellnessScore float64 `json:"avg_wellness_score" yaml:"avg_wellness_score"`
	AvgDiscount      float64 `json:"avg_discount_percentage" yaml:"avg_discount_percentage"`
	TotalSavings     float64 `json:"total_savings" yaml:"total_savings"`
	FirstQuote       string  `json:"first_quote,omitempty" yaml:"first_quote,omitempty"`
	LastQuote        string  `json:"last_quote,omitempty" yaml:"last_quote,omitempty"`
}

// SaveQuote persists q under the given session.
func SaveQuote(db *sql.DB, sessionID string, q *premium.Quote) error {
	if db == nil {
		return errDBNotInitialized
	}
	if q == nil {
		return errors.New("quote required")
	}

	stmt, err := db.Prepare(insertQuoteSQL)
	if err != nil {
		return errors.Wrap(err, "failed to prepare quote insert statement")
	}
	defer stmt.Close()

	a, w := q.Applicant, q.Wellness
	if _, err = stmt.Exec(
		q.ID, q.CreatedAt.UTC().Format(timeFormat), sessionID,
		a.Age, a.Sex, a.BMI, a.Children, a.Smoker, a.Region,
		w.BMI, w.Smoker, w.ExerciseFreq, w.Diet, w.SleepHours, w.StressLevel,
		q.BasePremium, q.WellnessScore, q.DiscountPercentage, q.FinalPremium,
	); err != nil {
		return errors.Wrapf(err, "failed to insert quote: %s", q.ID)
	}

	return nil
}

// GetQuotes returns up to limit quotes, newest first. The wellness breakdown
// is recomputed from the stored inputs.
func GetQuotes(db *sql.DB, limit int) ([]*premium.Quote, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if limit <= 0 {
		limit = QuoteLimitDefault
	}

	rows, err := db.Query(selectQuotesSQL, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute quote select statement")
	}
	defer rows.Close()

	list := make([]*premium.Quote, 0)
	for rows.Next() {
		q := &premium.Quote{}
		var created string
		if err := rows.Scan(
			&q.ID, &created,
			&q.Applicant.Age, &q.Applicant.Sex, &q.Applicant.BMI, &q.Applicant.Children,
			&q.Applicant.Smoker, &q.Applicant.Region,
			&q.Wellness.BMI, &q.Wellness.Smoker,
			&q.Wellness.ExerciseFreq, &q.Wellness.Diet, &q.Wellness.SleepHours, &q.Wellness.StressLevel,
			&q.BasePremium, &q.WellnessScore, &q.DiscountPercentage, &q.FinalPremium,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan quote row")
		}

		if q.CreatedAt, err = time.Parse(timeFormat, created); err != nil {
			return nil, errors.Wrapf(err, "invalid quote time: %s", created)
		}
		q.DiscountAmount = q.BasePremium - q.FinalPremium
		q.Breakdown = wellness.Breakdown(q.Wellness)
		list = append(list, q)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating quote rows")
	}
	return list, nil
}

// GetQuoteSummary aggregates all stored quotes.
func GetQuoteSummary(db *sql.DB) (*QuoteSummary, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	s := &QuoteSummary{}
	if err := db.QueryRow(selectQuoteSummarySQL).Scan(
		&s.Count, &s.AvgBasePremium, &s.AvgFinalPremium, &s.AvgWellnessScore,
		&s.AvgDiscount, &s.TotalSavings, &s.FirstQuote, &s.LastQuote,
	); err != nil {
		return nil, errors.Wrap(err, "failed to scan quote summary")
	}
	return s, nil
}

// DeleteQuotes clears the quote history and returns the number removed.
func DeleteQuotes(db *sql.DB) (int64, error) {
	if db == nil {
		return 0, errDBNotInitialized
	}

	res, err := db.Exec(deleteQuotesSQL)
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete quotes")
	}
	return res.RowsAffected()
}
