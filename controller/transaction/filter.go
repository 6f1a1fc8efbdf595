package transaction

import (
	"errors"
	"strconv"
	"time"

	"ezwallet/model"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

var (
	errDateMixed    = errors.New("Can't use date filter together with from or upTo")
	errDateFormat   = errors.New("Invalid date format: Expected format: YYYY-MM-DD")
	errAmountFormat = errors.New("Invalid numerical value: Expected a numerical input.")
)

// Filter narrows a transaction listing. Zero fields match everything; dates
// are calendar days in UTC and Until is exclusive.
type Filter struct {
	From     time.Time
	Until    time.Time
	Min, Max *float64
	Category string
}

func (f Filter) Match(tx model.Transaction) bool {
	if f.Category != "" && tx.Type != f.Category {
		return false
	}
	if !f.From.IsZero() && tx.Date.Before(f.From) {
		return false
	}
	if !f.Until.IsZero() && !tx.Date.Before(f.Until) {
		return false
	}
	if f.Min != nil && tx.Amount < *f.Min {
		return false
	}
	if f.Max != nil && tx.Amount > *f.Max {
		return false
	}
	return true
}

// ParseFilter reads the date, from, upTo, min and max query parameters.
func ParseFilter(c *gin.Context) (Filter, error) {
	var f Filter
	date, from, upTo := c.Query("date"), c.Query("from"), c.Query("upTo")
	if date != "" && (from != "" || upTo != "") {
		return f, errDateMixed
	}
	if date != "" {
		from, upTo = date, date
	}
	if from != "" {
		day, err := time.Parse(dateLayout, from)
		if err != nil {
			return f, errDateFormat
		}
		f.From = day
	}
	if upTo != "" {
		day, err := time.Parse(dateLayout, upTo)
		if err != nil {
			return f, errDateFormat
		}
		f.Until = day.AddDate(0, 0, 1)
	}

	var err error
	if f.Min, err = amountParam(c, "min"); err != nil {
		return f, err
	}
	if f.Max, err = amountParam(c, "max"); err != nil {
		return f, err
	}
	return f, nil
}

func amountParam(c *gin.Context, key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errAmountFormat
	}
	return &value, nil
}
