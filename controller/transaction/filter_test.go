package transaction

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ezwallet/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queryContext(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/api/users/mario/transactions?"+query, nil)
	return c
}

func TestParseFilter_Errors(t *testing.T) {
	tests := []struct {
		query string
		want  error
	}{
		{"date=2023-04-30&from=2023-04-01", errDateMixed},
		{"date=2023-04-30&upTo=2023-05-01", errDateMixed},
		{"date=30-04-2023", errDateFormat},
		{"from=2023-4-1", errDateFormat},
		{"upTo=yesterday", errDateFormat},
		{"min=ten", errAmountFormat},
		{"max=1e", errAmountFormat},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			_, err := ParseFilter(queryContext(tt.query))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFilter_Match(t *testing.T) {
	day := time.Date(2023, 4, 30, 0, 0, 0, 0, time.UTC)
	txs := []model.Transaction{
		{TransactionID: "before", Amount: 10, Type: "food", Date: day.Add(-time.Minute)},
		{TransactionID: "morning", Amount: 50, Type: "food", Date: day.Add(8 * time.Hour)},
		{TransactionID: "night", Amount: 200, Type: "rent", Date: day.Add(24*time.Hour - time.Second)},
		{TransactionID: "after", Amount: 30, Type: "food", Date: day.Add(24 * time.Hour)},
	}
	tests := []struct {
		query    string
		category string
		want     []string
	}{
		{"", "", []string{"before", "morning", "night", "after"}},
		{"date=2023-04-30", "", []string{"morning", "night"}},
		{"from=2023-04-30", "", []string{"morning", "night", "after"}},
		{"upTo=2023-04-30", "", []string{"before", "morning", "night"}},
		{"min=30&max=100", "", []string{"morning", "after"}},
		{"date=2023-04-30&max=100", "", []string{"morning"}},
		{"", "food", []string{"before", "morning", "after"}},
	}
	for _, tt := range tests {
		t.Run(tt.query+"/"+tt.category, func(t *testing.T) {
			filter, err := ParseFilter(queryContext(tt.query))
			require.NoError(t, err)
			filter.Category = tt.category

			var got []string
			for _, tx := range txs {
				if filter.Match(tx) {
					got = append(got, tx.TransactionID)
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
