package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopping-eval/internal/features"
)

const header = "Administrative,Administrative_Duration,Informational,Informational_Duration,ProductRelated,ProductRelated_Duration,BounceRates,ExitRates,PageValues,SpecialDay,Month,OperatingSystems,Browser,Region,TrafficType,VisitorType,Weekend,Revenue"

const sampleCSV = header + `
0,0,0,0,1,0,0.2,0.2,0,0,Feb,1,1,1,1,Returning_Visitor,FALSE,FALSE
0,0,0,0,2,64,0,0.1,0,0,June,2,2,1,2,New_Visitor,TRUE,TRUE
3,142.5,1,20,44,1405.25,0.004,0.017,21.3,0.4,Nov,2,2,3,4,Returning_Visitor,FALSE,TRUE
`

func TestReadCSV(t *testing.T) {
	records, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "Feb", records[0]["Month"])
	assert.Equal(t, "June", records[1]["Month"])
	assert.Equal(t, "142.5", records[2]["Administrative_Duration"])
	assert.Equal(t, "TRUE", records[2]["Revenue"])

	vectors, labels, err := features.EncodeAll(records)
	require.NoError(t, err)
	assert.Equal(t, 5.0, vectors[1][10])
	assert.Equal(t, []features.Label{features.Negative, features.Positive, features.Positive}, labels)
}

func TestReadCSV_ColumnOrderIrrelevant(t *testing.T) {
	cols := strings.Split(header, ",")
	vals := strings.Split("0,0,0,0,2,64,0,0.1,0,0,June,2,2,1,2,New_Visitor,TRUE,TRUE", ",")

	// Reverse both header and values.
	for i, j := 0, len(cols)-1; i < j; i, j = i+1, j-1 {
		cols[i], cols[j] = cols[j], cols[i]
		vals[i], vals[j] = vals[j], vals[i]
	}
	data := strings.Join(cols, ",") + "\n" + strings.Join(vals, ",") + "\n"

	records, err := ReadCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "June", records[0]["Month"])
	assert.Equal(t, "64", records[0]["ProductRelated_Duration"])
	assert.Equal(t, "New_Visitor", records[0]["VisitorType"])
}

func TestReadCSV_ExtraColumnsKept(t *testing.T) {
	data := header + ",SessionID\n0,0,0,0,1,0,0.2,0.2,0,0,Feb,1,1,1,1,Returning_Visitor,FALSE,FALSE,abc\n"

	records, err := ReadCSV(strings.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "abc", records[0]["SessionID"])

	_, _, err = features.EncodeAll(records)
	assert.NoError(t, err)
}

func TestReadCSV_MissingColumn(t *testing.T) {
	data := strings.Replace(header, ",Revenue", "", 1) + "\n"

	_, err := ReadCSV(strings.NewReader(data))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))
	assert.Contains(t, err.Error(), "Revenue")
}

func TestReadCSV_Empty(t *testing.T) {
	testCases := []struct {
		name string
		data string
	}{
		{"no input", ""},
		{"header only", header + "\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tc.data))
			assert.True(t, errors.Is(err, ErrEmptyDataset), "got %v", err)
		})
	}
}

func TestReadCSV_RaggedRow(t *testing.T) {
	data := header + "\n0,0,0\n"

	_, err := ReadCSV(strings.NewReader(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 0")
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shopping.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	records, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestLoadCSV_MissingFile(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
