package vin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/auction-tracker/constants"
	"github.com/joseph-ayodele/auction-tracker/internal/entity"
)

const goodResponse = `{
  "Count": 5,
  "Message": "Results returned successfully",
  "SearchCriteria": "VIN:4T1BF1FK5CU123456",
  "Results": [
    {"Value": "TOYOTA", "ValueId": "448", "Variable": "Make", "VariableId": 26},
    {"Value": "", "ValueId": "", "Variable": "Trim", "VariableId": 38},
    {"Value": "Camry", "ValueId": "2469", "Variable": "Model", "VariableId": 28},
    {"Value": null, "ValueId": null, "Variable": "Series", "VariableId": 34},
    {"Value": "2012", "ValueId": "", "Variable": "Model Year", "VariableId": 29}
  ]
}`

func newTestDecoder(t *testing.T, handler http.HandlerFunc) *Decoder {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	d, err := NewDecoder(resty.New(), Config{APIURL: srv.URL + "/api/vehicles/", Concurrency: 2}, nil)
	require.NoError(t, err)
	return d
}

func TestDecode(t *testing.T) {
	var path, format string
	d := newTestDecoder(t, func(w http.ResponseWriter, r *http.Request) {
		path, format = r.URL.Path, r.URL.Query().Get("format")
		_, _ = w.Write([]byte(goodResponse))
	})

	got, err := d.Decode(context.Background(), "4T1BF1FK5CU123456")
	require.NoError(t, err)
	assert.Equal(t, "/api/vehicles/DecodeVin/4T1BF1FK5CU123456", path)
	assert.Equal(t, "json", format)
	assert.Equal(t, entity.VINDetail{
		VIN:        "4T1BF1FK5CU123456",
		Attributes: map[string]string{"Make": "TOYOTA", "Model": "Camry", "Model Year": "2012"},
		Order:      []string{"Make", "Model", "Model Year"},
	}, got)
}

func TestDecodeRejectsUnexpectedShape(t *testing.T) {
	d := newTestDecoder(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Results": [{"Value": 12}]}`))
	})
	_, err := d.Decode(context.Background(), "X")
	require.ErrorContains(t, err, "schema")
}

func TestDecodeAll(t *testing.T) {
	var calls atomic.Int32
	d := newTestDecoder(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if strings.HasSuffix(r.URL.Path, "/BAD") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(goodResponse))
	})

	got := d.DecodeAll(context.Background(), []string{"A1", "BAD", "A1", " ", "B2"})
	require.Len(t, got, 3)
	assert.EqualValues(t, 3, calls.Load())

	assert.Equal(t, "A1", got[0].VIN)
	assert.False(t, got[0].Failed())
	assert.Equal(t, "TOYOTA", got[0].Get("Make"))

	assert.Equal(t, entity.VINDetail{VIN: "BAD", Error: constants.VINLookupFailed}, got[1])
	assert.Equal(t, "B2", got[2].VIN)

	assert.Equal(t, []string{"VIN", "Make", "Model", "Model Year", "Error"}, entity.VINColumns(got))
}

func TestDistinct(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Distinct([]string{"a", "", "b", "a ", "b"}))
}
