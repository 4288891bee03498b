package report

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alvmarrod/news-weaver/internal/telemetry"
)

func TestWriteFetches(t *testing.T) {
	var buf bytes.Buffer
	n, err := WriteFetches(&buf, []telemetry.FetchRecord{
		{URL: "https://www.nytimes.com/", StatusCode: 200},
		{URL: "https://www.nytimes.com/old", StatusCode: 301},
	}, 0)

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "URL,Status\nhttps://www.nytimes.com/,200\nhttps://www.nytimes.com/old,301\n", buf.String())
}

func TestWriteFetchesRespectsRowCap(t *testing.T) {
	var fetches []telemetry.FetchRecord
	for i := 0; i < 25; i++ {
		fetches = append(fetches, telemetry.FetchRecord{URL: fmt.Sprintf("https://www.nytimes.com/%d", i), StatusCode: 200})
	}

	var buf bytes.Buffer
	n, err := WriteFetches(&buf, fetches, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, 11, bytes.Count(buf.Bytes(), []byte("\n")))
}

func TestWriteVisitsQuotesFieldsWithCommas(t *testing.T) {
	var buf bytes.Buffer
	n, err := WriteVisits(&buf, []telemetry.VisitRecord{
		{URL: "https://www.nytimes.com/a,b", Size: 1500, Outlinks: 7, ContentType: "text/html"},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "URL,Size(Bytes),Outlinks,ContentType\n\"https://www.nytimes.com/a,b\",1500,7,text/html\n", buf.String())
}

func TestWriteDecisions(t *testing.T) {
	var buf bytes.Buffer
	n, err := WriteDecisions(&buf, []telemetry.URLDecision{
		{URL: "https://www.nytimes.com/world", WithinDomain: true},
		{URL: "https://www.facebook.com/nytimes", WithinDomain: false},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "URL,Indicator\nhttps://www.nytimes.com/world,OK\nhttps://www.facebook.com/nytimes,N_OK\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteDecisionsPropagatesWriterError(t *testing.T) {
	_, err := WriteDecisions(failingWriter{}, []telemetry.URLDecision{{URL: "u"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
