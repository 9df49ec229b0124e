package responsewriter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponseWriter_Defaults(t *testing.T) {
	rw := Wrap(httptest.NewRecorder())
	assert.Equal(t, http.StatusOK, rw.StatusCode())
	assert.Zero(t, rw.BytesWritten())
}

func TestResponseWriter_RecordsFirstStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := Wrap(rec)

	rw.WriteHeader(http.StatusConflict)
	rw.WriteHeader(http.StatusOK)

	assert.Equal(t, http.StatusConflict, rw.StatusCode())
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestResponseWriter_CountsBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := Wrap(rec)

	_, _ = rw.Write([]byte(`{"rows":`))
	_, _ = rw.Write([]byte(`[]}`))

	assert.Equal(t, http.StatusOK, rw.StatusCode(), "implicit 200")
	assert.Equal(t, 11, rw.BytesWritten())
	assert.Equal(t, `{"rows":[]}`, rec.Body.String())
}

func TestWrap_ReusesWrapper(t *testing.T) {
	rw := Wrap(httptest.NewRecorder())
	assert.Same(t, rw, Wrap(rw))
}

func TestResponseWriter_FlushAndUnwrap(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := Wrap(rec)

	rw.Flush()
	assert.True(t, rec.Flushed)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Same(t, rec, rw.Unwrap())
}
