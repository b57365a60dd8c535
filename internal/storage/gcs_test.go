package storage

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	written   strings.Builder
	calls     []string
	cancelled bool
}

func (w *recordingWriter) Write(p []byte) (int, error) {
	return w.written.Write(p)
}

func (w *recordingWriter) Close() error {
	if w.cancelled {
		w.calls = append(w.calls, "close-aborted")
		return errors.New("upload aborted")
	}
	w.calls = append(w.calls, "close")
	return nil
}

func (w *recordingWriter) cancel() {
	w.cancelled = true
	w.calls = append(w.calls, "cancel")
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}

func TestWriteObjectCommitsOnSuccess(t *testing.T) {
	w := &recordingWriter{}

	err := writeObject(w, w.cancel, strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)

	assert.Equal(t, "%PDF-1.4", w.written.String())
	assert.Equal(t, []string{"close"}, w.calls)
}

func TestWriteObjectAbortsOnCopyFailure(t *testing.T) {
	w := &recordingWriter{}

	err := writeObject(w, w.cancel, io.MultiReader(strings.NewReader("partial"), failingReader{}))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	assert.Equal(t, []string{"cancel", "close-aborted"}, w.calls)
}
