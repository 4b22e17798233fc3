package sequence

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_NextSequence(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO event_sequence")).
		WithArgs("session-1").
		WillReturnRows(pgxmock.NewRows([]string{"last_sequence"}).AddRow(int64(3)))

	seq, err := NewRepository(mock).NextSequence(context.Background(), "session-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), seq)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_NextSequenceError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	boom := errors.New("connection reset")
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO event_sequence")).
		WithArgs("session-1").
		WillReturnError(boom)

	_, err = NewRepository(mock).NextSequence(context.Background(), "session-1")
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "next sequence")
}
