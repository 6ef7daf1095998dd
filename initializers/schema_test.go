package initializers

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSchema(t *testing.T) {
	tests := []struct {
		name      string
		failAt    int
		expectErr bool
	}{
		{name: "applies every statement", failAt: -1},
		{name: "stops and rolls back on failure", failAt: 2, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectBegin()
			for i := range schema {
				exec := mock.ExpectExec(`CREATE (TABLE|INDEX) IF NOT EXISTS`)
				if i == tt.failAt {
					exec.WillReturnError(errors.New("permission denied"))
					break
				}
				exec.WillReturnResult(sqlmock.NewResult(0, 0))
			}
			if tt.expectErr {
				mock.ExpectRollback()
			} else {
				mock.ExpectCommit()
			}

			err = CreateSchema(context.Background(), db)

			if tt.expectErr {
				assert.ErrorContains(t, err, "failed to apply schema")
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
