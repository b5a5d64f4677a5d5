package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"csvexport/internal/model"
	"csvexport/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

var columns = []string{"id", "file_name", "storage_path", "size", "content_type", "row_count", "column_count", "created_at"}

func sampleExport(now time.Time) *model.Export {
	return &model.Export{
		ID:          "test-uuid",
		FileName:    "report.csv",
		StoragePath: "exports/test-uuid.csv",
		Size:        123,
		ContentType: "text/csv;charset=utf-8",
		Rows:        4,
		Columns:     3,
		CreatedAt:   now,
	}
}

func addRow(rows *sqlmock.Rows, e *model.Export) *sqlmock.Rows {
	return rows.AddRow(e.ID, e.FileName, e.StoragePath, e.Size, e.ContentType, e.Rows, e.Columns, e.CreatedAt)
}

func TestExportPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewExportPostgres(db)
	ctx := context.Background()
	exp := sampleExport(time.Now().UTC())

	mock.ExpectQuery("INSERT INTO exports").
		WithArgs(exp.ID, exp.FileName, exp.StoragePath, exp.Size, exp.ContentType, exp.Rows, exp.Columns, exp.CreatedAt).
		WillReturnRows(addRow(sqlmock.NewRows(columns), exp))

	result, err := repo.Create(ctx, exp)

	assert.NoError(t, err)
	assert.Equal(t, exp, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewExportPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		exp := sampleExport(time.Now().UTC())
		mock.ExpectQuery("SELECT (.+) FROM exports WHERE id = \\$1").
			WithArgs(exp.ID).
			WillReturnRows(addRow(sqlmock.NewRows(columns), exp))

		result, err := repo.FindByID(ctx, exp.ID)
		assert.NoError(t, err)
		assert.Equal(t, exp, result)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM exports WHERE id = \\$1").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		result, err := repo.FindByID(ctx, "missing")
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, result)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewExportPostgres(db)
	ctx := context.Background()

	t.Run("page", func(t *testing.T) {
		exp := sampleExport(time.Now().UTC())
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM exports").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
		mock.ExpectQuery("SELECT (.+) FROM exports ORDER BY created_at DESC, id DESC LIMIT \\$1 OFFSET \\$2").
			WithArgs(2, 4).
			WillReturnRows(addRow(sqlmock.NewRows(columns), exp))

		result, err := repo.List(ctx, repository.PageQuery{Limit: 2, Offset: 4})
		assert.NoError(t, err)
		assert.Equal(t, 7, result.Total)
		assert.Equal(t, []model.Export{*exp}, result.Items)
	})

	t.Run("count error", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM exports").WillReturnError(errors.New("db down"))

		result, err := repo.List(ctx, repository.PageQuery{Limit: 2})
		assert.EqualError(t, err, "db down")
		assert.Nil(t, result)
	})

	t.Run("scan error", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM exports").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery("SELECT (.+) FROM exports").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("only-id"))

		_, err := repo.List(ctx, repository.PageQuery{Limit: 2})
		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportPostgres_ListCreatedBefore(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewExportPostgres(db)
	cutoff := time.Now().UTC()
	old := sampleExport(cutoff.Add(-time.Hour))

	mock.ExpectQuery("SELECT (.+) FROM exports WHERE created_at < \\$1 ORDER BY created_at ASC").
		WithArgs(cutoff).
		WillReturnRows(addRow(sqlmock.NewRows(columns), old))

	items, err := repo.ListCreatedBefore(context.Background(), cutoff)
	assert.NoError(t, err)
	assert.Equal(t, []model.Export{*old}, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewExportPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM exports WHERE id = \\$1").
		WithArgs("test-uuid").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Delete(ctx, "test-uuid"))

	mock.ExpectExec("DELETE FROM exports WHERE id = \\$1").
		WithArgs("test-uuid").
		WillReturnError(errors.New("locked"))
	assert.EqualError(t, repo.Delete(ctx, "test-uuid"), "locked")

	assert.NoError(t, mock.ExpectationsWereMet())
}
