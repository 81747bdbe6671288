package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aevon-lab/cc-reporting/internal/core/storage"
	"github.com/stretchr/testify/require"
)

func TestAdapter_HasAny(t *testing.T) {
	rng := storage.TimeRange{
		From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name       string
		kind       storage.Kind
		mockResult func(mock sqlmock.Sqlmock)
		want       bool
		wantErr    bool
	}{
		{
			name: "ranged kind with rows",
			kind: storage.KindQueue,
			mockResult: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(hasAnyInRangeQuery("agent_queue"))).
					WithArgs(rng.From, rng.To).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
			},
			want: true,
		},
		{
			name: "ranged kind empty",
			kind: storage.KindTimecard,
			mockResult: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(hasAnyInRangeQuery("agent_timecard"))).
					WithArgs(rng.From, rng.To).
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
			},
			want: false,
		},
		{
			name: "directory ignores range",
			kind: storage.KindDirectory,
			mockResult: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(hasAnyQuery("agents"))).
					WithArgs().
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
			},
			want: true,
		},
		{
			name: "query error is wrapped",
			kind: storage.KindPerformance,
			mockResult: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(hasAnyInRangeQuery("agent_performance"))).
					WithArgs(rng.From, rng.To).
					WillReturnError(errors.New("connection reset"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter, mock, db := newMockAdapter(t)
			defer db.Close()

			tt.mockResult(mock)

			got, err := adapter.HasAny(context.Background(), tt.kind, rng)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				require.Equal(t, tt.want, got)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAdapter_InsertBatch_DedupesAndSkipsConflicts(t *testing.T) {
	adapter, mock, db := newMockAdapter(t)
	defer db.Close()

	records := []storage.Record{
		storage.Agent{UserID: "u-1", UserName: "Ann"},
		storage.Agent{UserID: "", UserName: "no key"},
		storage.Agent{UserID: "u-1", UserName: "Ann again"},
		storage.Agent{UserID: "u-2", UserName: "Bob"},
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO agents (user_id,user_name) VALUES ($1,$2),($3,$4) ON CONFLICT (user_id) DO NOTHING")).
		WithArgs("u-1", "Ann", "u-2", "Bob").
		WillReturnResult(sqlmock.NewResult(0, 1))

	inserted, err := adapter.InsertBatch(context.Background(), storage.KindDirectory, records)
	require.NoError(t, err)
	require.Equal(t, int64(1), inserted, "conflicting key is skipped by the database")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_InsertBatch_EmptyIsNoop(t *testing.T) {
	adapter, mock, db := newMockAdapter(t)
	defer db.Close()

	inserted, err := adapter.InsertBatch(context.Background(), storage.KindQueue, nil)
	require.NoError(t, err)
	require.Zero(t, inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_InsertBatch_ExecError(t *testing.T) {
	adapter, mock, db := newMockAdapter(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO agent_timecard")).
		WillReturnError(errors.New("duplicate key value violates unique constraint"))

	_, err := adapter.InsertBatch(context.Background(), storage.KindTimecard, []storage.Record{
		storage.AgentTimecard{WorkSessionID: "ws-1"},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "agent_timecard")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_DeleteRange(t *testing.T) {
	adapter, mock, db := newMockAdapter(t)
	defer db.Close()

	rng := storage.TimeRange{
		From: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec(regexp.QuoteMeta(deleteRangeQuery("agent_timecard"))).
		WithArgs(rng.From, rng.To).
		WillReturnResult(sqlmock.NewResult(0, 7))

	n, err := adapter.DeleteRange(context.Background(), storage.KindTimecard, rng)
	require.NoError(t, err)
	require.Equal(t, int64(7), n)

	_, err = adapter.DeleteRange(context.Background(), storage.KindDirectory, rng)
	require.ErrorIs(t, err, storage.ErrUnknownKind)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_GetToken(t *testing.T) {
	now := time.Date(2024, 6, 7, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		callerID   string
		mockResult func(mock sqlmock.Sqlmock)
		wantToken  string
		wantOK     bool
		wantErr    bool
	}{
		{
			name:     "valid token",
			callerID: "user-1",
			mockResult: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(queryGetToken)).
					WithArgs("user-1").
					WillReturnRows(sqlmock.NewRows([]string{"access_token", "expires_at"}).AddRow("tok", now.Add(time.Hour)))
			},
			wantToken: "tok",
			wantOK:    true,
		},
		{
			name:     "token without expiry",
			callerID: "user-1",
			mockResult: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(queryGetToken)).
					WithArgs("user-1").
					WillReturnRows(sqlmock.NewRows([]string{"access_token", "expires_at"}).AddRow("tok", nil))
			},
			wantToken: "tok",
			wantOK:    true,
		},
		{
			name:     "expired token",
			callerID: "user-1",
			mockResult: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(queryGetToken)).
					WithArgs("user-1").
					WillReturnRows(sqlmock.NewRows([]string{"access_token", "expires_at"}).AddRow("tok", now.Add(-time.Minute)))
			},
		},
		{
			name:     "unknown caller",
			callerID: "user-2",
			mockResult: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(queryGetToken)).
					WithArgs("user-2").
					WillReturnError(sql.ErrNoRows)
			},
		},
		{
			name:       "empty caller never queries",
			callerID:   "",
			mockResult: func(_ sqlmock.Sqlmock) {},
		},
		{
			name:     "database error",
			callerID: "user-1",
			mockResult: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(queryGetToken)).
					WithArgs("user-1").
					WillReturnError(errors.New("boom"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter, mock, db := newMockAdapter(t)
			defer db.Close()
			adapter.nowFn = func() time.Time { return now }

			tt.mockResult(mock)

			token, ok, err := adapter.GetToken(context.Background(), tt.callerID)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.wantToken, token)
			require.Equal(t, tt.wantOK, ok)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAdapter_ListAgents(t *testing.T) {
	adapter, mock, db := newMockAdapter(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(queryListAgents)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "user_name"}).
			AddRow("u-1", "Ann").
			AddRow("u-2", "Bob"))

	agents, err := adapter.ListAgents(context.Background())
	require.NoError(t, err)
	require.Equal(t, []storage.Agent{{UserID: "u-1", UserName: "Ann"}, {UserID: "u-2", UserName: "Bob"}}, agents)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDedupeByKey(t *testing.T) {
	in := []storage.Record{
		storage.QueueInteraction{EngagementID: "a"},
		storage.QueueInteraction{EngagementID: "b"},
		storage.QueueInteraction{EngagementID: "a", QueueName: "later"},
		storage.QueueInteraction{},
	}

	out := dedupeByKey(in)
	require.Len(t, out, 2)
	require.Equal(t, "a", out[0].NaturalKey())
	require.Equal(t, "", out[0].(storage.QueueInteraction).QueueName)
	require.Equal(t, "b", out[1].NaturalKey())
}

func newMockAdapter(t *testing.T) (*Adapter, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	for _, kind := range storage.Kinds() {
		spec, err := storage.Table(kind)
		require.NoError(t, err)
		if !spec.Ranged {
			mock.ExpectPrepare(regexp.QuoteMeta(hasAnyQuery(spec.Table)))
			continue
		}
		mock.ExpectPrepare(regexp.QuoteMeta(hasAnyInRangeQuery(spec.Table)))
		mock.ExpectPrepare(regexp.QuoteMeta(deleteRangeQuery(spec.Table)))
	}
	mock.ExpectPrepare(regexp.QuoteMeta(queryGetToken))
	mock.ExpectPrepare(regexp.QuoteMeta(queryListAgents))

	adapter, err := newAdapter(db)
	require.NoError(t, err)

	return adapter, mock, db
}

func TestNewAdapter_RejectsMissingTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(queryTableExists)).
		WithArgs("agent_queue").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta(queryTableExists)).
		WithArgs("agent_performance").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, err = NewAdapter(db)
	require.Error(t, err)
	require.Contains(t, err.Error(), "agent_performance table does not exist")
	require.NoError(t, mock.ExpectationsWereMet())
}
