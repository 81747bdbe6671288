package nlquery

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	nlquerymocks "github.com/aevon-lab/cc-reporting/internal/mocks/nlquery"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 7, 9, 0, 0, 0, time.UTC)

const melissaPlan = `{"kind":"Performance","method":"findOne","options":{
	"where":{"user_name":"Melissa","start_time":{"Op.gte":"2024-06-07","Op.lt":"2024-06-08"}},
	"attributes":[["SUM(handled_count)","total_handled_count"]]}}`

func newTestPlanner(t *testing.T) (*Planner, *nlquerymocks.Completer, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	completer := nlquerymocks.NewCompleter(t)
	p := NewPlanner(completer, db, Options{MaxRows: 50})
	p.nowFn = func() time.Time { return testNow }
	return p, completer, mock
}

func promptFor(request string) any {
	return mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "Today is: 2024-06-07") &&
			strings.HasSuffix(strings.TrimSpace(prompt), "User request: "+request)
	})
}

func TestPlanner_Run_ExecutesReadOnly(t *testing.T) {
	p, completer, db := newTestPlanner(t)

	request := "How many calls did Melissa handle today"
	completer.EXPECT().Complete(mock.Anything, systemPrompt, promptFor(request)).Return(melissaPlan, nil).Once()

	db.ExpectBegin()
	db.ExpectQuery(regexp.QuoteMeta(
		`SELECT SUM(handled_count) AS "total_handled_count" FROM agent_performance WHERE (start_time >= $1 AND start_time < $2 AND user_name = $3) LIMIT 1`)).
		WithArgs("2024-06-07", "2024-06-08", "Melissa").
		WillReturnRows(sqlmock.NewRows([]string{"total_handled_count"}).AddRow([]byte("12")))
	db.ExpectRollback()

	res, err := p.Run(context.Background(), request)
	require.NoError(t, err)
	require.Equal(t, request, res.Query)
	require.Equal(t, "Performance", res.Plan.Kind)
	require.Equal(t, map[string]any{"total_handled_count": "12"}, res.Data)
	require.NoError(t, db.ExpectationsWereMet())
}

func TestPlanner_Run_FindAllReturnsRows(t *testing.T) {
	p, completer, db := newTestPlanner(t)

	completer.EXPECT().Complete(mock.Anything, systemPrompt, mock.Anything).
		Return(`{"kind":"Timecard","method":"findAll","options":{"attributes":["user_name","duration"],"limit":500}}`, nil).Once()

	db.ExpectBegin()
	db.ExpectQuery(regexp.QuoteMeta("SELECT user_name, duration FROM agent_timecard LIMIT 50")).
		WillReturnRows(sqlmock.NewRows([]string{"user_name", "duration"}).
			AddRow("Ann", int64(1000)).
			AddRow("Bob", int64(2000)))
	db.ExpectRollback()

	res, err := p.Run(context.Background(), "timecards")
	require.NoError(t, err)
	require.Equal(t, []map[string]any{
		{"user_name": "Ann", "duration": int64(1000)},
		{"user_name": "Bob", "duration": int64(2000)},
	}, res.Data)
	require.NoError(t, db.ExpectationsWereMet())
}

func TestPlanner_Run_FindOneWithoutRows(t *testing.T) {
	p, completer, db := newTestPlanner(t)

	completer.EXPECT().Complete(mock.Anything, systemPrompt, mock.Anything).Return(melissaPlan, nil).Once()

	db.ExpectBegin()
	db.ExpectQuery(regexp.QuoteMeta("FROM agent_performance")).
		WillReturnRows(sqlmock.NewRows([]string{"total_handled_count"}))
	db.ExpectRollback()

	res, err := p.Run(context.Background(), "anything")
	require.NoError(t, err)
	require.Nil(t, res.Data)
	require.NoError(t, db.ExpectationsWereMet())
}

func TestPlanner_Run_RejectedPlansExecuteNothing(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		wantErr error
	}{
		{name: "forbidden kind", reply: `{"kind":"User","method":"findAll","options":{}}`, wantErr: ErrForbiddenKind},
		{name: "malformed json", reply: `{"kind":"Queue",`, wantErr: ErrPlanParse},
		{name: "missing method", reply: `{"kind":"Queue","options":{}}`, wantErr: ErrPlanStructure},
		{name: "unknown column", reply: `{"kind":"Queue","method":"findAll","options":{"attributes":["secret"]}}`, wantErr: ErrPlanStructure},
		{name: "null comparison", reply: `{"kind":"Queue","method":"findAll","options":{"where":{"duration":{"Op.gt":null}}}}`, wantErr: ErrPlanStructure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, completer, db := newTestPlanner(t)
			completer.EXPECT().Complete(mock.Anything, systemPrompt, mock.Anything).Return(tt.reply, nil).Once()

			_, err := p.Run(context.Background(), "request")
			require.ErrorIs(t, err, tt.wantErr)
			require.NoError(t, db.ExpectationsWereMet())
		})
	}
}

func TestPlanner_Run_AssistantFailure(t *testing.T) {
	p, completer, db := newTestPlanner(t)

	completer.EXPECT().Complete(mock.Anything, systemPrompt, mock.Anything).
		Return("", errors.New("429 rate limited")).Once()

	_, err := p.Run(context.Background(), "request")
	require.ErrorIs(t, err, ErrAssistantUnavailable)
	require.NoError(t, db.ExpectationsWereMet())
}

func TestPlanner_Run_AssistantTimeout(t *testing.T) {
	p, completer, db := newTestPlanner(t)
	p.assistantTimeout = 10 * time.Millisecond

	completer.EXPECT().Complete(mock.Anything, systemPrompt, mock.Anything).
		RunAndReturn(func(ctx context.Context, _, _ string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		}).Once()

	_, err := p.Run(context.Background(), "request")
	require.ErrorIs(t, err, ErrAssistantUnavailable)
	require.Contains(t, err.Error(), "deadline exceeded")
	require.NoError(t, db.ExpectationsWereMet())
}

func TestPlanner_Run_ExecutionFailure(t *testing.T) {
	p, completer, db := newTestPlanner(t)

	completer.EXPECT().Complete(mock.Anything, systemPrompt, mock.Anything).Return(melissaPlan, nil).Once()

	db.ExpectBegin()
	db.ExpectQuery(regexp.QuoteMeta("FROM agent_performance")).
		WillReturnError(errors.New(`relation "agent_performance" does not exist`))
	db.ExpectRollback()

	_, err := p.Run(context.Background(), "request")
	require.ErrorIs(t, err, ErrQueryExecution)
	require.Contains(t, err.Error(), "does not exist")
	require.NoError(t, db.ExpectationsWereMet())
}

func TestNewPlanner_PanicsOnNilDeps(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	require.Panics(t, func() { NewPlanner(nil, db, Options{}) })
	require.Panics(t, func() { NewPlanner(nlquerymocks.NewCompleter(t), nil, Options{}) })
}
