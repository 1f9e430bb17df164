package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/healthsync/internal/model"
	"github.com/iliyamo/healthsync/internal/scoring"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

func expectUserLock(mock sqlmock.Sqlmock, userID string) {
	mock.ExpectQuery(q("SELECT 1 FROM users WHERE id=? FOR UPDATE")).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
}

func floatp(v float64) *float64 { return &v }

func TestUserCreateDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q("INSERT INTO users")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := NewUserRepo(db).Create(context.Background(), &model.User{Email: " A@B.io ", Name: "A"})
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateNormalizesEmail(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q("INSERT INTO users")).
		WithArgs(sqlmock.AnyArg(), "a@b.io", "A", nil, "hash", 0, 0.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	u := &model.User{Email: " A@B.io ", Name: "A", PasswordHash: "hash"}
	require.NoError(t, NewUserRepo(db).Create(context.Background(), u))
	assert.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q("FROM users WHERE id=?")).WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := NewUserRepo(db).GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestHabitCreateWritesScoreAndLedgerInOneTx(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	expectUserLock(mock, "u1")
	mock.ExpectExec(q("INSERT INTO habits")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(q("UPDATE users SET health_score=? WHERE id=?")).
		WithArgs(95.0, "u1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("INSERT INTO token_transactions")).
		WithArgs(sqlmock.AnyArg(), "u1", 75, model.CategoryHabits, model.TransactionEarned, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(q("UPDATE users SET tokens = tokens + ? WHERE id=?")).
		WithArgs(75, "u1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	h := &model.HabitRecord{
		UserID:            "u1",
		HabitDate:         "2026-10-14",
		Metrics:           scoring.Metrics{SleepHours: floatp(8)},
		TokensEarned:      75,
		HealthScoreImpact: 95,
	}
	require.NoError(t, NewHabitRepo(db).Create(context.Background(), h))
	assert.NotEmpty(t, h.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHabitCreateDuplicateDay(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	expectUserLock(mock, "u1")
	mock.ExpectExec(q("INSERT INTO habits")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'u1-2026-10-14'"})
	mock.ExpectRollback()

	err := NewHabitRepo(db).Create(context.Background(), &model.HabitRecord{UserID: "u1", HabitDate: "2026-10-14"})
	assert.ErrorIs(t, err, ErrHabitExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHabitCreateUnknownUser(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT 1 FROM users WHERE id=? FOR UPDATE")).WithArgs("nope").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := NewHabitRepo(db).Create(context.Background(), &model.HabitRecord{UserID: "nope", HabitDate: "2026-10-14"})
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHabitCreateWithoutRewardSkipsLedger(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	expectUserLock(mock, "u1")
	mock.ExpectExec(q("INSERT INTO habits")).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(q("UPDATE users SET health_score=?")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NewHabitRepo(db).Create(context.Background(), &model.HabitRecord{UserID: "u1", HabitDate: "2026-10-14"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHabitListFormatsDate(t *testing.T) {
	db, mock := newMock(t)
	cols := []string{"id", "user_id", "habit_date", "sleep_hours", "exercise_minutes", "steps", "water_glasses",
		"fruit_veg_servings", "mood_rating", "stress_level", "meditation_minutes", "weight_kg", "systolic",
		"diastolic", "heart_rate", "notes", "tokens_earned", "health_score_impact", "created_at"}
	day := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(q("FROM habits WHERE user_id=? ORDER BY habit_date DESC LIMIT ?")).
		WithArgs("u1", 30).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("h1", "u1", day, 7.5, 30, nil, nil, nil, 4, nil, nil,
			nil, nil, nil, nil, nil, 40, 88.0, day))

	list, err := NewHabitRepo(db).ListByUser(context.Background(), "u1", 30)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2026-10-14", list[0].HabitDate)
	require.NotNil(t, list[0].SleepHours)
	assert.Equal(t, 7.5, *list[0].SleepHours)
	assert.Nil(t, list[0].Steps)
	assert.Equal(t, 4, *list[0].MoodRating)
}

func TestRedeemInsufficientTokens(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	expectUserLock(mock, "u1")
	mock.ExpectExec(q("UPDATE users SET tokens = tokens - ? WHERE id=? AND tokens >= ?")).
		WithArgs(500, "u1", 500).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, _, err := NewLedgerRepo(db).Redeem(context.Background(), "u1", 500, "gift card", time.Time{})
	assert.ErrorIs(t, err, ErrInsufficientTokens)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeemWritesNegativeEntry(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	expectUserLock(mock, "u1")
	mock.ExpectExec(q("UPDATE users SET tokens = tokens - ?")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("INSERT INTO token_transactions")).
		WithArgs(sqlmock.AnyArg(), "u1", -50, model.CategoryRedemption, model.TransactionRedeemed, "gift card", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(q("SELECT tokens FROM users WHERE id=?")).
		WillReturnRows(sqlmock.NewRows([]string{"tokens"}).AddRow(25))
	mock.ExpectCommit()

	tx, balance, err := NewLedgerRepo(db).Redeem(context.Background(), "u1", 50, "gift card", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, -50, tx.Amount)
	assert.Equal(t, 25, balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerTotals(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q("GROUP BY category")).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"category", "sum"}).AddRow("habits", 120).AddRow("redemption", -50))
	mock.ExpectQuery(q("transaction_type=?")).WithArgs("u1", model.TransactionEarned).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(120))

	repo := NewLedgerRepo(db)
	totals, err := repo.TotalsByCategory(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"habits": 120, "redemption": -50}, totals)
	earned, err := repo.TotalEarned(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 120, earned)
}

func TestRecordCreateCreditsReward(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	expectUserLock(mock, "u1")
	mock.ExpectExec(q("INSERT INTO medical_records")).
		WithArgs(sqlmock.AnyArg(), "u1", "lab.txt", "content", "text/plain", "summary", "risk",
			[]byte(`["rest"]`), "medium", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(q("INSERT INTO token_transactions")).
		WithArgs(sqlmock.AnyArg(), "u1", 50, model.CategoryMedicalRecord, model.TransactionEarned, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(q("UPDATE users SET tokens = tokens + ?")).WithArgs(50, "u1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec := &model.MedicalRecord{UserID: "u1", Filename: "lab.txt", Content: "content", ContentType: "text/plain",
		AISummary: "summary", RiskAssessment: "risk", Recommendations: []string{"rest"}, Urgency: "medium"}
	require.NoError(t, NewRecordRepo(db).Create(context.Background(), rec, 50))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordListParsesRecommendations(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()
	mock.ExpectQuery(q("FROM medical_records WHERE user_id=?")).WithArgs("u1", 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "filename", "content", "content_type", "ai_summary",
			"risk_assessment", "recommendations", "urgency", "analysis_degraded", "uploaded_at"}).
			AddRow("r1", "u1", "a.txt", "c", "text/plain", "s", "r", []byte(`["a","b"]`), "high", true, now))

	list, err := NewRecordRepo(db).ListByUser(context.Background(), "u1", 5)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []string{"a", "b"}, list[0].Recommendations)
	assert.True(t, list[0].AnalysisDegraded)
}

func TestRecordListRejectsCorruptRecommendations(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q("FROM medical_records WHERE user_id=?")).WithArgs("u1", 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "filename", "content", "content_type", "ai_summary",
			"risk_assessment", "recommendations", "urgency", "analysis_degraded", "uploaded_at"}).
			AddRow("r9", "u1", "a.txt", "c", "text/plain", "s", "r", []byte(`["a",`), "low", false, time.Now().UTC()))

	_, err := NewRecordRepo(db).ListByUser(context.Background(), "u1", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record r9: decode recommendations")
}

func TestMedicationListScheduleTimes(t *testing.T) {
	db, mock := newMock(t)
	cols := []string{"id", "user_id", "name", "dosage", "frequency", "schedule_times", "start_date", "end_date", "notes", "created_at"}
	now := time.Now().UTC()
	mock.ExpectQuery(q("FROM medications WHERE user_id=?")).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("m1", "u1", "Metformin", "500mg", "twice daily", []byte(`["08:00","20:00"]`), nil, nil, nil, now))

	list, err := NewMedicationRepo(db).ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []string{"08:00", "20:00"}, list[0].ScheduleTimes)

	mock.ExpectQuery(q("FROM medications WHERE user_id=?")).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("m2", "u1", "Aspirin", "81mg", "daily", []byte(`{"08:00"}`), nil, nil, nil, now))
	_, err = NewMedicationRepo(db).ListByUser(context.Background(), "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "medication m2: decode schedule_times")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshValidateRejectsRevoked(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q("FROM refresh_tokens WHERE token_hash=?")).WithArgs("h").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow("u1", time.Now().Add(time.Hour), time.Now()))

	_, err := NewRefreshTokenRepo(db).Validate(context.Background(), "h")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRefreshValidateActive(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q("FROM refresh_tokens WHERE token_hash=?")).WithArgs("h").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow("u1", time.Now().Add(time.Hour), nil))

	uid, err := NewRefreshTokenRepo(db).Validate(context.Background(), "h")
	require.NoError(t, err)
	assert.Equal(t, "u1", uid)
}

func TestChatRecentMessagesChronological(t *testing.T) {
	db, mock := newMock(t)
	t1 := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)
	mock.ExpectQuery(q("FROM chat_messages WHERE session_id=?")).WithArgs("s1", 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "session_id", "user_id", "message_type", "content", "urgency", "created_at"}).
			AddRow("m2", "s1", "u1", "assistant", "reply", nil, t2).
			AddRow("m1", "s1", "u1", "user", "question", "medium", t1))

	msgs, err := NewChatRepo(db).RecentMessages(context.Background(), "s1", 5)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, "medium", *msgs[0].Urgency)
	assert.Nil(t, msgs[1].Urgency)
}

func TestChatGetSessionOwnedByOtherUser(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q("FROM chat_sessions WHERE id=? AND user_id=?")).WithArgs("s1", "u2").WillReturnError(sql.ErrNoRows)

	_, err := NewChatRepo(db).GetSession(context.Background(), "s1", "u2")
	assert.ErrorIs(t, err, ErrNotFound)
}

