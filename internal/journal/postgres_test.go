package journal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDBTX struct {
	mock.Mock
}

func (m *mockDBTX) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *mockDBTX) Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error) {
	args := m.Called(ctx, sql, arguments)
	if r := args.Get(0); r != nil {
		return r.(pgx.Rows), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDBTX) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

// entryMockRows implements pgx.Rows over a slice of entries.
type entryMockRows struct {
	data    []Entry
	idx     int
	closed  bool
	scanErr error
	errVal  error
}

func (r *entryMockRows) Next() bool {
	if r.closed {
		return false
	}
	r.idx++
	return r.idx < len(r.data)
}

func (r *entryMockRows) Scan(dest ...any) error {
	if r.scanErr != nil {
		return r.scanErr
	}
	e := r.data[r.idx]
	*dest[0].(*string) = e.ID
	*dest[1].(*time.Time) = e.CreatedAt
	*dest[2].(*string) = e.City
	*dest[3].(**string) = e.Country
	*dest[4].(*float64) = e.Temperature
	*dest[5].(**float64) = e.FeelsLike
	*dest[6].(**float64) = e.Humidity
	*dest[7].(**float64) = e.WindSpeed
	*dest[8].(*string) = e.WeatherCondition
	*dest[9].(**string) = e.WeatherIcon
	*dest[10].(**string) = e.Note
	*dest[11].(**string) = e.MoodTag
	*dest[12].(*string) = e.DeviceID
	return nil
}

func (r *entryMockRows) Close()                                       { r.closed = true }
func (r *entryMockRows) Err() error                                   { return r.errVal }
func (r *entryMockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *entryMockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *entryMockRows) RawValues() [][]byte                          { return nil }
func (r *entryMockRows) Values() ([]any, error)                       { return nil, nil }
func (r *entryMockRows) Conn() *pgx.Conn                              { return nil }

func TestPostgresStore_Migrate(t *testing.T) {
	db := new(mockDBTX)
	store := NewPostgresStore(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("CREATE TABLE"), nil).Times(len(postgresSchema))

	require.NoError(t, store.Migrate(ctx))
	db.AssertExpectations(t)
}

func TestPostgresStore_Create_Success(t *testing.T) {
	db := new(mockDBTX)
	store := NewPostgresStore(db)
	fixed := time.Date(2026, 2, 6, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }
	ctx := context.Background()

	var captured []any
	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(2).([]any) }).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	in := validInput()
	in.Note = ""
	e, err := store.Create(ctx, "device-1", in)
	require.NoError(t, err)
	db.AssertExpectations(t)

	assert.Equal(t, fixed, e.CreatedAt)
	assert.Nil(t, e.Note)
	require.Len(t, captured, 13)
	assert.Equal(t, e.ID, captured[0])
	assert.Equal(t, "Lisbon", captured[2])
	assert.Equal(t, "device-1", captured[12])
	assert.Nil(t, captured[10].(*string))
}

func TestPostgresStore_Create_InvalidInputSkipsDB(t *testing.T) {
	db := new(mockDBTX)
	store := NewPostgresStore(db)

	in := validInput()
	in.City = ""
	_, err := store.Create(context.Background(), "device-1", in)
	require.ErrorIs(t, err, ErrInvalidEntry)
	db.AssertNotCalled(t, "Exec", mock.Anything, mock.Anything, mock.Anything)
}

func TestPostgresStore_Create_DBError(t *testing.T) {
	db := new(mockDBTX)
	store := NewPostgresStore(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.CommandTag{}, errors.New("connection refused"))

	_, err := store.Create(ctx, "device-1", validInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestPostgresStore_ListByDevice(t *testing.T) {
	db := new(mockDBTX)
	store := NewPostgresStore(db)
	ctx := context.Background()

	note := "windy walk"
	newer := time.Date(2026, 2, 6, 12, 0, 0, 0, time.UTC)
	rows := &entryMockRows{
		idx: -1,
		data: []Entry{
			{ID: "b", CreatedAt: newer, City: "Oslo", Temperature: -3, WeatherCondition: "Snow", Note: &note, DeviceID: "device-1"},
			{ID: "a", CreatedAt: newer.Add(-time.Hour), City: "Oslo", Temperature: -1, WeatherCondition: "Clouds", DeviceID: "device-1"},
		},
	}

	db.On("Query", ctx, mock.AnythingOfType("string"), []any{"device-1", ListLimit}).Return(rows, nil)

	entries, err := store.ListByDevice(ctx, "device-1", 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].ID)
	require.NotNil(t, entries[0].Note)
	assert.Equal(t, note, *entries[0].Note)
	assert.Nil(t, entries[1].Note)
	assert.True(t, rows.closed)
	db.AssertExpectations(t)
}

func TestPostgresStore_ListByDevice_Empty(t *testing.T) {
	db := new(mockDBTX)
	store := NewPostgresStore(db)
	ctx := context.Background()

	db.On("Query", ctx, mock.AnythingOfType("string"), mock.Anything).Return(&entryMockRows{idx: -1}, nil)

	entries, err := store.ListByDevice(ctx, "device-1", 5)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestPostgresStore_ListByDevice_ScanError(t *testing.T) {
	db := new(mockDBTX)
	store := NewPostgresStore(db)
	ctx := context.Background()

	rows := &entryMockRows{idx: -1, data: []Entry{{ID: "a"}}, scanErr: errors.New("bad column")}
	db.On("Query", ctx, mock.AnythingOfType("string"), mock.Anything).Return(rows, nil)

	_, err := store.ListByDevice(ctx, "device-1", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad column")
}

func TestPostgresStore_ListByDevice_RequiresDevice(t *testing.T) {
	store := NewPostgresStore(new(mockDBTX))
	_, err := store.ListByDevice(context.Background(), "", 5)
	assert.ErrorIs(t, err, ErrMissingDevice)
}

func TestPostgresStore_Delete(t *testing.T) {
	db := new(mockDBTX)
	store := NewPostgresStore(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), []any{"entry-1", "device-1"}).
		Return(pgconn.NewCommandTag("DELETE 1"), nil)

	require.NoError(t, store.Delete(ctx, "device-1", "entry-1"))
	db.AssertExpectations(t)
}

func TestPostgresStore_Delete_NotFound(t *testing.T) {
	db := new(mockDBTX)
	store := NewPostgresStore(db)
	ctx := context.Background()

	db.On("Exec", ctx, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("DELETE 0"), nil)

	err := store.Delete(ctx, "device-1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
