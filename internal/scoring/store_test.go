package scoring

import (
	"context"
	"errors"
	"io"
	"testing"

	"cribscore/internal/kv"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// failingPersistence lets tests break Load or Save on demand.
type failingPersistence struct {
	loadErr error
	saveErr error
	saved   []Snapshot
}

func (f *failingPersistence) Load(context.Context) (Snapshot, error) {
	return Snapshot{}, f.loadErr
}

func (f *failingPersistence) Save(_ context.Context, snap Snapshot) error {
	f.saved = append(f.saved, snap)
	return f.saveErr
}

func newTestStore(t *testing.T) (*Store, *kv.Memory) {
	t.Helper()
	mem := kv.NewMemory()
	s, err := NewStore(context.Background(), NewKVPersistence(mem, quietLogger()), quietLogger())
	require.NoError(t, err)
	return s, mem
}

func reload(t *testing.T, mem *kv.Memory) *Store {
	t.Helper()
	s, err := NewStore(context.Background(), NewKVPersistence(mem, quietLogger()), quietLogger())
	require.NoError(t, err)
	return s
}

func TestNewStore_SeedsDefaultGame(t *testing.T) {
	s, mem := newTestStore(t)

	games := s.Games()
	require.Len(t, games, 1)
	assert.Equal(t, DefaultGameName, games[0].Name)
	assert.Equal(t, games[0].ID, s.ActiveID())
	assert.Equal(t, GameRecord{ID: games[0].ID, Name: DefaultGameName}, games[0])
	assert.Equal(t, [2]int{}, s.Floating())

	_, ok, _ := mem.Get(context.Background(), KeyGames)
	assert.True(t, ok, "seeded game should be persisted")
}

func TestNewStore_ReloadsPersistedState(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)
	second, err := s.Create(ctx, "A vs B")
	require.NoError(t, err)

	again := reload(t, mem)
	assert.Equal(t, s.Games(), again.Games())
	assert.Equal(t, second.ID, again.ActiveID())
}

func TestNewStore_UndecodableGamesFallsBackToSeed(t *testing.T) {
	mem := kv.NewMemory()
	mem.Set(context.Background(), KeyGames, []byte("{not json"))

	s := reload(t, mem)
	games := s.Games()
	require.Len(t, games, 1)
	assert.Equal(t, DefaultGameName, games[0].Name)
}

func TestNewStore_LoadErrorFallsBackToSeed(t *testing.T) {
	p := &failingPersistence{loadErr: errors.New("disk gone")}
	s, err := NewStore(context.Background(), p, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
	require.Len(t, p.saved, 1)
}

func TestNewStore_DanglingActiveIDUsesFirstRecord(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	mem.Set(ctx, KeyGames, []byte(`[{"id":"a","name":"A"},{"id":"b","name":"B"}]`))
	mem.Set(ctx, KeyActiveGameID, []byte(`"gone"`))

	s := reload(t, mem)
	assert.Equal(t, "a", s.ActiveID())
}

func TestStore_Create(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	rec, err := s.Create(ctx, "A vs B")
	require.NoError(t, err)
	assert.Equal(t, "A vs B", rec.Name)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, rec.ID, s.ActiveID())
	assert.Equal(t, 2, s.Len())

	unnamed, err := s.Create(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, DefaultGameName, unnamed.Name)

	games := s.Games()
	assert.Equal(t, rec.ID, games[1].ID, "insertion order kept")
	assert.Equal(t, unnamed.ID, games[2].ID)
}

func TestStore_SwitchUnknownIsNoop(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	before := s.ActiveID()

	ok, err := s.Switch(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, before, s.ActiveID())
}

func TestStore_SwitchKeepsFloating(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)
	first := s.ActiveID()
	s.Create(ctx, "A vs B")
	s.UpdateActive(ctx, func(_ *GameRecord, f *[2]int) { f[0] = 7; f[1] = -1 })

	ok, err := s.Switch(ctx, first)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, [2]int{7, -1}, s.Floating())
	assert.Equal(t, [2]int{7, -1}, reload(t, mem).Floating())
}

func TestStore_DeleteLastRecordRefused(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	id := s.ActiveID()

	ok, err := s.Delete(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, id, s.ActiveID())
}

func TestStore_DeleteActiveReassigns(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	first := s.ActiveID()
	second, _ := s.Create(ctx, "A vs B")
	third, _ := s.Create(ctx, "C vs D")
	s.Switch(ctx, second.ID)
	s.UpdateActive(ctx, func(_ *GameRecord, f *[2]int) { f[0] = 5 })

	ok, err := s.Delete(ctx, second.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, first, s.ActiveID())
	assert.Equal(t, [2]int{}, s.Floating())
	assert.Equal(t, 2, s.Len())

	_, found := s.Get(second.ID)
	assert.False(t, found)
	_, found = s.Get(third.ID)
	assert.True(t, found)
}

func TestStore_DeleteInactiveKeepsActiveAndFloating(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	first := s.ActiveID()
	second, _ := s.Create(ctx, "A vs B")
	s.UpdateActive(ctx, func(_ *GameRecord, f *[2]int) { f[1] = 3 })

	ok, err := s.Delete(ctx, first)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, second.ID, s.ActiveID())
	assert.Equal(t, [2]int{0, 3}, s.Floating())
}

func TestStore_DeleteUnknownIsNoop(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)
	second, _ := s.Create(ctx, "A vs B")
	s.UpdateActive(ctx, func(_ *GameRecord, f *[2]int) { f[0] = 3 })

	ok, err := s.Delete(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, second.ID, s.ActiveID())
	assert.Equal(t, [2]int{3, 0}, s.Floating())

	again := reload(t, mem)
	assert.Equal(t, 2, again.Len())
	assert.Equal(t, [2]int{3, 0}, again.Floating())
}

func TestStore_RenameAndUpdate(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t)
	id := s.ActiveID()

	ok, err := s.Rename(ctx, id, "Ann vs Bob")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Update(ctx, id, "Ann vs Rob", 4, 9)
	require.NoError(t, err)
	assert.True(t, ok)

	rec, _ := reload(t, mem).Get(id)
	assert.Equal(t, "Ann vs Rob", rec.Name)
	assert.Equal(t, 4, rec.Player1GamesWon)
	assert.Equal(t, 9, rec.Player2GamesWon)

	ok, _ = s.Rename(ctx, "missing", "x")
	assert.False(t, ok)
	ok, _ = s.Update(ctx, "missing", "x", 1, 1)
	assert.False(t, ok)
}

func TestStore_SaveErrorKeepsChange(t *testing.T) {
	ctx := context.Background()
	p := &failingPersistence{}
	s, err := NewStore(ctx, p, quietLogger())
	require.NoError(t, err)

	p.saveErr = errors.New("read-only")
	rec, err := s.Create(ctx, "A vs B")
	require.Error(t, err)
	assert.ErrorIs(t, err, p.saveErr)
	assert.Equal(t, rec.ID, s.ActiveID())
}

func TestKVPersistence_KeyLayout(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	p := NewKVPersistence(mem, quietLogger())

	err := p.Save(ctx, Snapshot{
		Games:        []GameRecord{{ID: "g1", Name: "N", Player1MainScore: 3, Player2GamesWon: 2}},
		ActiveGameID: "g1",
		Floating:     [2]int{4, -1},
	})
	require.NoError(t, err)

	raw, _, _ := mem.Get(ctx, KeyGames)
	assert.JSONEq(t, `[{"id":"g1","name":"N","player1MainScore":3,"player2MainScore":0,"player1GamesWon":0,"player2GamesWon":2}]`, string(raw))
	raw, _, _ = mem.Get(ctx, KeyActiveGameID)
	assert.Equal(t, `"g1"`, string(raw))
	raw, _, _ = mem.Get(ctx, KeyPlayer1Floating)
	assert.Equal(t, "4", string(raw))
	raw, _, _ = mem.Get(ctx, KeyPlayer2Floating)
	assert.Equal(t, "-1", string(raw))

	require.NoError(t, p.Save(ctx, Snapshot{}))
	_, ok, _ := mem.Get(ctx, KeyActiveGameID)
	assert.False(t, ok, "empty active id removes the key")
	raw, _, _ = mem.Get(ctx, KeyGames)
	assert.Equal(t, "[]", string(raw))
}

func TestKVPersistence_BadFloatingLoadsZero(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	mem.Set(ctx, KeyPlayer1Floating, []byte(`"seven"`))
	mem.Set(ctx, KeyPlayer2Floating, []byte(`6`))

	snap, err := NewKVPersistence(mem, quietLogger()).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, [2]int{0, 6}, snap.Floating)
	assert.Empty(t, snap.Games)
}
