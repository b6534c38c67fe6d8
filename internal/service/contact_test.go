package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AddressBook/internal/history"
	"AddressBook/internal/model"
	"AddressBook/internal/model/dto"
	"AddressBook/internal/repository"
	pkgerrors "AddressBook/pkg/errors"
)

type memPersister struct {
	saves        int
	contacts     []model.Contact
	lastModified *time.Time
	err          error
}

func (p *memPersister) Save(contacts []model.Contact, lastModified *time.Time) error {
	p.saves++
	if p.err != nil {
		return p.err
	}
	p.contacts = contacts
	p.lastModified = lastModified
	return nil
}

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time { return c.t }

func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	svc   *ContactService
	book  *repository.AddressBook
	store *memPersister
	clock *testClock
}

func newFixture(t *testing.T, opts ...repository.Option) *fixture {
	t.Helper()
	clk := &testClock{t: time.Date(2024, 4, 28, 9, 0, 0, 0, time.UTC)}
	book := repository.NewAddressBook(append([]repository.Option{repository.WithClock(clk.Now)}, opts...)...)
	store := &memPersister{}
	return &fixture{
		svc:   NewContactService(book, store, WithClock(clk.Now)),
		book:  book,
		store: store,
		clock: clk,
	}
}

func ptr(s string) *string { return &s }

func (f *fixture) add(t *testing.T, name, phone string) model.Contact {
	t.Helper()
	c, err := f.svc.Add(context.Background(), dto.CreateContactRequest{Name: name, Phone: phone})
	require.NoError(t, err)
	return c
}

func TestScenario_NormalizedPhoneAndDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bob := f.add(t, "Bob", "+1 (234) 567-8901")
	assert.Equal(t, "+12345678901", bob.Phone)

	_, err := f.svc.Add(ctx, dto.CreateContactRequest{Name: "Ann", Phone: "+12345678901"})
	assert.ErrorIs(t, err, pkgerrors.DuplicatePhone)
	assert.Equal(t, 1, f.store.saves, "rejected mutations are not persisted")
}

func TestScenario_RemoveThenUndo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	orig, err := f.svc.Add(ctx, dto.CreateContactRequest{
		Name: "Bob", Phone: "+12345678901", Birthday: ptr("1990-05-01"), Notes: ptr("gym"),
	})
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	_, err = f.svc.Remove(ctx, "Bob")
	require.NoError(t, err)
	assert.Empty(t, f.svc.All(ctx))

	undone, err := f.svc.Undo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "remove", undone.Op())

	all := f.svc.All(ctx)
	require.Len(t, all, 1)
	assert.Equal(t, orig, all[0], "the restored record keeps its timestamps")
}

func TestScenario_RenameConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.add(t, "Bob", "+12345678901")
	f.add(t, "Alice", "+19876543210")

	_, err := f.svc.Rename(ctx, "Bob", "Robert")
	require.NoError(t, err)

	_, err = f.svc.Rename(ctx, "Alice", "Robert")
	assert.ErrorIs(t, err, pkgerrors.DuplicateName)

	robert, err := f.svc.Get(ctx, "Robert")
	require.NoError(t, err)
	assert.Equal(t, "+12345678901", robert)
	alice, err := f.svc.Get(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, "+19876543210", alice)
}

// 每种修改操作：undo 回到修改前，redo 回到修改后，两次状态都完全一致
func TestUndoRedo_RestoresExactState(t *testing.T) {
	ops := map[string]func(ctx context.Context, s *ContactService) error{
		"add": func(ctx context.Context, s *ContactService) error {
			_, err := s.Add(ctx, dto.CreateContactRequest{Name: "Cid", Phone: "+13333333333", Notes: ptr("new")})
			return err
		},
		"change": func(ctx context.Context, s *ContactService) error {
			_, err := s.Change(ctx, "Bob", dto.UpdateContactRequest{Phone: "+15555555555", Birthday: ptr(""), Notes: ptr("changed")})
			return err
		},
		"remove": func(ctx context.Context, s *ContactService) error {
			_, err := s.Remove(ctx, "Bob")
			return err
		},
		"rename": func(ctx context.Context, s *ContactService) error {
			_, err := s.Rename(ctx, "Bob", "Robert")
			return err
		},
		"set birthday": func(ctx context.Context, s *ContactService) error {
			_, err := s.SetBirthday(ctx, "Ann", "2000-02-29")
			return err
		},
		"clear note": func(ctx context.Context, s *ContactService) error {
			_, err := s.ClearNote(ctx, "Bob")
			return err
		},
		"import": func(ctx context.Context, s *ContactService) error {
			s.ImportRows(ctx, []dto.ImportRow{
				{Name: "Dan", Phone: "+14444444444"},
				{Name: "Eve", Phone: "+16666666666", Birthday: "1991-01-01"},
			})
			return nil
		},
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			_, err := f.svc.Add(ctx, dto.CreateContactRequest{
				Name: "Bob", Phone: "+12345678901", Birthday: ptr("1990-05-01"), Notes: ptr("gym"),
			})
			require.NoError(t, err)
			f.add(t, "Ann", "+19876543210")

			before := f.svc.All(ctx)
			f.clock.Advance(time.Hour)
			require.NoError(t, op(ctx, f.svc))
			after := f.svc.All(ctx)
			require.NotEqual(t, before, after)

			f.clock.Advance(time.Hour)
			_, err = f.svc.Undo(ctx)
			require.NoError(t, err)
			assert.Equal(t, before, f.svc.All(ctx))

			f.clock.Advance(time.Hour)
			_, err = f.svc.Redo(ctx)
			require.NoError(t, err)
			assert.Equal(t, after, f.svc.All(ctx))

			_, err = f.svc.Undo(ctx)
			require.NoError(t, err)
			assert.Equal(t, before, f.svc.All(ctx))
		})
	}
}

func TestUndoRedo_EmptyStacks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Undo(ctx)
	assert.ErrorIs(t, err, pkgerrors.NothingToUndo)
	assert.Equal(t, pkgerrors.KindNothingToUndo, pkgerrors.KindOf(err))

	_, err = f.svc.Redo(ctx)
	assert.ErrorIs(t, err, pkgerrors.NothingToRedo)
	assert.Equal(t, 0, f.store.saves)
}

func TestRedo_ReportsForwardOperation(t *testing.T) {
	cases := map[string]func(ctx context.Context, f *fixture){
		"add": func(ctx context.Context, f *fixture) {
			f.add(t, "Bob", "+12345678901")
		},
		"remove": func(ctx context.Context, f *fixture) {
			f.add(t, "Bob", "+12345678901")
			_, err := f.svc.Remove(ctx, "Bob")
			require.NoError(t, err)
		},
		"bulk_add": func(ctx context.Context, f *fixture) {
			f.svc.ImportRows(ctx, []dto.ImportRow{
				{Name: "Dan", Phone: "+14444444444"},
				{Name: "Eve", Phone: "+16666666666"},
			})
		},
	}

	for want, setup := range cases {
		t.Run(want, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			setup(ctx, f)

			undone, err := f.svc.Undo(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, undone.Op())

			redone, err := f.svc.Redo(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, redone.Op())
		})
	}
}

func TestNewMutationClearsRedo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.add(t, "Bob", "+12345678901")

	_, err := f.svc.Undo(ctx)
	require.NoError(t, err)
	assert.True(t, f.svc.CanRedo())

	f.add(t, "Ann", "+19876543210")
	assert.False(t, f.svc.CanRedo())

	_, err = f.svc.Redo(ctx)
	assert.ErrorIs(t, err, pkgerrors.NothingToRedo)
}

func TestUndo_MultipleStepsInOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.add(t, "Bob", "+12345678901")
	_, err := f.svc.Rename(ctx, "Bob", "Robert")
	require.NoError(t, err)
	_, err = f.svc.Change(ctx, "Robert", dto.UpdateContactRequest{Phone: "+15555555555"})
	require.NoError(t, err)

	e, err := f.svc.Undo(ctx)
	require.NoError(t, err)
	assert.IsType(t, history.ChangedPhone{}, e)
	e, err = f.svc.Undo(ctx)
	require.NoError(t, err)
	assert.IsType(t, history.Renamed{}, e)
	e, err = f.svc.Undo(ctx)
	require.NoError(t, err)
	assert.IsType(t, history.AddedRecord{}, e)

	assert.Empty(t, f.svc.All(ctx))
	assert.False(t, f.svc.CanUndo())
}

func TestSaveFailureIsNotReturned(t *testing.T) {
	f := newFixture(t)
	f.store.err = pkgerrors.Storage("write", "contacts.json", errors.New("disk full"))

	c, err := f.svc.Add(context.Background(), dto.CreateContactRequest{Name: "Bob", Phone: "+12345678901"})
	require.NoError(t, err)
	assert.Equal(t, "Bob", c.Name)
	assert.True(t, f.book.Dirty(), "dirty stays set until a save succeeds")

	err = f.svc.Close(context.Background())
	assert.ErrorIs(t, err, pkgerrors.StorageIO)

	f.store.err = nil
	require.NoError(t, f.svc.Close(context.Background()))
	assert.False(t, f.book.Dirty())
	assert.Len(t, f.store.contacts, 1)
}

func TestPersistsAfterEveryMutation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.add(t, "Bob", "+12345678901")
	_, err := f.svc.SetNote(ctx, "Bob", "note")
	require.NoError(t, err)
	_, err = f.svc.Undo(ctx)
	require.NoError(t, err)
	_, err = f.svc.Redo(ctx)
	require.NoError(t, err)

	assert.Equal(t, 4, f.store.saves)
	require.Len(t, f.store.contacts, 1)
	assert.Equal(t, "note", f.store.contacts[0].NotesValue())
	assert.NotNil(t, f.store.lastModified)
	assert.False(t, f.book.Dirty())
}

func TestDuplicatePhonePolicy(t *testing.T) {
	strict := newFixture(t)
	strict.add(t, "Bob", "+12345678901")
	_, err := strict.svc.Add(context.Background(), dto.CreateContactRequest{Name: "Ann", Phone: "+12345678901"})
	assert.ErrorIs(t, err, pkgerrors.DuplicatePhone)

	relaxed := newFixture(t, repository.WithAllowDuplicatePhones(true))
	relaxed.add(t, "Bob", "+12345678901")
	relaxed.add(t, "Ann", "+12345678901")
	st := relaxed.svc.Stats(context.Background())
	assert.Equal(t, 2, st.Total)
	assert.Equal(t, 1, st.UniquePhones)
}

func TestSetBirthday_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.add(t, "Bob", "+12345678901")

	_, err := f.svc.SetBirthday(ctx, "Bob", "1990-02-30")
	assert.ErrorIs(t, err, pkgerrors.InvalidBirthday)

	_, err = f.svc.SetBirthday(ctx, "Zed", "1990-02-01")
	assert.ErrorIs(t, err, pkgerrors.ContactNotFound)

	c, err := f.svc.SetBirthday(ctx, "Bob", "1990-02-01")
	require.NoError(t, err)
	assert.Equal(t, "1990-02-01", c.BirthdayValue())
	assert.Equal(t, "+12345678901", c.Phone)
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.add(t, "bob", "+12345678901")
	f.add(t, "Alice", "+19876543210")
	f.add(t, "Bobby", "+15550001234")

	_, err := f.svc.Search(ctx, "")
	assert.ErrorIs(t, err, pkgerrors.InvalidQuery)

	got, err := f.svc.Search(ctx, "BO")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "bob", got[0].Name)
	assert.Equal(t, "Bobby", got[1].Name)

	got, err = f.svc.Search(ctx, "987")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Alice", got[0].Name)
}
