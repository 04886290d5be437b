package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShepherdDev/rock-labs-forums/internal/adapter/driven/authz"
	"github.com/ShepherdDev/rock-labs-forums/internal/domain/model"
	"github.com/ShepherdDev/rock-labs-forums/internal/domain/port/driven"
	"github.com/ShepherdDev/rock-labs-forums/internal/render"
)

// --- Mock implementations shared by the service tests ---

type mockNoteStore struct {
	mu          sync.Mutex
	notes       map[int64]model.Note
	nextID      int64
	aliasPerson map[int64]int64 // alias id -> person id
	createErr   error
}

func newMockNoteStore(aliasPerson map[int64]int64) *mockNoteStore {
	return &mockNoteStore{notes: map[int64]model.Note{}, aliasPerson: aliasPerson}
}

func (m *mockNoteStore) Create(_ context.Context, note model.Note) (model.Note, error) {
	if m.createErr != nil {
		return model.Note{}, m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	note.ID = m.nextID
	// Mirror what the real store joins in on reads.
	if note.NoteType.ID == 0 {
		switch note.NoteTypeID {
		case model.NoteTypeComment:
			note.NoteType = model.NoteType{ID: model.NoteTypeComment, Name: "Comment", UserSelectable: true}
		case model.NoteTypeSystem:
			note.NoteType = model.NoteType{ID: model.NoteTypeSystem, Name: "System Note"}
		}
	}
	if note.CreatedByAliasID != nil {
		if personID, ok := m.aliasPerson[*note.CreatedByAliasID]; ok {
			p := personID
			note.AuthorPersonID = &p
		}
	}
	m.notes[note.ID] = note
	return note, nil
}

func (m *mockNoteStore) Get(_ context.Context, id int64) (*model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	note, ok := m.notes[id]
	if !ok {
		return nil, driven.ErrNotFound
	}
	return &note, nil
}

func (m *mockNoteStore) ListThread(_ context.Context, itemTypeID, itemID int64) ([]model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Note
	for id := int64(1); id <= m.nextID; id++ {
		note, ok := m.notes[id]
		if ok && note.ItemTypeID == itemTypeID && note.ItemID == itemID {
			out = append(out, note)
		}
	}
	return out, nil
}

func (m *mockNoteStore) CountByAuthor(_ context.Context, itemTypeID, itemID, personID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, note := range m.notes {
		if note.ItemTypeID != itemTypeID || note.ItemID != itemID || note.CreatedByAliasID == nil {
			continue
		}
		if m.aliasPerson[*note.CreatedByAliasID] == personID {
			count++
		}
	}
	return count, nil
}

func (m *mockNoteStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notes[id]; !ok {
		return driven.ErrNotFound
	}
	delete(m.notes, id)
	return nil
}

type followKey struct {
	itemTypeID, itemID, aliasID int64
}

type mockFollowStore struct {
	mu          sync.Mutex
	rows        map[followKey]struct{}
	aliasPerson map[int64]int64
	upserts     int
}

func newMockFollowStore(aliasPerson map[int64]int64) *mockFollowStore {
	return &mockFollowStore{rows: map[followKey]struct{}{}, aliasPerson: aliasPerson}
}

func (m *mockFollowStore) IsFollowing(_ context.Context, itemTypeID, itemID, personID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.rows {
		if key.itemTypeID == itemTypeID && key.itemID == itemID && m.aliasPerson[key.aliasID] == personID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockFollowStore) Upsert(_ context.Context, itemTypeID, itemID, personAliasID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	m.rows[followKey{itemTypeID, itemID, personAliasID}] = struct{}{}
	return nil
}

func (m *mockFollowStore) DeleteAll(_ context.Context, itemTypeID, itemID, personID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.rows {
		if key.itemTypeID == itemTypeID && key.itemID == itemID && m.aliasPerson[key.aliasID] == personID {
			delete(m.rows, key)
		}
	}
	return nil
}

func (m *mockFollowStore) ListFollowers(_ context.Context, itemTypeID, itemID int64) ([]model.Follow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Follow
	for key := range m.rows {
		if key.itemTypeID == itemTypeID && key.itemID == itemID {
			out = append(out, model.Follow{
				ItemTypeID:    key.itemTypeID,
				ItemID:        key.itemID,
				PersonAliasID: key.aliasID,
				PersonID:      m.aliasPerson[key.aliasID],
			})
		}
	}
	return out, nil
}

type mockAliasResolver struct {
	aliases map[int64]int64 // person id -> primary alias id
}

func (m *mockAliasResolver) PrimaryAliasID(_ context.Context, personID int64) (int64, error) {
	aliasID, ok := m.aliases[personID]
	if !ok {
		return 0, driven.ErrNotFound
	}
	return aliasID, nil
}

type mockAttachmentStore struct {
	mu       sync.Mutex
	promoted []int64
}

func (m *mockAttachmentStore) Create(_ context.Context, fileName string) (model.Attachment, error) {
	return model.Attachment{ID: 1, FileName: fileName, IsTemporary: true}, nil
}

func (m *mockAttachmentStore) Get(_ context.Context, _ int64) (*model.Attachment, error) {
	return nil, driven.ErrNotFound
}

func (m *mockAttachmentStore) MarkPermanent(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.promoted = append(m.promoted, id)
	return nil
}

// passthroughTx runs the function without a real transaction; rollback
// semantics are covered by the sqlite adapter tests.
type passthroughTx struct{}

func (passthroughTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockDispatcher struct {
	mu       sync.Mutex
	received []driven.Notification
	done     chan struct{}
}

func newMockDispatcher() *mockDispatcher {
	return &mockDispatcher{done: make(chan struct{}, 8)}
}

func (m *mockDispatcher) NotifyFollowers(_ context.Context, n driven.Notification) error {
	m.mu.Lock()
	m.received = append(m.received, n)
	m.mu.Unlock()
	m.done <- struct{}{}
	return nil
}

func (m *mockDispatcher) wait(t *testing.T) driven.Notification {
	t.Helper()
	select {
	case <-m.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification dispatch")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.received[len(m.received)-1]
}

// --- Test fixture ---

type commentFixture struct {
	service     *CommentService
	notes       *mockNoteStore
	follows     *mockFollowStore
	attachments *mockAttachmentStore
	dispatcher  *mockDispatcher
}

// Person 1 is the admin, persons 5 and 9 are regular users. Alias ids are
// person id + 100.
func newCommentFixture(t *testing.T, autoFollow bool) *commentFixture {
	t.Helper()

	aliasPerson := map[int64]int64{101: 1, 105: 5, 109: 9}
	resolver := &mockAliasResolver{aliases: map[int64]int64{1: 101, 5: 105, 9: 109}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	notes := newMockNoteStore(aliasPerson)
	follows := newMockFollowStore(aliasPerson)
	attachments := &mockAttachmentStore{}
	dispatcher := newMockDispatcher()

	followService := NewFollowService(follows, resolver, model.DefaultItemTypes(), logger)
	service := NewCommentService(
		notes,
		followService,
		attachments,
		passthroughTx{},
		authz.NewOracle([]int64{1}),
		dispatcher,
		render.New(),
		render.ItemURLResolver("https://forums.example.com", "/topics"),
		model.DefaultItemTypes(),
		autoFollow,
		logger,
	)
	return &commentFixture{
		service:     service,
		notes:       notes,
		follows:     follows,
		attachments: attachments,
		dispatcher:  dispatcher,
	}
}

// --- Tests ---

func TestPostComment_SavesNote(t *testing.T) {
	f := newCommentFixture(t, true)

	note, err := f.service.PostComment(context.Background(), PostCommentInput{
		ItemTypeID:     model.ItemTypeTopic,
		ItemID:         7,
		Text:           "  hello **world**  ",
		AuthorPersonID: 5,
	})
	require.NoError(t, err)

	assert.NotZero(t, note.ID)
	assert.Equal(t, "hello **world**", note.Text, "text is trimmed")
	assert.Equal(t, model.NoteTypeComment, note.NoteTypeID)
	require.NotNil(t, note.CreatedByAliasID)
	assert.Equal(t, int64(105), *note.CreatedByAliasID)
}

func TestPostComment_FirstPostAutoFollows(t *testing.T) {
	f := newCommentFixture(t, true)
	ctx := context.Background()

	_, err := f.service.PostComment(ctx, PostCommentInput{
		ItemTypeID:     model.ItemTypeTopic,
		ItemID:         7,
		Text:           "first",
		AuthorPersonID: 5,
	})
	require.NoError(t, err)

	following, err := f.follows.IsFollowing(ctx, model.ItemTypeTopic, 7, 5)
	require.NoError(t, err)
	assert.True(t, following)
	assert.Equal(t, 1, f.follows.upserts)

	// A second post must not touch the follow state again.
	_, err = f.service.PostComment(ctx, PostCommentInput{
		ItemTypeID:     model.ItemTypeTopic,
		ItemID:         7,
		Text:           "second",
		AuthorPersonID: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f.follows.upserts)
}

func TestPostComment_AutoFollowDisabled(t *testing.T) {
	f := newCommentFixture(t, false)
	ctx := context.Background()

	_, err := f.service.PostComment(ctx, PostCommentInput{
		ItemTypeID:     model.ItemTypeTopic,
		ItemID:         7,
		Text:           "first",
		AuthorPersonID: 5,
	})
	require.NoError(t, err)

	following, err := f.follows.IsFollowing(ctx, model.ItemTypeTopic, 7, 5)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestPostComment_PromotesOnlyReferencedAttachments(t *testing.T) {
	f := newCommentFixture(t, false)

	text := fmt.Sprintf("see ![shot](%s) and [doc](%s)", model.AttachmentURL(3), model.AttachmentURL(42))
	_, err := f.service.PostComment(context.Background(), PostCommentInput{
		ItemTypeID:     model.ItemTypeTopic,
		ItemID:         7,
		Text:           text,
		AuthorPersonID: 5,
		AttachmentIDs:  []int64{3, 4, 42},
	})
	require.NoError(t, err)

	// 4 is a prefix of 42 but was never referenced on its own.
	assert.ElementsMatch(t, []int64{3, 42}, f.attachments.promoted)
}

func TestPostComment_NotifiesFollowersExceptAuthor(t *testing.T) {
	f := newCommentFixture(t, true)
	ctx := context.Background()

	// Person 9 already follows the topic through their alias.
	require.NoError(t, f.follows.Upsert(ctx, model.ItemTypeTopic, 7, 109))

	note, err := f.service.PostComment(ctx, PostCommentInput{
		ItemTypeID:     model.ItemTypeTopic,
		ItemID:         7,
		Text:           "news",
		AuthorPersonID: 5,
	})
	require.NoError(t, err)

	n := f.dispatcher.wait(t)
	assert.Equal(t, note.ID, n.NoteID)
	assert.Equal(t, []int64{9}, n.FollowerPersonIDs, "author is not notified about their own post")
}

func TestPostComment_Validation(t *testing.T) {
	f := newCommentFixture(t, true)
	ctx := context.Background()

	_, err := f.service.PostComment(ctx, PostCommentInput{
		ItemTypeID:     model.ItemTypeTopic,
		ItemID:         7,
		Text:           "   ",
		AuthorPersonID: 5,
	})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "text", validationErr.Field)

	_, err = f.service.PostComment(ctx, PostCommentInput{
		ItemTypeID:     99,
		ItemID:         7,
		Text:           "hello",
		AuthorPersonID: 5,
	})
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "item_type_id", validationErr.Field)
}

func TestPostComment_UnknownAuthor(t *testing.T) {
	f := newCommentFixture(t, true)

	_, err := f.service.PostComment(context.Background(), PostCommentInput{
		ItemTypeID:     model.ItemTypeTopic,
		ItemID:         7,
		Text:           "hello",
		AuthorPersonID: 404,
	})
	assert.ErrorIs(t, err, driven.ErrNotFound)
}

func TestListThread_RendersAndFilters(t *testing.T) {
	f := newCommentFixture(t, false)
	ctx := context.Background()

	_, err := f.service.PostComment(ctx, PostCommentInput{
		ItemTypeID:     model.ItemTypeTopic,
		ItemID:         7,
		Text:           "see #12 for details",
		AuthorPersonID: 5,
	})
	require.NoError(t, err)

	// A system note lands in the same thread directly through the store.
	_, err = f.notes.Create(ctx, model.Note{
		NoteTypeID: model.NoteTypeSystem,
		ItemTypeID: model.ItemTypeTopic,
		ItemID:     7,
		Text:       "topic locked",
		NoteType:   model.NoteType{UserSelectable: false},
	})
	require.NoError(t, err)

	thread, err := f.service.ListThread(ctx, model.ItemTypeTopic, 7, 9)
	require.NoError(t, err)
	require.Len(t, thread, 1, "system note is hidden from regular users")

	entry := thread[0]
	assert.Contains(t, entry.HTML, `<a href="https://forums.example.com/topics/12"`)
	assert.Contains(t, entry.HTML, ">#12</a>")
	assert.Equal(t, "Just now", entry.PostedText)
	assert.False(t, entry.CanDelete, "stranger cannot delete")

	// The admin sees both notes and may delete either.
	thread, err = f.service.ListThread(ctx, model.ItemTypeTopic, 7, 1)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.True(t, thread[0].CanDelete)

	// The author sees the delete affordance on their own comment.
	thread, err = f.service.ListThread(ctx, model.ItemTypeTopic, 7, 5)
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.True(t, thread[0].CanDelete)
}

func TestListThread_UnknownItemType(t *testing.T) {
	f := newCommentFixture(t, false)

	_, err := f.service.ListThread(context.Background(), 99, 7, 5)
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestPreview(t *testing.T) {
	f := newCommentFixture(t, false)

	html := f.service.Preview("**bold** and #3")
	assert.Contains(t, html, "<strong>bold</strong>")
	assert.Contains(t, html, `<a href="https://forums.example.com/topics/3"`)
}

func TestDeleteComment(t *testing.T) {
	f := newCommentFixture(t, false)
	ctx := context.Background()

	note, err := f.service.PostComment(ctx, PostCommentInput{
		ItemTypeID:     model.ItemTypeTopic,
		ItemID:         7,
		Text:           "mine",
		AuthorPersonID: 5,
	})
	require.NoError(t, err)

	assert.ErrorIs(t, f.service.DeleteComment(ctx, note.ID, 9), ErrPermissionDenied)
	require.NoError(t, f.service.DeleteComment(ctx, note.ID, 5), "author may delete their own comment")

	note, err = f.service.PostComment(ctx, PostCommentInput{
		ItemTypeID:     model.ItemTypeTopic,
		ItemID:         7,
		Text:           "another",
		AuthorPersonID: 5,
	})
	require.NoError(t, err)
	require.NoError(t, f.service.DeleteComment(ctx, note.ID, 1), "admin may delete any comment")

	assert.ErrorIs(t, f.service.DeleteComment(ctx, 999, 1), driven.ErrNotFound)
}
