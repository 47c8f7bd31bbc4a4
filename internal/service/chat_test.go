package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/pingme/internal/apperror"
	"github.com/sakif/pingme/internal/model"
	"github.com/sakif/pingme/internal/realtime"
)

func newChatService(t *testing.T) (*ChatService, *fakeUserRepo, *fakeMessageRepo, *fakeNotifier, *fakeImageStore) {
	t.Helper()
	users := newFakeUserRepo()
	messages := &fakeMessageRepo{}
	notifier := &fakeNotifier{}
	images := &fakeImageStore{}
	svc := NewChatService(users, messages, notifier, images, testLogger())
	return svc, users, messages, notifier, images
}

func seedUser(t *testing.T, users *fakeUserRepo, name, email string) *model.User {
	t.Helper()
	u := &model.User{FullName: name, Email: email, PasswordHash: "x"}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestContactsExcludesSelf(t *testing.T) {
	svc, users, _, _, _ := newChatService(t)
	alice := seedUser(t, users, "Alice", "alice@example.com")
	bob := seedUser(t, users, "Bob", "bob@example.com")

	contacts, err := svc.Contacts(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, bob.ID, contacts[0].ID)
}

func TestSendPersistsAndRelays(t *testing.T) {
	svc, users, messages, notifier, _ := newChatService(t)
	alice := seedUser(t, users, "Alice", "alice@example.com")
	bob := seedUser(t, users, "Bob", "bob@example.com")

	msg, err := svc.Send(context.Background(), alice.ID, bob.ID, "hello", "")
	require.NoError(t, err)

	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, alice.ID, msg.SenderID)
	assert.Equal(t, bob.ID, msg.ReceiverID)
	assert.Equal(t, "hello", msg.Text)
	require.Len(t, messages.messages, 1)

	// The receiver gets exactly one newMessage push carrying the message.
	require.Len(t, notifier.relays, 1)
	assert.Equal(t, bob.ID, notifier.relays[0].userID)
	assert.Equal(t, realtime.EventNewMessage, notifier.relays[0].ev.Name)
	assert.Equal(t, msg, notifier.relays[0].ev.Data)
}

func TestSendUploadsImage(t *testing.T) {
	svc, users, _, _, images := newChatService(t)
	alice := seedUser(t, users, "Alice", "alice@example.com")
	bob := seedUser(t, users, "Bob", "bob@example.com")

	msg, err := svc.Send(context.Background(), alice.ID, bob.ID, "", "data:image/png;base64,aGk=")
	require.NoError(t, err)

	require.Len(t, images.uploads, 1)
	assert.Equal(t, "data:image/png;base64,aGk=", images.uploads[0])
	assert.Equal(t, "https://cdn.example.com/images/1.png", msg.Image,
		"stored image should be the uploaded URL, not the data URL")
}

func TestSendWithoutImageStoreKeepsDataURL(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewChatService(users, &fakeMessageRepo{}, &fakeNotifier{}, nil, testLogger())
	alice := seedUser(t, users, "Alice", "alice@example.com")
	bob := seedUser(t, users, "Bob", "bob@example.com")

	msg, err := svc.Send(context.Background(), alice.ID, bob.ID, "", "data:image/png;base64,aGk=")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,aGk=", msg.Image)
}

func TestSendRejections(t *testing.T) {
	svc, users, _, notifier, _ := newChatService(t)
	alice := seedUser(t, users, "Alice", "alice@example.com")
	bob := seedUser(t, users, "Bob", "bob@example.com")

	t.Run("empty message", func(t *testing.T) {
		_, err := svc.Send(context.Background(), alice.ID, bob.ID, "   ", "")
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("self send", func(t *testing.T) {
		_, err := svc.Send(context.Background(), alice.ID, alice.ID, "hi", "")
		assert.ErrorIs(t, err, apperror.ErrValidation)
	})

	t.Run("unknown receiver", func(t *testing.T) {
		_, err := svc.Send(context.Background(), alice.ID, "ffffffffffffffffffffffff", "hi", "")
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})

	assert.Empty(t, notifier.relays, "rejected sends must not relay anything")
}

func TestConversation(t *testing.T) {
	svc, users, _, _, _ := newChatService(t)
	alice := seedUser(t, users, "Alice", "alice@example.com")
	bob := seedUser(t, users, "Bob", "bob@example.com")
	carol := seedUser(t, users, "Carol", "carol@example.com")

	_, err := svc.Send(context.Background(), alice.ID, bob.ID, "to bob", "")
	require.NoError(t, err)
	_, err = svc.Send(context.Background(), bob.ID, alice.ID, "to alice", "")
	require.NoError(t, err)
	_, err = svc.Send(context.Background(), alice.ID, carol.ID, "to carol", "")
	require.NoError(t, err)

	history, err := svc.Conversation(context.Background(), alice.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, history, 2, "carol's conversation must not leak in")
	assert.Equal(t, "to bob", history[0].Text)
	assert.Equal(t, "to alice", history[1].Text)
}

func TestConversationRequiresOtherID(t *testing.T) {
	svc, users, _, _, _ := newChatService(t)
	alice := seedUser(t, users, "Alice", "alice@example.com")

	_, err := svc.Conversation(context.Background(), alice.ID, "")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}
