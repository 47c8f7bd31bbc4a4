package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/sakif/pingme/internal/apperror"
	"github.com/sakif/pingme/internal/model"
	"github.com/sakif/pingme/internal/realtime"
)

// Shared in-memory fakes for the service tests. Each fake implements just
// enough of its interface to observe what the service did with it.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeUserRepo keeps users in a map and mints IDs in the same 24-hex format
// the real repository uses, so the link codec accepts them.
type fakeUserRepo struct {
	users  map[string]*model.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return apperror.Conflict("user", "email already exists")
		}
	}
	r.nextID++
	user.ID = fmt.Sprintf("%024x", r.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (r *fakeUserRepo) List(_ context.Context, excludeID string) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		if u.ID != excludeID {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeUserRepo) MarkVerified(_ context.Context, id string) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	u.Verified = true
	clone := *u
	return &clone, nil
}

func (r *fakeUserRepo) UpdateProfilePic(_ context.Context, id, url string) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	u.ProfilePic = url
	clone := *u
	return &clone, nil
}

type fakeMessageRepo struct {
	messages []model.Message
	nextID   int
}

func (r *fakeMessageRepo) Create(_ context.Context, msg *model.Message) error {
	r.nextID++
	msg.ID = fmt.Sprintf("msg-%d", r.nextID)
	msg.CreatedAt = time.Now()
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *fakeMessageRepo) Conversation(_ context.Context, userA, userB string) ([]model.Message, error) {
	var out []model.Message
	for _, m := range r.messages {
		if (m.SenderID == userA && m.ReceiverID == userB) ||
			(m.SenderID == userB && m.ReceiverID == userA) {
			out = append(out, m)
		}
	}
	return out, nil
}

type sentMail struct {
	to, fullName, linkID string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) SendVerification(to, fullName, linkID string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to: to, fullName: fullName, linkID: linkID})
	return nil
}

type relayed struct {
	userID string
	ev     realtime.Event
}

type fakeNotifier struct {
	relays []relayed
}

func (n *fakeNotifier) RelayToUser(_ context.Context, userID string, ev realtime.Event) {
	n.relays = append(n.relays, relayed{userID: userID, ev: ev})
}

type fakeImageStore struct {
	uploads []string
	err     error
}

func (s *fakeImageStore) UploadDataURL(_ context.Context, dataURL string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.uploads = append(s.uploads, dataURL)
	return fmt.Sprintf("https://cdn.example.com/images/%d.png", len(s.uploads)), nil
}
