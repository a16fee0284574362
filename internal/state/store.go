// Package state keeps the small set of per-client slots that carry data
// between pages: the signed-in user, the post and author picked in the feed,
// and the snapshot of the post being edited.
//
// Slot lifecycle:
//   - current user: set on sign-in, cleared on sign-out;
//   - selected post / author: overwritten by the next feed click, never cleared;
//   - edited post: overwritten whenever an edit form is opened, never cleared.
//
// Pages that render a post resolve it from the route, not from these slots.
// Every write is mirrored to the Persister so a restart does not lose it.
// Only a bounded number of sessions stay cached; an evicted session is
// reloaded from the Persister on its next access. A write that leaves every
// slot empty deletes the persisted row.
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/golang/groupcache/lru"
	"go.uber.org/zap"
	"sharefolio/internal/models"
)

type CurrentUser struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl"`
}

type Snapshot struct {
	User       *CurrentUser `json:"user,omitempty"`
	PostID     string       `json:"postId,omitempty"`
	AuthorID   string       `json:"authorId,omitempty"`
	EditedPost *models.Post `json:"editedPost,omitempty"`
}

// Persister mirrors snapshots outside the process. Load returns nil, nil for
// an unknown session.
type Persister interface {
	Load(ctx context.Context, sessionID string) ([]byte, error)
	Save(ctx context.Context, sessionID string, payload []byte) error
	Delete(ctx context.Context, sessionID string) error
}

// MaxCachedSessions bounds the in-memory snapshot cache.
const MaxCachedSessions = 10000

type Store struct {
	mu       sync.Mutex
	sessions *lru.Cache
	persist  Persister
	logger   *zap.Logger
}

func NewStore(persist Persister, logger *zap.Logger) *Store {
	return newStore(persist, logger, MaxCachedSessions)
}

func newStore(persist Persister, logger *zap.Logger, maxSessions int) *Store {
	return &Store{
		sessions: lru.New(maxSessions),
		persist:  persist,
		logger:   logger,
	}
}

// load returns the live snapshot of sessionID; callers hold s.mu.
// Sessions with nothing stored are not cached.
func (s *Store) load(ctx context.Context, sessionID string) (*Snapshot, error) {
	if cached, ok := s.sessions.Get(sessionID); ok {
		return cached.(*Snapshot), nil
	}

	snap := &Snapshot{}
	if s.persist != nil {
		payload, err := s.persist.Load(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("ошибка загрузки состояния сессии: %w", err)
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, snap); err != nil {
				// an unreadable payload is treated as an empty session
				s.logger.Warn("discarding unreadable session state",
					zap.String("session", sessionID), zap.Error(err))
				snap = &Snapshot{}
			}
		}
	}

	if !snap.empty() {
		s.sessions.Add(sessionID, snap)
	}
	return snap, nil
}

func (s *Store) update(ctx context.Context, sessionID string, apply func(snap *Snapshot)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}

	next := snap.clone()
	apply(next)

	if next.empty() {
		if s.persist != nil && !snap.empty() {
			if err := s.persist.Delete(ctx, sessionID); err != nil {
				return fmt.Errorf("ошибка удаления состояния сессии: %w", err)
			}
		}
		s.sessions.Remove(sessionID)
		return nil
	}

	if s.persist != nil {
		payload, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("ошибка сериализации состояния: %w", err)
		}
		if err := s.persist.Save(ctx, sessionID, payload); err != nil {
			return fmt.Errorf("ошибка сохранения состояния сессии: %w", err)
		}
	}

	s.sessions.Add(sessionID, next)
	return nil
}

func (s *Store) read(ctx context.Context, sessionID string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.load(ctx, sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	return *snap.clone(), nil
}

func (s *Store) Snapshot(ctx context.Context, sessionID string) (Snapshot, error) {
	return s.read(ctx, sessionID)
}

func (s *Store) CurrentUser(ctx context.Context, sessionID string) (*CurrentUser, error) {
	snap, err := s.read(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return snap.User, nil
}

func (s *Store) SetCurrentUser(ctx context.Context, sessionID string, user CurrentUser) error {
	return s.update(ctx, sessionID, func(snap *Snapshot) {
		snap.User = &user
	})
}

// ClearCurrentUser is the sign-out transition; the other slots are kept.
func (s *Store) ClearCurrentUser(ctx context.Context, sessionID string) error {
	return s.update(ctx, sessionID, func(snap *Snapshot) {
		snap.User = nil
	})
}

func (s *Store) SelectedPostID(ctx context.Context, sessionID string) (string, error) {
	snap, err := s.read(ctx, sessionID)
	return snap.PostID, err
}

func (s *Store) SetSelectedPostID(ctx context.Context, sessionID, postID string) error {
	return s.update(ctx, sessionID, func(snap *Snapshot) {
		snap.PostID = postID
	})
}

func (s *Store) SelectedAuthorID(ctx context.Context, sessionID string) (string, error) {
	snap, err := s.read(ctx, sessionID)
	return snap.AuthorID, err
}

func (s *Store) SetSelectedAuthorID(ctx context.Context, sessionID, authorID string) error {
	return s.update(ctx, sessionID, func(snap *Snapshot) {
		snap.AuthorID = authorID
	})
}

// SelectPost records a feed click: both selection slots in one write.
func (s *Store) SelectPost(ctx context.Context, sessionID, postID, authorID string) error {
	return s.update(ctx, sessionID, func(snap *Snapshot) {
		snap.PostID = postID
		snap.AuthorID = authorID
	})
}

func (s *Store) EditedPost(ctx context.Context, sessionID string) (*models.Post, error) {
	snap, err := s.read(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return snap.EditedPost, nil
}

func (s *Store) SetEditedPost(ctx context.Context, sessionID string, post models.Post) error {
	return s.update(ctx, sessionID, func(snap *Snapshot) {
		p := clonePost(&post)
		snap.EditedPost = p
	})
}

// ToggleEditedTag applies a technology checkbox change to the edited
// snapshot. It returns ErrNoEditedPost when no edit form is open.
func (s *Store) ToggleEditedTag(ctx context.Context, sessionID, tag string, checked bool) (*models.Post, error) {
	var result *models.Post
	missing := false

	err := s.update(ctx, sessionID, func(snap *Snapshot) {
		if snap.EditedPost == nil {
			missing = true
			return
		}
		snap.EditedPost.Technologies = models.ToggleTag(snap.EditedPost.Technologies, tag, checked)
		result = clonePost(snap.EditedPost)
	})
	if err != nil {
		return nil, err
	}
	if missing {
		return nil, ErrNoEditedPost
	}
	return result, nil
}

func (snap *Snapshot) empty() bool {
	return snap.User == nil && snap.PostID == "" && snap.AuthorID == "" && snap.EditedPost == nil
}

func (snap *Snapshot) clone() *Snapshot {
	out := *snap
	if snap.User != nil {
		u := *snap.User
		out.User = &u
	}
	out.EditedPost = clonePost(snap.EditedPost)
	return &out
}

func clonePost(p *models.Post) *models.Post {
	if p == nil {
		return nil
	}
	out := *p
	if p.Technologies != nil {
		out.Technologies = append([]string(nil), p.Technologies...)
	}
	return &out
}
