package social

import (
	"sync"

	"github.com/iudanet/devnest/internal/client/optimistic"
	"github.com/iudanet/devnest/pkg/api"
)

// Timeline локальный список постов ленты
type Timeline struct {
	index map[string]int
	posts []api.Post
	mu    sync.RWMutex
}

// NewTimeline создает ленту из постов сервера
func NewTimeline(posts []api.Post) *Timeline {
	tl := &Timeline{}
	tl.reset(posts)
	return tl
}

// reset пересобирает ленту; из повторов по id остается первый
func (t *Timeline) reset(posts []api.Post) {
	t.posts = make([]api.Post, 0, len(posts))
	t.index = make(map[string]int, len(posts))
	for _, p := range posts {
		if _, dup := t.index[p.ID]; dup {
			continue
		}
		t.index[p.ID] = len(t.posts)
		t.posts = append(t.posts, p)
	}
}

// Posts возвращает копию постов
func (t *Timeline) Posts() []api.Post {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]api.Post(nil), t.posts...)
}

// Len количество постов
func (t *Timeline) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.posts)
}

// Get возвращает пост по id
func (t *Timeline) Get(id string) (api.Post, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	i, ok := t.index[id]
	if !ok {
		return api.Post{}, false
	}
	return t.posts[i], true
}

// Prepend добавляет пост в начало ленты, убирая прежнюю копию с тем же id
func (t *Timeline) Prepend(p api.Post) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reset(append([]api.Post{p}, t.posts...))
}

// likeTarget адаптер поста ленты для optimistic.Coordinator
type likeTarget struct {
	tl *Timeline
	id string
}

func (l likeTarget) Load() optimistic.State {
	p, _ := l.tl.Get(l.id)
	return optimistic.State{Flag: p.HasLiked, Count: p.LikesCount}
}

func (l likeTarget) Store(s optimistic.State) {
	l.tl.mu.Lock()
	defer l.tl.mu.Unlock()
	if i, ok := l.tl.index[l.id]; ok {
		l.tl.posts[i].HasLiked = s.Flag
		l.tl.posts[i].LikesCount = s.Count
	}
}

// ProfileView профиль пользователя вместе с его постами
type ProfileView struct {
	Posts   *Timeline
	profile api.Profile
	mu      sync.RWMutex
}

// NewProfileView создает представление профиля
func NewProfileView(p api.Profile, posts []api.Post) *ProfileView {
	return &ProfileView{profile: p, Posts: NewTimeline(posts)}
}

// Profile возвращает копию профиля
func (v *ProfileView) Profile() api.Profile {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.profile
}

// Load реализует optimistic.Target для подписки
func (v *ProfileView) Load() optimistic.State {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return optimistic.State{Flag: v.profile.IsFollowing, Count: v.profile.FollowersCount}
}

// Store реализует optimistic.Target для подписки
func (v *ProfileView) Store(s optimistic.State) {
	v.mu.Lock()
	v.profile.IsFollowing = s.Flag
	v.profile.FollowersCount = s.Count
	v.mu.Unlock()
}
