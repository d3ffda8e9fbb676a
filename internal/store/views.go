package store

import (
	"slices"
	"strings"

	"github.com/haierkeys/fast-note-client/internal/domain"
)

// RecentLimit is the number of notes RecentNotes returns.
// RecentLimit 最近笔记的数量
const RecentLimit = 5

// FilterNotes returns the notes whose title or plain text contains query,
// case-insensitively. An empty query matches everything.
// FilterNotes 按标题或正文过滤，不区分大小写
func FilterNotes(notes []*domain.Note, query string) []*domain.Note {
	if query == "" {
		return slices.Clone(notes)
	}
	q := strings.ToLower(query)
	out := make([]*domain.Note, 0, len(notes))
	for _, n := range notes {
		if strings.Contains(strings.ToLower(n.Title), q) ||
			strings.Contains(strings.ToLower(n.ContentText), q) {
			out = append(out, n)
		}
	}
	return out
}

// FavoriteNotes keeps the favorites in their input order.
// FavoriteNotes 收藏的笔记
func FavoriteNotes(notes []*domain.Note) []*domain.Note {
	out := make([]*domain.Note, 0, len(notes))
	for _, n := range notes {
		if n.IsFavorite {
			out = append(out, n)
		}
	}
	return out
}

// RecentNotes returns up to limit notes ordered by UpdatedAt descending.
// The input slice is not reordered.
// RecentNotes 按更新时间倒序取前 limit 条，不修改入参
func RecentNotes(notes []*domain.Note, limit int) []*domain.Note {
	sorted := slices.Clone(notes)
	slices.SortStableFunc(sorted, func(a, b *domain.Note) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	if limit >= 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// NotesByUser returns the projections owned by the given email.
func NotesByUser(notes []*domain.AdminNote, email string) []*domain.AdminNote {
	out := make([]*domain.AdminNote, 0)
	for _, n := range notes {
		if n.UserEmail == email {
			out = append(out, n)
		}
	}
	return out
}

// SplitUsers partitions users into administrators and regular users.
// SplitUsers 拆分管理员与普通用户
func SplitUsers(users []*domain.AdminUser) (admins, regular []*domain.AdminUser) {
	admins = make([]*domain.AdminUser, 0)
	regular = make([]*domain.AdminUser, 0)
	for _, u := range users {
		if u.IsAdmin {
			admins = append(admins, u)
		} else {
			regular = append(regular, u)
		}
	}
	return admins, regular
}
