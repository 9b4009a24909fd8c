package client

import (
	"context"

	"shopdesk/backend/internal/domain"
	"shopdesk/backend/internal/mutation"
)

// SyncUsers keeps a local user list and applies role changes optimistically:
// the list shows the new role at once and goes back to the old one if the
// server rejects it.
type SyncUsers struct {
	client  *Client
	users   *Resource[[]domain.UserRole]
	tracker *mutation.Tracker[int64, string]
}

func NewSyncUsers(c *Client) *SyncUsers {
	return &SyncUsers{
		client:  c,
		users:   NewResource[[]domain.UserRole](c, "/api/user-role", nil),
		tracker: mutation.NewTracker[int64, string](),
	}
}

func (s *SyncUsers) Load(ctx context.Context) error {
	return s.users.Refetch(ctx)
}

func (s *SyncUsers) Users() []domain.UserRole {
	users := s.users.Data()
	out := make([]domain.UserRole, len(users))
	copy(out, users)
	return out
}

func (s *SyncUsers) Pending() int {
	return s.tracker.Pending()
}

// ChangeRole fails with mutation.ErrPending while an earlier change for the
// same user is in flight.
func (s *SyncUsers) ChangeRole(ctx context.Context, id int64, role string) error {
	previous, ok := s.role(id)
	if !ok {
		return &APIError{StatusCode: 404, Message: "user not found"}
	}
	return mutation.Do(s.tracker, id, previous, role,
		func(value string) { s.setRole(id, value) },
		func() error {
			_, err := s.client.PatchUserRole(ctx, id, role)
			return err
		},
	)
}

func (s *SyncUsers) role(id int64) (string, bool) {
	for _, u := range s.users.Data() {
		if u.ID == id {
			return u.Role, true
		}
	}
	return "", false
}

func (s *SyncUsers) setRole(id int64, role string) {
	s.users.Update(func(users []domain.UserRole) []domain.UserRole {
		out := make([]domain.UserRole, len(users))
		copy(out, users)
		for i := range out {
			if out[i].ID == id {
				out[i].Role = role
			}
		}
		return out
	})
}
