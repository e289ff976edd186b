package identity

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/user"
)

// ClerkDirectory resolves identities through the Clerk Backend API. The
// global clerk key must be set (clerk.SetKey) before use.
type ClerkDirectory struct{}

func NewClerkDirectory() *ClerkDirectory {
	return &ClerkDirectory{}
}

func (d *ClerkDirectory) UserByEmail(ctx context.Context, email string) (*UserInfo, error) {
	list, err := user.List(ctx, &user.ListParams{
		EmailAddresses: []string{email},
	})
	if err != nil {
		return nil, fmt.Errorf("list users by email: %w", err)
	}
	if len(list.Users) == 0 {
		return nil, ErrUserNotFound
	}
	info := toUserInfo(list.Users[0])
	return &info, nil
}

func (d *ClerkDirectory) UsersByIDs(ctx context.Context, ids []string) ([]UserInfo, error) {
	infos := make([]UserInfo, 0, len(ids))
	for _, id := range ids {
		u, err := user.Get(ctx, id)
		if err != nil {
			log.Printf("directory: fetch user %s: %v", id, err)
			continue
		}
		infos = append(infos, toUserInfo(u))
	}
	return infos, nil
}

func toUserInfo(u *clerk.User) UserInfo {
	info := UserInfo{ID: u.ID}

	for _, addr := range u.EmailAddresses {
		if u.PrimaryEmailAddressID != nil && addr.ID == *u.PrimaryEmailAddressID {
			info.Email = addr.EmailAddress
			break
		}
	}
	if info.Email == "" && len(u.EmailAddresses) > 0 {
		info.Email = u.EmailAddresses[0].EmailAddress
	}

	var parts []string
	if u.FirstName != nil && *u.FirstName != "" {
		parts = append(parts, *u.FirstName)
	}
	if u.LastName != nil && *u.LastName != "" {
		parts = append(parts, *u.LastName)
	}
	info.Name = strings.Join(parts, " ")
	return info
}
