// Package auth contains the stateless authorization rules for subscription and
// notification records.
package auth

import (
	"github.com/buildwatch/notifier/common"
	"github.com/buildwatch/notifier/model"
)

// CanManage determines whether or not the user may read or delete a record owned by the
// given subscriber. Administrators may always read and delete; everyone else only their
// own records.
func CanManage(user model.UserInfo, ownerID string) bool {
	return user.UserID == ownerID || user.HasRole(model.RoleAdmin)
}

// RequireOwner returns an access denied error unless the user owns the record or holds
// the administrator role.
func RequireOwner(user model.UserInfo, ownerID string) error {
	if !CanManage(user, ownerID) {
		return common.NewAccessDenied("user with id: %s doesn't have permission to do that", user.UserID)
	}
	return nil
}

// RequireAdmin returns an access denied error unless the user holds the administrator role.
func RequireAdmin(user model.UserInfo) error {
	if !user.HasRole(model.RoleAdmin) {
		return common.NewAccessDenied("user with id: %s doesn't have permission to do that", user.UserID)
	}
	return nil
}

// RequireSelf returns an access denied error unless the user is acting on their own
// behalf. There is no administrator override here: subscriptions can only be created
// by the subscriber themself.
func RequireSelf(user model.UserInfo, subscriberID string) error {
	if user.UserID != subscriberID {
		return common.NewAccessDenied(
			"user with id: %s can't subscribe on behalf of user with id: %s", user.UserID, subscriberID)
	}
	return nil
}
