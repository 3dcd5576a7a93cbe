package models

import "time"

// Role constants. A user has exactly one role; domain entitlements are
// granted separately and two users with the same role can have disjoint
// entitlements.
const (
	RoleViewer           = "viewer"
	RoleAuthor           = "author"
	RoleAssessmentAuthor = "assessment_author"
	RoleReviewer         = "reviewer"
	RoleContentPublisher = "content_publisher"
	RoleAdmin            = "admin"
)

// Roles lists all valid user roles.
var Roles = []string{
	RoleViewer,
	RoleAuthor,
	RoleAssessmentAuthor,
	RoleReviewer,
	RoleContentPublisher,
	RoleAdmin,
}

// ValidRole reports whether r is a known role.
func ValidRole(r string) bool {
	for _, v := range Roles {
		if v == r {
			return true
		}
	}
	return false
}

// User is an authenticated identity. The governance engine only ever
// consumes the (Username, Role) pair; the password hash stays in the
// identity layer.
type User struct {
	Username     string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}
