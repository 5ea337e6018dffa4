package session

import "context"

// Role is the account role assigned by the backend at registration.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
	RoleAdmin   Role = "ADMIN"
)

var dashboardPaths = map[Role]string{
	RoleStudent: "/dashboard/student",
	RoleTeacher: "/dashboard/teacher",
	RoleAdmin:   "/dashboard/admin",
}

// DashboardPath maps a role to its dashboard route. Unknown roles land on
// the generic dashboard root.
func (r Role) DashboardPath() string {
	if path, ok := dashboardPaths[r]; ok {
		return path
	}
	return "/dashboard"
}

// User is the cached profile returned by the backend at login.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// Session is the locally persisted proof of authentication: the opaque
// backend token plus the cached user profile.
type Session struct {
	Token string
	User  User
}

type contextKey struct{}

func NewContext(ctx context.Context, sess Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

func FromContext(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(contextKey{}).(Session)
	return sess, ok
}
