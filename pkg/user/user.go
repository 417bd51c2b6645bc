package user

type Role string

const (
	RoleMember Role = "member"
	RoleStaff  Role = "staff"
)

type User struct {
	Id          int
	Uid         string // subject claim of the identity provider token
	DisplayName string
	Email       string
	Role        Role
}
