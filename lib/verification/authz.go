package verification

// Role is the closed set of role variants supplied by the external
// identity provider; authorization is a plain predicate over this set,
// never a dynamic dispatch.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleValidator Role = "validator"
	RoleMember    Role = "member"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleValidator, RoleMember:
		return true
	}

	return false
}

// Actor is the authenticated caller of an engine operation. The
// session handling itself is an external collaborator; the engine only
// evaluates role and ownership predicates against this value.
type Actor struct {
	ID   string
	Role Role
}

func CanAssign(actor Actor) bool {
	return actor.Role == RoleAdmin
}

// CanVote checks the role only; whether the actor is actually on the
// panel of a given request is checked against the assignment rows.
func CanVote(actor Actor) bool {
	return actor.Role == RoleValidator
}

func CanExtend(actor Actor) bool {
	return actor.Role == RoleAdmin
}

func CanRegisterValidator(actor Actor) bool {
	return actor.Role == RoleAdmin
}
