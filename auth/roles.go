package auth

// Perfil is the user's role. The set is closed: the backend only ever
// issues ADMIN or VOLUNTARIO.
type Perfil = string

const (
	// PerfilAdmin manages users and can delete movement history.
	PerfilAdmin Perfil = "ADMIN"
	// PerfilVoluntario operates the day-to-day inventory flows.
	PerfilVoluntario Perfil = "VOLUNTARIO"
)

// IsValidPerfil checks if the role is one of the predefined valid roles.
func IsValidPerfil(p Perfil) bool {
	switch p {
	case PerfilAdmin, PerfilVoluntario:
		return true
	default:
		return false
	}
}

// ParsePerfil safely parses a string into a Perfil.
func ParsePerfil(s string) (Perfil, bool) {
	p := Perfil(s)
	return p, IsValidPerfil(p)
}

// PerfilAtLeast checks if the role meets the minimum required level.
func PerfilAtLeast(p, min Perfil) bool {
	hierarchy := map[Perfil]int{
		PerfilVoluntario: 0,
		PerfilAdmin:      1,
	}

	current, ok := hierarchy[p]
	if !ok {
		return false
	}

	required, ok := hierarchy[min]
	if !ok {
		return false
	}

	return current >= required
}

// AllPerfis returns the predefined roles in hierarchical order.
func AllPerfis() []Perfil {
	return []Perfil{PerfilVoluntario, PerfilAdmin}
}
