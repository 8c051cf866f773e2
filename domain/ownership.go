package domain

// ownedProject admits the acting user only when it owns the project.
// Non-owned resources are reported as absent so their existence is never
// revealed to other users.
func ownedProject(p *Project, actingEmail string) error {
	if p == nil || p.OwnerEmail != actingEmail {
		return NotFound("Project")
	}
	return nil
}
