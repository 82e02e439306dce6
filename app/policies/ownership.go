// Package policies decides who may see and change an entity.
package policies

// Ownable is implemented by every entity that belongs to one user.
type Ownable interface {
	OwnerID() uint
}

// SoftDeletable is implemented by entities that are hidden rather than removed.
type SoftDeletable interface {
	IsSoftDeleted() bool
}

// Owns reports whether userID owns entity. A nil entity is owned by nobody.
func Owns(userID uint, entity Ownable) bool {
	return entity != nil && userID != 0 && entity.OwnerID() == userID
}

// Visible is Owns that also treats a soft-deleted entity as absent.
func Visible(userID uint, entity Ownable) bool {
	if !Owns(userID, entity) {
		return false
	}
	if sd, ok := entity.(SoftDeletable); ok && sd.IsSoftDeleted() {
		return false
	}
	return true
}
