package entity

// Roles de un miembro de tienda (vienen en el token; la membresía se valida fuera del núcleo).
const (
	RoleOwner = "owner"
	RoleAdmin = "admin"
	RoleStaff = "staff"
)
