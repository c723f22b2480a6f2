package seedmodels

// SeedUser defines a user entry in the JSON seed file.
type SeedUser struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
}

// SeedDocument defines a document entry inside a room.
type SeedDocument struct {
	Title       string `json:"title"`
	StoragePath string `json:"storage_path"`
}

// SeedRoom defines a room in the JSON seed file. FacultyEmail must match
// one of the seeded faculty users.
type SeedRoom struct {
	Name         string         `json:"room_name"`
	FacultyEmail string         `json:"faculty_email"`
	Documents    []SeedDocument `json:"documents"`
}

// SeedData is the top-level structure of the seed file.
type SeedData struct {
	Users []SeedUser `json:"users"`
	Rooms []SeedRoom `json:"rooms"`
}
