package sqlite

// Repositories holds all SQLite repository implementations.
type Repositories struct {
	TeamToken *TeamTokenRepository
}

// NewRepositories creates all SQLite repositories over one shared connection.
func NewRepositories(db *DB) *Repositories {
	return &Repositories{
		TeamToken: NewTeamTokenRepository(db.DB),
	}
}
