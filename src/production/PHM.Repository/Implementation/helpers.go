package implementation

// scanner is the common surface of *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}
