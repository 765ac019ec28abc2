package sqlite

// Schema DDL. Table and column names match existing perpustakaan.db files so
// they open unchanged.
const (
	createBuku = `CREATE TABLE IF NOT EXISTS Buku (
    ID INTEGER PRIMARY KEY AUTOINCREMENT,
    Judul TEXT NOT NULL,
    Pengarang TEXT NOT NULL,
    Tahun INTEGER NOT NULL
);`
)

// schemaDDL lists all statements run by Attach, in order.
var schemaDDL = []string{
	createBuku,
}
