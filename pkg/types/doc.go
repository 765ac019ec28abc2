// Package types defines the Catalog and Store interfaces, the Book entity,
// editable column identifiers, and the standard errors shared by the record
// store, the command core, and every front end.
package types
